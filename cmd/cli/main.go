package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/yourusername/media-grab-go/internal/app"
)

var (
	configPath string
	serverURL  string
	rootCmd    = &cobra.Command{
		Use:   "media-grab",
		Short: "media-grab - fetch media from TikTok, YouTube, Instagram and Pinterest",
		Long:  `A command-line interface for resolving and downloading media content from supported platforms.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL for remote commands")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
}

// bootstrapLocal wires the full pipeline for in-process commands.
func bootstrapLocal(progress func(written, total int64)) *app.App {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a, err := app.Bootstrap(config, progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return a
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Resolve and download a URL through the local pipeline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var bar *progressbar.ProgressBar
		a := bootstrapLocal(func(written, total int64) {
			if bar == nil {
				bar = progressbar.DefaultBytes(total, "downloading")
			}
			bar.Set64(written)
		})
		defer a.Close()

		req, err := a.Pipeline.Submit(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := a.Pipeline.Process(context.Background(), req); err != nil {
			if bar != nil {
				bar.Finish()
			}
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			os.Exit(1)
		}
		if bar != nil {
			bar.Finish()
		}

		stored, err := a.Repo.FindByID(req.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\nFetched successfully!\n")
		fmt.Printf("  Platform: %s\n", stored.Platform)
		fmt.Printf("  Kind:     %s\n", stored.Kind)
		if stored.Title != "" {
			fmt.Printf("  Title:    %s\n", stored.Title)
		}
		fmt.Printf("  Size:     %d bytes\n", stored.ByteSize)
		fmt.Printf("  Mode:     %s\n", stored.Mode)
		if path := findDeliveredFile(a, stored.ContentID); path != "" {
			fmt.Printf("  File:     %s\n", path)
		}
	},
}

// findDeliveredFile locates the delivered artifact by its content id.
func findDeliveredFile(a *app.App, contentID string) string {
	entries, err := os.ReadDir(a.Config.Staging.CompletedDir())
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), contentID) {
			return filepath.Join(a.Config.Staging.CompletedDir(), entry.Name())
		}
	}
	return ""
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [url]",
	Short: "Resolve a URL to its content descriptor without downloading",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrapLocal(nil)
		defer a.Close()

		desc, err := a.Resolver.Resolve(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		pretty, _ := json.MarshalIndent(desc, "", "  ")
		fmt.Println(string(pretty))
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List fetch requests on the server",
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")

		url := serverURL + "/api/v1/fetches"
		if status != "" {
			url += "?status=" + status
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var requests []map[string]interface{}
		json.Unmarshal(body, &requests)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tURL\tPLATFORM\tSTATUS\tCREATED")
		for _, r := range requests {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncate(stringField(r, "id"), 8),
				truncate(stringField(r, "url"), 40),
				r["platform"],
				r["status"],
				r["created_at"])
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fetch statistics from the server",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/fetches/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var stats struct {
			History  map[string]interface{} `json:"history"`
			Counters map[string]interface{} `json:"counters"`
		}
		json.Unmarshal(body, &stats)

		fmt.Println("Fetch Statistics:")
		fmt.Printf("  Total:     %v\n", stats.History["total"])
		fmt.Printf("  Pending:   %v\n", stats.History["pending"])
		fmt.Printf("  Active:    %v\n", stats.History["active"])
		fmt.Printf("  Delivered: %v\n", stats.History["delivered"])
		fmt.Printf("  Rejected:  %v\n", stats.History["rejected"])
		fmt.Printf("  Failed:    %v\n", stats.History["failed"])
		fmt.Println("Since process start:")
		fmt.Printf("  Resolved:  %v\n", stats.Counters["resolved"])
		fmt.Printf("  Fallbacks: %v\n", stats.Counters["fallbacks"])
		fmt.Printf("  Acquired:  %v\n", stats.Counters["acquired"])
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get fetch request details from the server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/fetches/" + args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var req map[string]interface{}
		json.Unmarshal(body, &req)

		fmt.Printf("Fetch Request:\n")
		fmt.Printf("  ID:       %s\n", req["id"])
		fmt.Printf("  URL:      %s\n", req["url"])
		fmt.Printf("  Platform: %s\n", req["platform"])
		fmt.Printf("  Kind:     %s\n", req["kind"])
		fmt.Printf("  Status:   %s\n", req["status"])
		fmt.Printf("  Created:  %s\n", req["created_at"])
		if req["title"] != nil && req["title"] != "" {
			fmt.Printf("  Title:    %s\n", req["title"])
		}
		if req["error_message"] != nil && req["error_message"] != "" {
			fmt.Printf("  Error:    %s\n", req["error_message"])
		}
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
