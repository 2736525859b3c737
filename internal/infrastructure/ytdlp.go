package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/domain"
	"github.com/yourusername/media-grab-go/pkg/logger"
)

// Extractor wraps the external yt-dlp binary. Raw process output goes to
// a dated log file under logsDir; structured events go through the
// multi-logger.
type Extractor struct {
	binary      string
	cookieFile  string
	logsDir     string
	eventLogger *logger.MultiLogger
}

func NewExtractor(cfg domain.ExtractorConfig, logsDir string, eventLogger *logger.MultiLogger) *Extractor {
	binary := cfg.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Extractor{
		binary:      binary,
		cookieFile:  cfg.CookieFile,
		logsDir:     logsDir,
		eventLogger: eventLogger,
	}
}

// Probe runs yt-dlp in metadata-only mode and returns the parsed info
// JSON for the URL.
func (e *Extractor) Probe(ctx context.Context, url string) (map[string]interface{}, error) {
	args := e.baseArgs()
	args = append(args, "-J", "--no-download", url)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyExtractorError(err, stderr.String())
	}

	var info map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("failed to parse extractor info: %w", err)
	}
	return info, nil
}

// Download runs yt-dlp against pageURL and leaves the artifact at
// destPath. yt-dlp picks its own container, so the output template uses
// destPath's base name and the result is renamed into place afterwards.
func (e *Extractor) Download(ctx context.Context, pageURL, destPath string) error {
	base := strings.TrimSuffix(destPath, filepath.Ext(destPath))
	args := e.baseArgs()
	args = append(args,
		"--no-playlist",
		"--restrict-filenames",
		"-o", base+".%(ext)s",
		pageURL,
	)

	procLog, err := e.openLogFile()
	if err != nil {
		return fmt.Errorf("failed to open extractor log: %w", err)
	}
	defer procLog.Close()

	e.writeLogHeader(procLog, ShellEscapeCommand(e.binary, args...))

	// stderr is both captured for failure classification and appended to
	// the raw process log.
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdout = procLog
	cmd.Stderr = io.MultiWriter(procLog, &stderr)

	if err := cmd.Run(); err != nil {
		e.writeLogFooter(procLog, false, err.Error())
		return classifyExtractorError(err, stderr.String())
	}

	found, err := e.findArtifact(base)
	if err != nil {
		e.writeLogFooter(procLog, false, err.Error())
		return err
	}
	if found != destPath {
		if err := os.Rename(found, destPath); err != nil {
			e.writeLogFooter(procLog, false, err.Error())
			return fmt.Errorf("failed to move extractor output: %w", err)
		}
	}

	e.writeLogFooter(procLog, true, destPath)
	return nil
}

func (e *Extractor) baseArgs() []string {
	var args []string
	if e.cookieFile != "" {
		if _, err := os.Stat(e.cookieFile); err == nil {
			args = append(args, "--cookies", e.cookieFile)
		}
	}
	return args
}

// findArtifact locates the file yt-dlp wrote for the output template
// base. The extension is whatever container yt-dlp chose.
func (e *Extractor) findArtifact(base string) (string, error) {
	dir := filepath.Dir(base)
	prefix := filepath.Base(base) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to scan staging directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") || strings.HasSuffix(name, ".info.json") {
			continue
		}
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("extractor produced no output for %s", filepath.Base(base))
}

func (e *Extractor) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, err
	}
	dateStr := time.Now().Format("20060102")
	path := filepath.Join(e.logsDir, "extractor-"+dateStr+".log")
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func (e *Extractor) writeLogHeader(file *os.File, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(file, "\n=== [%s] extractor run ===\n$ %s\n", timestamp, cmdLine)
}

func (e *Extractor) writeLogFooter(file *os.File, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
		if e.eventLogger != nil {
			e.eventLogger.LogAppError("extractor run failed", zap.String("detail", message))
		}
	}
	fmt.Fprintf(file, "[%s] %s: %s\n=== END ===\n\n", timestamp, status, message)
}

// classifyExtractorError maps well-known yt-dlp failure messages to
// terminal errors so the engine rotates methods instead of retrying.
func classifyExtractorError(err error, stderr string) error {
	for _, marker := range []string{
		"Video unavailable",
		"Private video",
		"This video is not available",
		"Requested format is not available",
		"Sign in to confirm your age",
		"Unsupported URL",
	} {
		if strings.Contains(stderr, marker) {
			return domain.Terminal(fmt.Errorf("extractor: %s", marker))
		}
	}
	return fmt.Errorf("extractor failed: %w", err)
}
