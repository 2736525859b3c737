package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// PageDataStrategy reads the JSON state blob the platforms embed in
// their server-rendered pages. It is the richest source of metadata
// (counters, music attribution, carousel items) and the most fragile:
// the blob's shape changes without notice, so every lookup is tolerant.
type PageDataStrategy struct {
	client *http.Client
}

func NewPageDataStrategy(client *http.Client) *PageDataStrategy {
	return &PageDataStrategy{client: client}
}

func (s *PageDataStrategy) Name() string { return "pagedata" }

func (s *PageDataStrategy) Resolve(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	switch target.Platform {
	case domain.PlatformInstagram:
		return s.resolveInstagram(ctx, target)
	case domain.PlatformTikTok:
		return s.resolveTikTok(ctx, target)
	case domain.PlatformPinterest:
		return s.resolvePinterest(ctx, target)
	default:
		return nil, domain.ErrNoCandidates
	}
}

// resolveInstagram uses the legacy JSON view of a post page. It needs no
// login for public content and returns the full media graph.
func (s *PageDataStrategy) resolveInstagram(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	jsonURL := strings.TrimSuffix(target.URL, "/") + "/?__a=1&__d=dis"
	root, err := s.fetchJSON(ctx, jsonURL, "https://www.instagram.com/")
	if err != nil {
		return nil, err
	}

	media := dig(root, "graphql", "shortcode_media")
	if media == nil {
		media = dig(root, "items", "0")
	}
	if media == nil {
		return nil, domain.ErrNoCandidates
	}

	desc := domain.NewDescriptor(target)
	desc.Title = digString(media, "title")
	if desc.Title == "" {
		desc.Title = digString(media, "edge_media_to_caption", "edges", "0", "node", "text")
	}
	if desc.Title == "" {
		desc.Title = digString(media, "caption", "text")
	}
	desc.Author = digString(media, "owner", "username")
	if desc.Author == "" {
		desc.Author = digString(media, "user", "username")
	}
	desc.DisplayName = digString(media, "owner", "full_name")
	desc.LikeCount = digInt(media, "edge_media_preview_like", "count")
	desc.CommentCount = digInt(media, "edge_media_to_comment", "count")
	desc.ThumbnailURL = digString(media, "display_url")
	desc.Width = int(digInt(media, "dimensions", "width"))
	desc.Height = int(digInt(media, "dimensions", "height"))

	if isVideo, _ := dig(media, "is_video").(bool); isVideo {
		desc.IsVideo = true
		desc.Kind = domain.KindVideo
		desc.CandidateURLs = appendUnique(desc.CandidateURLs, digString(media, "video_url"))
		desc.ViewCount = digInt(media, "video_view_count")
	} else if sidecar := dig(media, "edge_sidecar_to_children", "edges"); sidecar != nil {
		desc.Kind = domain.KindCarousel
		if edges, ok := sidecar.([]interface{}); ok {
			for _, edge := range edges {
				node := dig(edge, "node")
				if v := digString(node, "video_url"); v != "" {
					desc.CandidateURLs = appendUnique(desc.CandidateURLs, v)
				} else if img := digString(node, "display_url"); img != "" {
					desc.CandidateURLs = appendUnique(desc.CandidateURLs, img)
				}
			}
		}
	} else if desc.ThumbnailURL != "" {
		desc.CandidateURLs = appendUnique(desc.CandidateURLs, desc.ThumbnailURL)
	}

	if !desc.HasCandidates() {
		return nil, domain.ErrNoCandidates
	}
	return desc, nil
}

// resolveTikTok parses the rehydration state embedded in the video page.
func (s *PageDataStrategy) resolveTikTok(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	req, err := newBrowserRequest(ctx, target.URL, "https://www.tiktok.com/")
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var root interface{}
	for _, id := range []string{"__UNIVERSAL_DATA_FOR_REHYDRATION__", "SIGI_STATE"} {
		raw := doc.Find("script#" + id).Text()
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), &root); err == nil {
			break
		}
		root = nil
	}
	if root == nil {
		return nil, domain.ErrNoCandidates
	}

	item := dig(root, "__DEFAULT_SCOPE__", "webapp.video-detail", "itemInfo", "itemStruct")
	if item == nil {
		// SIGI_STATE keys items by id under ItemModule.
		if module, ok := dig(root, "ItemModule").(map[string]interface{}); ok {
			for _, v := range module {
				item = v
				break
			}
		}
	}
	if item == nil {
		return nil, domain.ErrNoCandidates
	}

	desc := domain.NewDescriptor(target)
	if id := digString(item, "id"); id != "" {
		desc.ID = id
	}
	desc.Title = digString(item, "desc")
	desc.Author = digString(item, "author", "uniqueId")
	if desc.Author == "" {
		desc.Author = digString(item, "author")
	}
	desc.DisplayName = digString(item, "author", "nickname")
	desc.LikeCount = digInt(item, "stats", "diggCount")
	desc.CommentCount = digInt(item, "stats", "commentCount")
	desc.ViewCount = digInt(item, "stats", "playCount")
	desc.Duration = int(digInt(item, "video", "duration"))
	desc.ThumbnailURL = digString(item, "video", "cover")
	desc.Width = int(digInt(item, "video", "width"))
	desc.Height = int(digInt(item, "video", "height"))
	desc.MusicTitle = digString(item, "music", "title")
	desc.MusicAuthor = digString(item, "music", "authorName")

	// Photo posts carry an image list instead of play addresses.
	if images, ok := dig(item, "imagePost", "images").([]interface{}); ok && len(images) > 0 {
		desc.Kind = domain.KindPhoto
		if len(images) > 1 {
			desc.Kind = domain.KindCarousel
		}
		desc.IsVideo = false
		for _, img := range images {
			if u := digString(img, "imageURL", "urlList", "0"); u != "" {
				desc.CandidateURLs = appendUnique(desc.CandidateURLs, u)
			}
		}
	} else {
		desc.IsVideo = true
		for _, key := range []string{"playAddr", "downloadAddr"} {
			if u := digString(item, "video", key); u != "" {
				desc.CandidateURLs = appendUnique(desc.CandidateURLs, unescapeMetaURL(u))
			}
		}
	}

	if !desc.HasCandidates() {
		return nil, domain.ErrNoCandidates
	}
	return desc, nil
}

// resolvePinterest reads the pin resource JSON embedded in the page.
func (s *PageDataStrategy) resolvePinterest(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	req, err := newBrowserRequest(ctx, target.URL, "https://www.pinterest.com/")
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	desc := domain.NewDescriptor(target)
	var found bool
	doc.Find(`script[type="application/json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var root interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &root); err != nil {
			return true
		}
		pin := findPinResource(root)
		if pin == nil {
			return true
		}

		desc.Title = digString(pin, "title")
		if desc.Title == "" {
			desc.Title = digString(pin, "grid_title")
		}
		desc.Description = digString(pin, "description")
		desc.Author = digString(pin, "pinner", "username")
		desc.DisplayName = digString(pin, "pinner", "full_name")

		if v := digString(pin, "videos", "video_list", "V_720P", "url"); v != "" {
			desc.Kind = domain.KindVideo
			desc.IsVideo = true
			desc.CandidateURLs = appendUnique(desc.CandidateURLs, v)
		} else if img := digString(pin, "images", "orig", "url"); img != "" {
			desc.CandidateURLs = appendUnique(desc.CandidateURLs, img)
			desc.ThumbnailURL = img
			desc.Width = int(digInt(pin, "images", "orig", "width"))
			desc.Height = int(digInt(pin, "images", "orig", "height"))
		}
		found = desc.HasCandidates()
		return !found
	})

	if !found {
		return nil, domain.ErrNoCandidates
	}
	return desc, nil
}

// findPinResource walks common locations of the pin object inside
// Pinterest's embedded JSON.
func findPinResource(root interface{}) interface{} {
	for _, path := range [][]string{
		{"response", "data", "v3GetPinQuery", "data"},
		{"props", "initialReduxState", "pins"},
		{"resource_response", "data"},
	} {
		keys := make([]string, len(path))
		copy(keys, path)
		if node := dig(root, keys...); node != nil {
			if pins, ok := node.(map[string]interface{}); ok && path[len(path)-1] == "pins" {
				for _, v := range pins {
					return v
				}
				continue
			}
			return node
		}
	}
	return nil
}

func (s *PageDataStrategy) fetchJSON(ctx context.Context, url, referer string) (interface{}, error) {
	req, err := newBrowserRequest(ctx, url, referer)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page data returned status %d", resp.StatusCode)
	}

	var root interface{}
	if err := json.NewDecoder(resp.Body).Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to decode page data: %w", err)
	}
	return root, nil
}

// dig walks nested maps and slices by key; numeric keys index slices.
// Missing paths return nil rather than panicking, which keeps the
// strategies tolerant of blob shape drift.
func dig(node interface{}, keys ...string) interface{} {
	for _, key := range keys {
		switch v := node.(type) {
		case map[string]interface{}:
			node = v[key]
		case []interface{}:
			idx := -1
			for i := range v {
				if fmt.Sprintf("%d", i) == key {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil
			}
			node = v[idx]
		default:
			return nil
		}
		if node == nil {
			return nil
		}
	}
	return node
}

func digString(node interface{}, keys ...string) string {
	if v, ok := dig(node, keys...).(string); ok {
		return v
	}
	return ""
}

func digInt(node interface{}, keys ...string) int64 {
	switch v := dig(node, keys...).(type) {
	case float64:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	}
	return 0
}
