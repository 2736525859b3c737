package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// HTMLMetaStrategy is the last-resort resolution technique: fetch the
// page like a browser and read the Open Graph / Twitter card meta tags.
// It survives platform API churn but yields the least metadata.
type HTMLMetaStrategy struct {
	client *http.Client
}

func NewHTMLMetaStrategy(client *http.Client) *HTMLMetaStrategy {
	return &HTMLMetaStrategy{client: client}
}

func (s *HTMLMetaStrategy) Name() string { return "htmlmeta" }

func (s *HTMLMetaStrategy) Resolve(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	req, err := newBrowserRequest(ctx, target.URL, "")
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
	desc.Title = metaContent(doc, "og:title")
	desc.Description = metaContent(doc, "og:description")
	desc.ThumbnailURL = metaContent(doc, "og:image")
	if author := metaContent(doc, "og:site_name"); desc.Author == "" && author != "" {
		desc.Author = author
	}

	// Video sources in preference order: the card stream URL tends to be
	// the cleanest direct link.
	for _, prop := range []string{"twitter:player:stream", "og:video:secure_url", "og:video:url", "og:video"} {
		if v := metaContent(doc, prop); v != "" {
			desc.CandidateURLs = appendUnique(desc.CandidateURLs, unescapeMetaURL(v))
		}
	}

	if len(desc.CandidateURLs) > 0 {
		desc.IsVideo = true
		if desc.Kind == domain.KindUnknown || desc.Kind == domain.KindPhoto {
			desc.Kind = domain.KindVideo
		}
	} else if desc.ThumbnailURL != "" && !desc.IsVideo {
		// Photo content: the og:image is the media itself.
		desc.CandidateURLs = appendUnique(desc.CandidateURLs, unescapeMetaURL(desc.ThumbnailURL))
		if desc.Kind == domain.KindUnknown {
			desc.Kind = domain.KindPhoto
		}
	}

	if !desc.HasCandidates() {
		return nil, domain.ErrNoCandidates
	}
	return desc, nil
}

// metaContent reads a meta tag by property or name attribute.
func metaContent(doc *goquery.Document, prop string) string {
	if v, ok := doc.Find(fmt.Sprintf(`meta[property=%q]`, prop)).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(fmt.Sprintf(`meta[name=%q]`, prop)).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// unescapeMetaURL undoes the escaping platforms apply inside meta
// attributes and embedded JSON.
func unescapeMetaURL(u string) string {
	u = strings.ReplaceAll(u, "\\u0026", "&")
	u = strings.ReplaceAll(u, "&amp;", "&")
	u = strings.ReplaceAll(u, "\\/", "/")
	return u
}

func appendUnique(urls []string, u string) []string {
	if u == "" {
		return urls
	}
	for _, existing := range urls {
		if existing == u {
			return urls
		}
	}
	return append(urls, u)
}
