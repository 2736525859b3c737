package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// oEmbed endpoints per platform. Instagram dropped its public oEmbed
// endpoint years ago, so it is absent here.
var oembedEndpoints = map[domain.Platform]string{
	domain.PlatformTikTok:    "https://www.tiktok.com/oembed",
	domain.PlatformYouTube:   "https://www.youtube.com/oembed",
	domain.PlatformPinterest: "https://www.pinterest.com/oembed.json",
}

// OEmbedStrategy resolves through the platform's public oEmbed endpoint.
// oEmbed carries title, author and a thumbnail but never a direct video
// URL, so for video content it only wins when the thumbnail itself is
// the deliverable (photo kinds).
type OEmbedStrategy struct {
	client    *http.Client
	endpoints map[domain.Platform]string
}

func NewOEmbedStrategy(client *http.Client) *OEmbedStrategy {
	return &OEmbedStrategy{client: client, endpoints: oembedEndpoints}
}

func (s *OEmbedStrategy) Name() string { return "oembed" }

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ProviderName string `json:"provider_name"`
}

func (s *OEmbedStrategy) Resolve(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	endpoint, ok := s.endpoints[target.Platform]
	if !ok {
		return nil, domain.ErrNoCandidates
	}

	reqURL := fmt.Sprintf("%s?format=json&url=%s", endpoint, url.QueryEscape(target.URL))
	req, err := newBrowserRequest(ctx, reqURL, "")
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
		return nil, fmt.Errorf("oembed returned status %d", resp.StatusCode)
	}

	var payload oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode oembed response: %w", err)
	}

	desc := domain.NewDescriptor(target)
	desc.Title = payload.Title
	desc.Author = payload.AuthorName
	desc.DisplayName = payload.AuthorName
	desc.ThumbnailURL = payload.ThumbnailURL
	desc.Width = payload.Width
	desc.Height = payload.Height

	// Only photo-like content can be satisfied by the thumbnail.
	switch target.Kind {
	case domain.KindPhoto, domain.KindCarousel:
		desc.CandidateURLs = appendUnique(desc.CandidateURLs, unescapeMetaURL(payload.ThumbnailURL))
	}

	if !desc.HasCandidates() {
		return nil, domain.ErrNoCandidates
	}
	return desc, nil
}
