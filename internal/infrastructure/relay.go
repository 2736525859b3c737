package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// RelayClient talks to third-party relay services that convert a page
// URL into a direct media URL. Services come and go, so the endpoint
// table is configuration and response parsing probes a set of known
// key shapes instead of one schema.
type RelayClient struct {
	endpoints []domain.RelayEndpoint
	client    *http.Client
	logger    *zap.Logger
}

func NewRelayClient(endpoints []domain.RelayEndpoint, client *http.Client, logger *zap.Logger) *RelayClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelayClient{endpoints: endpoints, client: client, logger: logger}
}

// mediaURLKeys are the response fields relay services use for the
// direct link, in probe order.
var mediaURLKeys = []string{"url", "video_url", "download_url", "play", "link", "media"}

// ResolveMediaURL asks each configured relay in order and returns the
// first direct media URL any of them produces.
func (r *RelayClient) ResolveMediaURL(ctx context.Context, pageURL string) (string, error) {
	if len(r.endpoints) == 0 {
		return "", domain.ErrNoCandidates
	}

	var lastErr error
	for _, endpoint := range r.endpoints {
		mediaURL, err := r.query(ctx, endpoint, pageURL)
		if err != nil {
			lastErr = err
			r.logger.Debug("relay endpoint failed",
				zap.String("relay", endpoint.Name), zap.Error(err))
			continue
		}
		r.logger.Debug("relay resolved media url", zap.String("relay", endpoint.Name))
		return mediaURL, nil
	}
	return "", fmt.Errorf("no relay produced a media URL: %w", lastErr)
}

func (r *RelayClient) query(ctx context.Context, endpoint domain.RelayEndpoint, pageURL string) (string, error) {
	paramKey := endpoint.ParamKey
	if paramKey == "" {
		paramKey = "url"
	}

	var req *http.Request
	var err error
	if strings.EqualFold(endpoint.Method, http.MethodGet) {
		sep := "?"
		if strings.Contains(endpoint.URL, "?") {
			sep = "&"
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet,
			endpoint.URL+sep+paramKey+"="+url.QueryEscape(pageURL), nil)
	} else {
		form := url.Values{}
		form.Set(paramKey, pageURL)
		req, err = http.NewRequestWithContext(ctx, http.MethodPost,
			endpoint.URL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("relay %s returned status %d", endpoint.Name, resp.StatusCode)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("relay %s sent a non-JSON response: %w", endpoint.Name, err)
	}

	if mediaURL := probeMediaURL(payload); mediaURL != "" {
		return mediaURL, nil
	}
	return "", fmt.Errorf("relay %s response carried no media URL", endpoint.Name)
}

// probeMediaURL searches a relay response for a direct media link,
// looking at the top level, under "data", and inside media arrays.
func probeMediaURL(payload map[string]interface{}) string {
	candidates := []interface{}{payload, dig(payload, "data")}
	if media, ok := dig(payload, "data", "media").([]interface{}); ok && len(media) > 0 {
		candidates = append(candidates, media[0])
	}
	if media, ok := dig(payload, "media").([]interface{}); ok && len(media) > 0 {
		candidates = append(candidates, media[0])
	}

	for _, node := range candidates {
		if node == nil {
			continue
		}
		for _, key := range mediaURLKeys {
			if u := digString(node, key); strings.HasPrefix(u, "http") {
				return unescapeMetaURL(u)
			}
		}
	}
	return ""
}
