package infrastructure

import (
	"context"
	"net/http"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// RelayMethod is the last acquisition resort: ask a relay service for a
// fresh direct URL for the original page, then stream that. It rescues
// requests whose resolved candidates have expired or are geo-blocked.
type RelayMethod struct {
	relay  *RelayClient
	direct *DirectMethod
	policy domain.RetryPolicy
}

func NewRelayMethod(relay *RelayClient, client *http.Client, policy domain.RetryPolicy, progress ProgressFunc) *RelayMethod {
	return &RelayMethod{
		relay:  relay,
		direct: NewDirectMethod(client, policy, progress),
		policy: policy,
	}
}

func (m *RelayMethod) Name() string               { return "relay" }
func (m *RelayMethod) Policy() domain.RetryPolicy { return m.policy }

func (m *RelayMethod) Fetch(ctx context.Context, desc *domain.ContentDescriptor, _ string, destPath string) error {
	mediaURL, err := m.relay.ResolveMediaURL(ctx, desc.SourceURL)
	if err != nil {
		return err
	}
	return m.direct.Fetch(ctx, desc, mediaURL, destPath)
}
