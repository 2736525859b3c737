package infrastructure

import (
	"context"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// RelayStrategy resolves by asking third-party relay services for a
// direct media URL. It yields a candidate but almost no metadata, so it
// sits late in every chain.
type RelayStrategy struct {
	relay *RelayClient
}

func NewRelayStrategy(relay *RelayClient) *RelayStrategy {
	return &RelayStrategy{relay: relay}
}

func (s *RelayStrategy) Name() string { return "relay" }

func (s *RelayStrategy) Resolve(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	mediaURL, err := s.relay.ResolveMediaURL(ctx, target.URL)
	if err != nil {
		return nil, err
	}

	desc := domain.NewDescriptor(target)
	desc.CandidateURLs = appendUnique(desc.CandidateURLs, mediaURL)
	return desc, nil
}
