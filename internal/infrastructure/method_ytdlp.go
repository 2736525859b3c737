package infrastructure

import (
	"context"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// ExtractorMethod acquires through yt-dlp. It operates on the original
// page URL, not the candidate link, so it can recover when every direct
// candidate has expired.
type ExtractorMethod struct {
	extractor *Extractor
	policy    domain.RetryPolicy
}

func NewExtractorMethod(extractor *Extractor, policy domain.RetryPolicy) *ExtractorMethod {
	return &ExtractorMethod{extractor: extractor, policy: policy}
}

func (m *ExtractorMethod) Name() string               { return "ytdlp" }
func (m *ExtractorMethod) Policy() domain.RetryPolicy { return m.policy }

func (m *ExtractorMethod) Fetch(ctx context.Context, desc *domain.ContentDescriptor, _ string, destPath string) error {
	return m.extractor.Download(ctx, desc.SourceURL, destPath)
}
