package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// Engine drives the candidate × method acquisition matrix. For each
// candidate URL in rank order it tries every acquisition method in
// priority order, each under that method's own retry budget. The first
// attempt that lands a non-empty file wins; a fully failed matrix yields
// ExhaustedSourcesError carrying the last underlying cause.
type Engine struct {
	methods    []domain.AcquisitionMethod
	stagingDir string
	logger     *zap.Logger
}

// NewEngine creates an engine writing artifacts into stagingDir.
func NewEngine(methods []domain.AcquisitionMethod, stagingDir string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		methods:    methods,
		stagingDir: stagingDir,
		logger:     logger,
	}
}

// Acquire fetches the media described by desc into the staging directory.
// A descriptor without candidates exhausts immediately, before any
// network traffic. The returned result owns a file with Size > 0; the
// caller owns exactly one Cleanup call for it.
func (e *Engine) Acquire(ctx context.Context, desc *domain.ContentDescriptor) (*domain.AcquisitionResult, error) {
	if !desc.HasCandidates() {
		return nil, &domain.ExhaustedSourcesError{Cause: domain.ErrNoCandidates}
	}
	if err := os.MkdirAll(e.stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	var lastErr error
	for rank, candidate := range desc.CandidateURLs {
		for _, method := range e.methods {
			if ctx.Err() != nil {
				return nil, domain.ErrCancelled
			}

			destPath := e.stagingPath(desc, candidate)
			err := method.Policy().Run(ctx, func(ctx context.Context) error {
				return method.Fetch(ctx, desc, candidate, destPath)
			})
			if err != nil {
				// A failed attempt may leave partial files behind; sweep
				// them before surfacing cancellation or reusing the
				// staging name for the next method.
				if cleanErr := Cleanup(destPath); cleanErr != nil {
					e.logger.Warn("partial artifact cleanup failed",
						zap.String("path", destPath), zap.Error(cleanErr))
				}
				if errors.Is(err, domain.ErrCancelled) {
					return nil, domain.ErrCancelled
				}
				lastErr = err
				e.logger.Debug("acquisition attempt failed",
					zap.String("method", method.Name()),
					zap.Int("candidate_rank", rank),
					zap.String("content_id", desc.ID),
					zap.Error(err))
				continue
			}

			result, verifyErr := e.verify(desc, destPath)
			if verifyErr != nil {
				lastErr = verifyErr
				if cleanErr := Cleanup(destPath); cleanErr != nil {
					e.logger.Warn("partial artifact cleanup failed",
						zap.String("path", destPath), zap.Error(cleanErr))
				}
				continue
			}

			e.logger.Info("acquired",
				zap.String("method", method.Name()),
				zap.Int("candidate_rank", rank),
				zap.String("content_id", desc.ID),
				zap.String("path", result.Path),
				zap.Int64("size", result.Size))
			return result, nil
		}
	}

	return nil, &domain.ExhaustedSourcesError{Cause: lastErr}
}

// verify confirms the method actually produced bytes. Methods that
// report success without a file, or with an empty one, count as failed
// attempts.
func (e *Engine) verify(desc *domain.ContentDescriptor, destPath string) (*domain.AcquisitionResult, error) {
	info, err := os.Stat(destPath)
	if err != nil {
		return nil, fmt.Errorf("no artifact produced at %s: %w", destPath, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("empty artifact at %s", destPath)
	}
	return &domain.AcquisitionResult{
		Path:     destPath,
		Size:     info.Size(),
		Kind:     desc.Kind,
		Metadata: desc.Metadata(info.Size()),
	}, nil
}

// stagingPath builds the content-id-qualified staging filename so that
// concurrent requests for different content never collide.
func (e *Engine) stagingPath(desc *domain.ContentDescriptor, candidate string) string {
	name := fmt.Sprintf("%s_%s_%s%s",
		desc.Platform, desc.Kind, sanitizeID(desc.ID), artifactExt(desc, candidate))
	return filepath.Join(e.stagingDir, name)
}

var allowedExts = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true,
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	".mp3": true, ".m4a": true,
}

// artifactExt picks the artifact extension from the candidate URL path,
// falling back to a kind default when the URL carries none.
func artifactExt(desc *domain.ContentDescriptor, candidate string) string {
	if u, err := url.Parse(candidate); err == nil {
		if ext := strings.ToLower(filepath.Ext(u.Path)); allowedExts[ext] {
			return ext
		}
	}
	switch desc.Kind {
	case domain.KindPhoto, domain.KindCarousel:
		return ".jpg"
	case domain.KindAudio:
		return ".m4a"
	default:
		return ".mp4"
	}
}

// sanitizeID strips filesystem-hostile characters from content ids.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
