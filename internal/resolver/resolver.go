package resolver

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// Resolver runs the per-platform strategy chains. Each classified URL is
// tried against its platform chain in priority order; the first strategy
// that yields at least one candidate URL wins outright. When every
// strategy fails, resolution still succeeds with a fallback descriptor
// built from classification defaults alone.
type Resolver struct {
	chains          map[domain.Platform][]domain.Strategy
	strategyTimeout time.Duration
	logger          *zap.Logger
}

// New creates a resolver from the per-platform chains. strategyTimeout
// bounds each individual strategy attempt; zero disables the bound.
func New(chains map[domain.Platform][]domain.Strategy, strategyTimeout time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		chains:          chains,
		strategyTimeout: strategyTimeout,
		logger:          logger,
	}
}

// Resolve classifies rawURL and walks the platform's strategy chain. The
// only error it returns is domain.ErrInvalidURL for URLs that match no
// platform; chain exhaustion is not an error.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*domain.ContentDescriptor, error) {
	target, err := domain.Classify(rawURL)
	if err != nil {
		return nil, err
	}
	return r.ResolveTarget(ctx, target), nil
}

// ResolveTarget walks the strategy chain for an already-classified URL.
// It always returns a usable descriptor.
func (r *Resolver) ResolveTarget(ctx context.Context, target domain.ClassifiedURL) *domain.ContentDescriptor {
	chain := r.chains[target.Platform]

	var failures error
	for _, strategy := range chain {
		if ctx.Err() != nil {
			break
		}

		desc, err := r.runStrategy(ctx, strategy, target)
		if err != nil {
			failures = multierror.Append(failures, err)
			r.logger.Debug("strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.String("platform", string(target.Platform)),
				zap.String("url", target.URL),
				zap.Error(err))
			continue
		}
		if desc == nil || !desc.HasCandidates() {
			failures = multierror.Append(failures, domain.ErrNoCandidates)
			r.logger.Debug("strategy returned no candidates",
				zap.String("strategy", strategy.Name()),
				zap.String("url", target.URL))
			continue
		}

		r.logger.Info("resolved",
			zap.String("strategy", strategy.Name()),
			zap.String("platform", string(target.Platform)),
			zap.String("content_id", desc.ID),
			zap.Int("candidates", len(desc.CandidateURLs)))
		return desc
	}

	r.logger.Warn("all strategies exhausted, using fallback descriptor",
		zap.String("platform", string(target.Platform)),
		zap.String("url", target.URL),
		zap.Int("strategies", len(chain)),
		zap.Error(failures))
	return domain.FallbackDescriptor(target)
}

// runStrategy executes one strategy under the per-strategy timeout.
func (r *Resolver) runStrategy(ctx context.Context, strategy domain.Strategy, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	if r.strategyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.strategyTimeout)
		defer cancel()
	}
	return strategy.Resolve(ctx, target)
}
