package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/domain"
)

type stubStrategy struct {
	name    string
	desc    *domain.ContentDescriptor
	err     error
	delay   time.Duration
	calls   int
	lastCtx context.Context
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	s.calls++
	s.lastCtx = ctx
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.desc, nil
}

func descWithCandidates(id string, urls ...string) *domain.ContentDescriptor {
	return &domain.ContentDescriptor{
		ID:            id,
		Platform:      domain.PlatformTikTok,
		Kind:          domain.KindVideo,
		CandidateURLs: urls,
	}
}

func newTestResolver(timeout time.Duration, strategies ...domain.Strategy) *Resolver {
	return New(map[domain.Platform][]domain.Strategy{
		domain.PlatformTikTok: strategies,
	}, timeout, zap.NewNop())
}

func TestResolver_FirstCandidatesWins(t *testing.T) {
	first := &stubStrategy{name: "first", desc: descWithCandidates("123", "https://cdn.example.com/a.mp4")}
	second := &stubStrategy{name: "second", desc: descWithCandidates("123", "https://cdn.example.com/b.mp4")}

	r := newTestResolver(0, first, second)
	desc, err := r.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1234567890123")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.mp4"}, desc.CandidateURLs)
	assert.Equal(t, 1, first.calls)
	// Later strategies are never consulted once one yields candidates.
	assert.Zero(t, second.calls)
}

func TestResolver_FallsThroughFailures(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("blocked")}
	empty := &stubStrategy{name: "empty", desc: &domain.ContentDescriptor{ID: "123"}}
	winning := &stubStrategy{name: "winning", desc: descWithCandidates("123", "https://cdn.example.com/c.mp4")}

	r := newTestResolver(0, failing, empty, winning)
	desc, err := r.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1234567890123")

	require.NoError(t, err)
	assert.True(t, desc.HasCandidates())
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, 1, winning.calls)
}

func TestResolver_ExhaustionYieldsFallback(t *testing.T) {
	a := &stubStrategy{name: "a", err: errors.New("network down")}
	b := &stubStrategy{name: "b", err: domain.ErrNoCandidates}

	r := newTestResolver(0, a, b)
	desc, err := r.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1234567890123")

	// Exhaustion is not an error: the caller gets classification defaults.
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.False(t, desc.HasCandidates())
	assert.Equal(t, domain.PlatformTikTok, desc.Platform)
	assert.Equal(t, domain.KindVideo, desc.Kind)
	assert.Equal(t, "1234567890123", desc.ID)
}

func TestResolver_InvalidURL(t *testing.T) {
	r := newTestResolver(0)
	_, err := r.Resolve(context.Background(), "https://example.com/nope")
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
}

func TestResolver_StrategyTimeoutBoundsEachAttempt(t *testing.T) {
	slow := &stubStrategy{name: "slow", delay: time.Second, desc: descWithCandidates("123", "x")}
	fast := &stubStrategy{name: "fast", desc: descWithCandidates("123", "https://cdn.example.com/d.mp4")}

	r := newTestResolver(20*time.Millisecond, slow, fast)

	start := time.Now()
	desc, err := r.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1234567890123")
	require.NoError(t, err)

	// The slow strategy is cut off by its own timeout and the chain moves on.
	assert.True(t, desc.HasCandidates())
	assert.Equal(t, 1, fast.calls)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestResolver_CancelledContextStopsChain(t *testing.T) {
	a := &stubStrategy{name: "a", desc: descWithCandidates("123", "x")}
	r := newTestResolver(0, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	desc := r.ResolveTarget(ctx, domain.ClassifiedURL{
		URL:      "https://www.tiktok.com/@u/video/1234567890123",
		Platform: domain.PlatformTikTok,
		Kind:     domain.KindVideo,
	})

	require.NotNil(t, desc)
	assert.False(t, desc.HasCandidates())
	assert.Zero(t, a.calls)
}

func TestResolver_UnknownPlatformChain(t *testing.T) {
	// No chain registered for the platform: fallback straight away.
	r := New(map[domain.Platform][]domain.Strategy{}, 0, zap.NewNop())
	desc := r.ResolveTarget(context.Background(), domain.ClassifiedURL{
		URL:      "https://www.pinterest.com/pin/42/",
		Platform: domain.PlatformPinterest,
		Kind:     domain.KindPhoto,
	})
	require.NotNil(t, desc)
	assert.Equal(t, domain.KindPhoto, desc.Kind)
}
