package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/acquire"
	"github.com/yourusername/media-grab-go/internal/domain"
	"github.com/yourusername/media-grab-go/internal/infrastructure"
	"github.com/yourusername/media-grab-go/internal/resolver"
	"github.com/yourusername/media-grab-go/pkg/logger"
)

// Counters tracks pipeline outcomes since process start. All fields are
// updated atomically; Snapshot returns a consistent-enough copy for
// status endpoints.
type Counters struct {
	Resolved  atomic.Int64
	Fallbacks atomic.Int64
	Acquired  atomic.Int64
	Delivered atomic.Int64
	Rejected  atomic.Int64
	Failed    atomic.Int64
}

// CountersSnapshot is the JSON view of Counters.
type CountersSnapshot struct {
	Resolved  int64 `json:"resolved"`
	Fallbacks int64 `json:"fallbacks"`
	Acquired  int64 `json:"acquired"`
	Delivered int64 `json:"delivered"`
	Rejected  int64 `json:"rejected"`
	Failed    int64 `json:"failed"`
}

func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		Resolved:  c.Resolved.Load(),
		Fallbacks: c.Fallbacks.Load(),
		Acquired:  c.Acquired.Load(),
		Delivered: c.Delivered.Load(),
		Rejected:  c.Rejected.Load(),
		Failed:    c.Failed.Load(),
	}
}

// Pipeline drives a request through resolution, acquisition, the size
// gate, delivery hand-off and cleanup, persisting each state transition.
// A semaphore bounds how many requests run network I/O at once.
type Pipeline struct {
	resolver     *resolver.Resolver
	engine       *acquire.Engine
	gate         *acquire.SizeGate
	repo         domain.FetchRequestRepository
	notifier     *infrastructure.NotificationService
	events       *logger.MultiLogger
	logger       *zap.Logger
	config       *domain.PipelineConfig
	completedDir string
	sem          chan struct{}
	counters     Counters
}

// NewPipeline creates a pipeline. completedDir is where accepted
// artifacts are moved for delivery collaborators to pick up.
func NewPipeline(
	res *resolver.Resolver,
	engine *acquire.Engine,
	gate *acquire.SizeGate,
	repo domain.FetchRequestRepository,
	notifier *infrastructure.NotificationService,
	events *logger.MultiLogger,
	log *zap.Logger,
	config *domain.PipelineConfig,
	completedDir string,
) *Pipeline {
	limit := config.WorkerLimit
	if limit < 1 {
		limit = 1
	}
	return &Pipeline{
		resolver:     res,
		engine:       engine,
		gate:         gate,
		repo:         repo,
		notifier:     notifier,
		events:       events,
		logger:       log,
		config:       config,
		completedDir: completedDir,
		sem:          make(chan struct{}, limit),
	}
}

// Counters returns the outcome counters.
func (p *Pipeline) Counters() *Counters { return &p.counters }

// Submit validates the URL, persists a new request and returns it. The
// worker picks it up; callers that want synchronous processing use
// Process directly.
func (p *Pipeline) Submit(url string) (*domain.FetchRequest, error) {
	if _, err := domain.Classify(url); err != nil {
		return nil, err
	}
	req := domain.NewFetchRequest(url)
	if err := p.repo.Create(req); err != nil {
		return nil, fmt.Errorf("failed to persist request: %w", err)
	}
	p.logEvent("request_submitted", req)
	return req, nil
}

// Process runs one request end to end. It blocks while the worker pool
// is saturated and always leaves the request in the cleaned state, with
// no staging artifacts behind, whatever the outcome.
func (p *Pipeline) Process(ctx context.Context, req *domain.FetchRequest) error {
	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-ctx.Done():
		return domain.ErrCancelled
	}

	if p.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.RequestTimeout)
		defer cancel()
	}

	req.MarkResolving()
	p.persist(req)
	p.logEvent("resolving", req)

	target, err := domain.Classify(req.URL)
	if err != nil {
		return p.fail(req, "", err)
	}

	desc := p.resolver.ResolveTarget(ctx, target)
	req.MarkResolved(desc)
	p.persist(req)
	p.counters.Resolved.Add(1)
	if !desc.HasCandidates() {
		p.counters.Fallbacks.Add(1)
	}
	p.logEvent("resolved", req, zap.Int("candidates", len(desc.CandidateURLs)))

	req.MarkAcquiring()
	p.persist(req)

	result, err := p.engine.Acquire(ctx, desc)
	if err != nil {
		if ctx.Err() != nil {
			err = domain.ErrCancelled
		}
		return p.fail(req, "", err)
	}
	p.counters.Acquired.Add(1)

	size, err := p.gate.Check(result.Path)
	if err != nil {
		if errors.Is(err, domain.ErrTooLarge) {
			return p.reject(req, result, size)
		}
		return p.fail(req, result.Path, err)
	}

	req.MarkAcquired(result.Path, size, result.Kind)
	p.persist(req)

	deliveredPath, err := p.deliver(result)
	if err != nil {
		return p.fail(req, result.Path, err)
	}

	req.MarkDelivered(p.selectMode(size))
	req.FilePath = deliveredPath
	p.persist(req)
	p.counters.Delivered.Add(1)
	p.logEvent("delivered", req,
		zap.String("path", deliveredPath),
		zap.Int64("size", size),
		zap.String("mode", string(req.Mode)))
	p.notifier.NotifyDelivered(req)

	p.finish(req, result.Path)
	return nil
}

// selectMode picks the transmission mode purely from byte-size bands.
func (p *Pipeline) selectMode(size int64) domain.TransmissionMode {
	switch {
	case p.config.StreamLimit > 0 && size <= p.config.StreamLimit:
		return domain.TransmitStreamed
	case p.config.SizeLimit <= 0 || size <= p.config.SizeLimit:
		return domain.TransmitAttachment
	default:
		return domain.TransmitRejected
	}
}

// deliver moves the staged artifact into the completed directory where
// delivery collaborators pick it up. Rename first, copy across devices.
func (p *Pipeline) deliver(result *domain.AcquisitionResult) (string, error) {
	if err := os.MkdirAll(p.completedDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create completed directory: %w", err)
	}
	dest := filepath.Join(p.completedDir, filepath.Base(result.Path))
	if err := os.Rename(result.Path, dest); err != nil {
		if err := copyFile(result.Path, dest); err != nil {
			return "", fmt.Errorf("failed to move artifact: %w", err)
		}
		os.Remove(result.Path)
	}
	return dest, nil
}

func (p *Pipeline) reject(req *domain.FetchRequest, result *domain.AcquisitionResult, size int64) error {
	req.MarkAcquired(result.Path, size, result.Kind)
	req.MarkRejected(domain.UserMessage(domain.ErrTooLarge))
	p.persist(req)
	p.counters.Rejected.Add(1)
	p.logEvent("rejected", req, zap.Int64("size", size), zap.Int64("limit", p.gate.Limit))
	p.notifier.NotifyRejected(req)

	// The gate already deleted the artifact; finish sweeps sidecars and
	// closes the state machine.
	p.finish(req, result.Path)
	return domain.ErrTooLarge
}

func (p *Pipeline) fail(req *domain.FetchRequest, artifactPath string, err error) error {
	req.MarkFailed(err)
	p.persist(req)
	p.counters.Failed.Add(1)
	p.logEvent("failed", req, zap.Error(err))
	if p.events != nil {
		p.events.LogAppError("request failed",
			zap.String("id", req.ID),
			zap.String("url", req.URL),
			zap.Error(err))
	}
	p.notifier.NotifyFailed(req)

	p.finish(req, artifactPath)
	return err
}

// finish removes staging leftovers and closes the request. Cleanup is
// idempotent, so a crash between persist calls cannot strand artifacts:
// the next sweep of the same path is a no-op.
func (p *Pipeline) finish(req *domain.FetchRequest, artifactPath string) {
	if artifactPath != "" {
		if err := acquire.Cleanup(artifactPath); err != nil {
			p.logger.Warn("staging cleanup failed",
				zap.String("id", req.ID),
				zap.String("path", artifactPath),
				zap.Error(err))
		}
	}
	req.MarkCleaned()
	p.persist(req)
	p.logEvent("cleaned", req)
}

func (p *Pipeline) persist(req *domain.FetchRequest) {
	if err := p.repo.Update(req); err != nil {
		p.logger.Error("failed to persist request state",
			zap.String("id", req.ID),
			zap.String("status", string(req.Status)),
			zap.Error(err))
	}
}

func (p *Pipeline) logEvent(event string, req *domain.FetchRequest, fields ...zap.Field) {
	if p.events == nil {
		return
	}
	base := []zap.Field{
		zap.String("id", req.ID),
		zap.String("url", req.URL),
		zap.String("platform", string(req.Platform)),
		zap.String("status", string(req.Status)),
	}
	p.events.LogPipelineEvent(event, append(base, fields...)...)
}

// copyFile copies src to dst, used when rename crosses filesystems.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
