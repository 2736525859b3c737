package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/acquire"
	"github.com/yourusername/media-grab-go/internal/domain"
	"github.com/yourusername/media-grab-go/pkg/logger"
)

// Worker polls the repository for pending requests and feeds them to the
// pipeline. Concurrency is governed by the pipeline's own semaphore; the
// worker just spawns a goroutine per pending request.
type Worker struct {
	repo     domain.FetchRequestRepository
	pipeline *Pipeline
	config   *domain.WorkerConfig
	events   *logger.MultiLogger
	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a new queue worker
func NewWorker(
	repo domain.FetchRequestRepository,
	pipeline *Pipeline,
	config *domain.WorkerConfig,
	events *logger.MultiLogger,
) *Worker {
	return &Worker{
		repo:     repo,
		pipeline: pipeline,
		config:   config,
		events:   events,
		stopChan: make(chan struct{}),
	}
}

// Start starts the polling loop
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("worker already running")
	}
	w.running = true
	w.mu.Unlock()

	if w.events != nil {
		w.events.LogPipelineEvent("worker_started")
	}

	w.recoverStranded()

	w.wg.Add(1)
	go w.poll(ctx)

	return nil
}

// recoverStranded picks up requests a previous process left behind.
// In-flight states go back to unresolved for a fresh pass; requests
// that reached an outcome but died before cleanup get their staging
// artifacts swept and are closed out.
func (w *Worker) recoverStranded() {
	inflight := []domain.FetchStatus{
		domain.StatusResolving,
		domain.StatusResolved,
		domain.StatusAcquiring,
		domain.StatusAcquired,
	}
	for _, status := range inflight {
		for _, req := range w.findByStatus(status) {
			if req.FilePath != "" {
				acquire.Cleanup(req.FilePath)
				req.FilePath = ""
			}
			// Deliberately outside the transition table: rewinding to
			// unresolved only happens on crash recovery.
			req.Status = domain.StatusUnresolved
			if err := w.repo.Update(req); err != nil {
				if w.events != nil {
					w.events.LogAppError("failed to requeue stranded request",
						zap.String("id", req.ID), zap.Error(err))
				}
				continue
			}
			if w.events != nil {
				w.events.LogPipelineEvent("request_requeued",
					zap.String("id", req.ID),
					zap.String("previous_status", string(status)))
			}
		}
	}

	outcomes := []domain.FetchStatus{
		domain.StatusDelivered,
		domain.StatusRejected,
		domain.StatusFailed,
	}
	for _, status := range outcomes {
		for _, req := range w.findByStatus(status) {
			// A delivered FilePath points at the handed-off artifact and
			// must survive; failed requests may still hold a staging path.
			if status == domain.StatusFailed && req.FilePath != "" {
				acquire.Cleanup(req.FilePath)
			}
			req.MarkCleaned()
			if err := w.repo.Update(req); err != nil && w.events != nil {
				w.events.LogAppError("failed to close stranded request",
					zap.String("id", req.ID), zap.Error(err))
			}
		}
	}
}

func (w *Worker) findByStatus(status domain.FetchStatus) []*domain.FetchRequest {
	reqs, err := w.repo.FindByStatus(status)
	if err != nil {
		if w.events != nil {
			w.events.LogAppError("failed to scan for stranded requests",
				zap.String("status", string(status)), zap.Error(err))
		}
		return nil
	}
	return reqs
}

// Stop stops the polling loop and waits for in-flight requests
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("worker not running")
	}
	w.running = false
	w.mu.Unlock()

	if w.events != nil {
		w.events.LogPipelineEvent("worker_stopped")
	}
	close(w.stopChan)
	w.wg.Wait()

	return nil
}

// IsRunning returns whether the worker is running
func (w *Worker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// poll drains pending requests on every tick
func (w *Worker) poll(ctx context.Context) {
	defer w.wg.Done()

	interval := w.config.CheckInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if w.events != nil {
				w.events.LogPipelineEvent("worker_loop_stopped",
					zap.String("reason", "context_cancelled"))
			}
			return
		case <-w.stopChan:
			if w.events != nil {
				w.events.LogPipelineEvent("worker_loop_stopped",
					zap.String("reason", "stop_signal"))
			}
			return
		case <-ticker.C:
			pending, err := w.repo.FindPending()
			if err != nil {
				if w.events != nil {
					w.events.LogAppError("failed to fetch pending requests", zap.Error(err))
				}
				continue
			}

			for _, req := range pending {
				// Claim immediately so the next tick does not pick the
				// same request up again while it waits on the semaphore.
				req.MarkResolving()
				if err := w.repo.Update(req); err != nil {
					if w.events != nil {
						w.events.LogAppError("failed to claim request",
							zap.String("id", req.ID), zap.Error(err))
					}
					continue
				}
				req.Status = domain.StatusUnresolved

				w.wg.Add(1)
				go func(req *domain.FetchRequest) {
					defer w.wg.Done()
					w.pipeline.Process(ctx, req)
				}(req)
			}
		}
	}
}
