package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AlekseevDev/tapper-game/internal/config"
	"github.com/AlekseevDev/tapper-game/internal/service"
)

// RetentionWorker periodically sweeps stale score history and zero-activity
// player rows. Sweeps are serialized: the ticker loop and manual triggers
// share one mutex, so a sweep never overlaps itself.
type RetentionWorker struct {
	service *service.GameService
	config  *config.RetentionConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool

	sweepMu sync.Mutex
}

// NewRetentionWorker creates a new retention worker
func NewRetentionWorker(svc *service.GameService, cfg *config.RetentionConfig, logger *slog.Logger) *RetentionWorker {
	return &RetentionWorker{
		service: svc,
		config:  cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins the background sweep loop
func (w *RetentionWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("retention worker started",
		"interval", w.config.Interval,
		"retention_days", w.config.Days,
	)

	go w.run(ctx)
	return nil
}

// Stop stops the background sweep loop
func (w *RetentionWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("retention worker stopped")
	return nil
}

// run is the main worker loop
func (w *RetentionWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("retention sweep failed", "error", err)
			}
		}
	}
}

// RunOnce runs a single retention sweep (also used for manual triggers)
func (w *RetentionWorker) RunOnce(ctx context.Context) error {
	w.sweepMu.Lock()
	defer w.sweepMu.Unlock()

	start := time.Now()
	if err := w.service.Cleanup(ctx, w.config.Days); err != nil {
		return err
	}
	w.logger.Info("retention sweep cycle completed", "duration", time.Since(start))
	return nil
}

// IsRunning returns whether the worker loop is active
func (w *RetentionWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
