package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/internal/onboard/telemetry"
)

// RetryScheduler periodically sweeps the invitation records for failed
// deliveries whose backoff has elapsed and hands them back to the
// processor for another attempt.
type RetryScheduler struct {
	Store     store.Store
	Processor *Processor
	Telemetry telemetry.Emitter
	Logger    *slog.Logger
	Interval  time.Duration
	Backoff   BackoffTable

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}

	// now is swapped out in tests.
	now func() time.Time
}

// NewRetryScheduler creates a scheduler sweeping at the given interval.
// If interval is 0 or negative, defaults to 15 seconds.
func NewRetryScheduler(st store.Store, proc *Processor, emitter telemetry.Emitter, logger *slog.Logger, interval time.Duration, backoff BackoffTable) *RetryScheduler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if emitter == nil {
		emitter = telemetry.Nop{}
	}

	return &RetryScheduler{
		Store:     st,
		Processor: proc,
		Telemetry: emitter,
		Logger:    logger,
		Interval:  interval,
		Backoff:   backoff,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		now:       time.Now,
	}
}

// Start begins the background worker that periodically runs the retry sweep.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *RetryScheduler) Start() {
	go s.run()
	s.Logger.Info("retry scheduler started",
		"interval", s.Interval,
		"max_attempts", s.Backoff.MaxAttempts(),
	)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress sweep.
func (s *RetryScheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("retry scheduler stopped")
}

// run is the main background worker loop.
func (s *RetryScheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one pass over the failed records. The store query applies
// the shortest backoff as a coarse cutoff; the per-record delay from the
// table is checked here before re-dispatching. Failures on one tenant
// never stop the rest of the sweep.
func (s *RetryScheduler) Sweep(ctx context.Context) {
	now := s.now()

	candidates, err := s.Store.Tenants().ListRetryCandidates(ctx, s.Backoff.MaxAttempts(), now.Add(-s.Backoff.Floor()))
	if err != nil {
		s.Logger.Error("retry sweep query failed", "error", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	s.Logger.Debug("retry sweep found candidates", "count", len(candidates))

	var retried int
	for _, rec := range candidates {
		// RetryCount is at least 1 here (the failed attempt bumped it),
		// so index with count-1: the delay owed after that attempt.
		delay := s.Backoff.DelayFor(rec.RetryCount - 1)
		if now.Before(rec.InvitationDateUTC.Add(delay)) {
			continue
		}
		req, err := domain.NewInvitationRequest(rec.TenantID, rec.AdminEmail, "", domain.AutoRetryActor)
		if err != nil {
			s.Logger.Warn("skipping unretryable candidate", "tenant_id", rec.TenantID, "error", err)
			continue
		}

		s.Telemetry.Emit(telemetry.EventRetried, map[string]string{
			"tenant_id": rec.TenantID,
		})
		outcome := s.Processor.Process(ctx, req)

		s.Logger.Info("retry attempt finished",
			"tenant_id", rec.TenantID,
			"state", outcome.State,
			"attempt", rec.RetryCount+1,
		)
		retried++
	}

	if retried > 0 {
		s.Logger.Info("retry sweep completed", "retried", retried)
	}
}
