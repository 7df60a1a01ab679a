package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/internal/onboard/telemetry"
)

// DeadLetterRecorder consumes the dead-letter topic and writes the
// terminal failure onto the tenant record. It never calls the directory:
// a dead-lettered message has exhausted its deliveries, and the only job
// left is making that visible in the record.
type DeadLetterRecorder struct {
	reader    messageReader
	store     store.Store
	telemetry telemetry.Emitter
	logger    *slog.Logger

	cancel context.CancelFunc
	doneCh chan struct{}
}

// NewDeadLetterRecorder builds a recorder for the dead-letter counterpart
// of the invitations topic.
func NewDeadLetterRecorder(cfg ConsumerConfig, st store.Store, emitter telemetry.Emitter, logger *slog.Logger) *DeadLetterRecorder {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic + DeadLetterSuffix,
		GroupID:  cfg.GroupID + "-deadletter",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newDeadLetterRecorderWithReader(reader, st, emitter, logger)
}

func newDeadLetterRecorderWithReader(reader messageReader, st store.Store, emitter telemetry.Emitter, logger *slog.Logger) *DeadLetterRecorder {
	if emitter == nil {
		emitter = telemetry.Nop{}
	}
	return &DeadLetterRecorder{
		reader:    reader,
		store:     st,
		telemetry: emitter,
		logger:    logger,
	}
}

// Start begins the background fetch loop. Non-blocking; call Stop to
// shut down.
func (r *DeadLetterRecorder) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.doneCh = make(chan struct{})

	go r.run(ctx)
	r.logger.Info("dead-letter recorder started")
}

// Stop cancels the fetch loop, waits for it to drain, and closes the
// reader.
func (r *DeadLetterRecorder) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.doneCh

	_ = r.reader.Close()
	r.logger.Info("dead-letter recorder stopped")
}

func (r *DeadLetterRecorder) run(ctx context.Context) {
	defer close(r.doneCh)

	for {
		msg, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("failed to fetch dead letter", "error", err)
			time.Sleep(time.Second)
			continue
		}

		if err := r.record(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			// Leave the message uncommitted so it is redelivered once the
			// store recovers.
			r.logger.Error("failed to record dead letter", "error", err, "offset", msg.Offset)
			time.Sleep(time.Second)
			continue
		}

		if err := r.reader.CommitMessages(ctx, msg); err != nil {
			r.logger.Error("failed to commit dead letter", "error", err, "offset", msg.Offset)
		}
	}
}

// record marks the tenant's record Failed with the dead-letter reason.
// The attempt count is bumped so the retry scheduler sees the slot the
// exhausted delivery consumed.
func (r *DeadLetterRecorder) record(ctx context.Context, msg kafka.Message) error {
	var req domain.InvitationRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil || req.TenantID == "" {
		// Fall back to the message key so even a mangled payload leaves a
		// trace on the tenant it was keyed to.
		req.TenantID = string(msg.Key)
	}
	if req.TenantID == "" {
		r.logger.Warn("discarding dead letter without tenant id", "offset", msg.Offset)
		return nil
	}

	tenants := r.store.Tenants()

	rec, err := tenants.GetTenant(ctx, req.TenantID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		rec = domain.NewTenantInvitationRecord(req.TenantID)
		rec.AdminEmail = req.AdminEmail
		rec.InvitedBy = req.InvitedBy
	}

	rec.State = domain.StateFailed
	rec.LastError = domain.DeadLetterErrorText
	rec.InvitationDateUTC = time.Now().UTC()
	rec.RetryCount++

	if err := tenants.UpsertTenant(ctx, rec); err != nil {
		return err
	}

	r.telemetry.Emit(telemetry.EventDeadLettered, map[string]string{
		"tenant_id": req.TenantID,
	})
	r.logger.Error("recorded dead-lettered invitation",
		"tenant_id", req.TenantID,
		"retry_count", rec.RetryCount,
	)
	return nil
}
