package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vaultsuite/onboard/internal/onboard/directory"
	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/internal/onboard/telemetry"
	"github.com/vaultsuite/onboard/pkg/slogx"
)

// processingErrorPrefix marks failures of the pipeline itself (store or
// directory unreachable) as opposed to failures reported by the directory.
const processingErrorPrefix = "Processing error: "

// Processor runs one invitation attempt: two record writes bracketing a
// single directory call. It never returns an error — every fault is
// resolved into a Failed outcome so callers always see a value.
//
// The attempt is serialized per tenant, so the queue consumer, the retry
// scheduler and the manual resend path cannot interleave their writes for
// the same tenant.
type Processor struct {
	Store     store.Store
	Sender    directory.Sender
	Telemetry telemetry.Emitter

	locks tenantLocks
}

// Process executes one attempt for a validated request.
//
// The pre-call Pending write is deliberate: if the process dies during the
// directory call, the record shows an attempt was in flight. The contract
// is at-least-once, not exactly-once — a fault between the two writes
// leaves the record in whatever state it reached.
func (p *Processor) Process(ctx context.Context, req domain.InvitationRequest) domain.InvitationOutcome {
	ctx = slogx.WithTenant(ctx, req.TenantID)
	log := slogx.FromContext(ctx).With("request_id", req.RequestID)

	// Requests are validated at the boundary; a malformed one reaching the
	// processor is refused without touching the record.
	if err := req.Validate(); err != nil {
		log.Warn("processor received invalid request", "err", err)
		return domain.FailedOutcome(err.Error())
	}

	unlock := p.locks.Lock(req.TenantID)
	defer unlock()

	tenants := p.Store.Tenants()

	// 1. Load the tenant's record, creating a default one if absent.
	rec, err := tenants.GetTenant(ctx, req.TenantID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to load tenant record", "err", err)
			return p.failed(req, processingErrorPrefix+err.Error())
		}
		rec = domain.NewTenantInvitationRecord(req.TenantID)
	}

	// 2. Persist the Pending pre-call write. This is what makes a crash
	// mid-call auditable.
	rec.State = domain.StatePending
	rec.AdminEmail = req.AdminEmail
	rec.InvitedBy = req.InvitedBy
	rec.InvitationDateUTC = time.Now().UTC()
	rec.RetryCount++

	if err := tenants.UpsertTenant(ctx, rec); err != nil {
		log.Error("failed to persist pending attempt", "err", err)
		return p.failed(req, processingErrorPrefix+err.Error())
	}

	// 3. Call the directory and map its answer.
	outcome := p.send(ctx, log, req)

	// 4. Persist the outcome.
	rec.ApplyOutcome(outcome)
	if err := tenants.UpsertTenant(ctx, rec); err != nil {
		log.Error("failed to persist attempt outcome", "err", err,
			"state", outcome.State.String(),
		)
		return p.failed(req, processingErrorPrefix+err.Error())
	}

	p.emit(req, outcome)
	log.Info("invitation attempt finished",
		"state", outcome.State.String(),
		"retry_count", rec.RetryCount,
	)
	return outcome
}

func (p *Processor) send(ctx context.Context, log *slog.Logger, req domain.InvitationRequest) domain.InvitationOutcome {
	res, err := p.Sender.SendInvitation(ctx, req.AdminEmail, req.RedirectURL)
	if err != nil {
		log.Warn("directory call failed", "err", err)
		return domain.FailedOutcome(processingErrorPrefix + err.Error())
	}

	switch res.Status {
	case directory.StatusSent:
		return domain.SentOutcome(res.InviteID, res.UserID)
	case directory.StatusAlreadyExists:
		return domain.CompletedOutcome(res.UserID, "administrator already exists in the directory")
	default:
		return domain.FailedOutcome(res.ErrorText)
	}
}

func (p *Processor) failed(req domain.InvitationRequest, errText string) domain.InvitationOutcome {
	outcome := domain.FailedOutcome(errText)
	p.emit(req, outcome)
	return outcome
}

func (p *Processor) emit(req domain.InvitationRequest, outcome domain.InvitationOutcome) {
	if p.Telemetry == nil {
		return
	}

	name := telemetry.EventFailed
	switch outcome.State {
	case domain.StateSent:
		name = telemetry.EventSent
	case domain.StateCompleted:
		name = telemetry.EventCompleted
	case domain.StateSkipped:
		name = telemetry.EventSkipped
	}

	p.Telemetry.Emit(name, map[string]string{
		"tenant_id":  req.TenantID,
		"request_id": req.RequestID,
		"invited_by": req.InvitedBy,
	})
}
