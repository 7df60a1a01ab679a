package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/pkg/slogx"
)

var (
	// ErrNoInvitationOnFile means the tenant has never had an invitation
	// attempt, so there is nothing to resend.
	ErrNoInvitationOnFile = errors.New("service: no invitation on file for tenant")

	// ErrNoAdminEmail means the record exists but carries no admin email
	// to deliver to.
	ErrNoAdminEmail = errors.New("service: invitation record has no admin email")

	// ErrRetryLimitReached means the record is at or past the attempt
	// ceiling; the caller must surface this as a rate-limit signal, not a
	// generic failure.
	ErrRetryLimitReached = errors.New("service: retry limit reached")
)

// DefaultRequestedBy is recorded when a manual resend names no actor.
const DefaultRequestedBy = "Admin"

// ResendService drives operator-initiated redelivery of a tenant's
// invitation. It reuses the processor, so a manual resend counts against
// the same attempt ceiling as automated retries.
type ResendService struct {
	Store       store.Store
	Processor   *Processor
	MaxAttempts int
}

// Resend runs one manual attempt for the tenant. The returned retry count
// is the record's count after the attempt (or at refusal time when the
// ceiling was already hit).
func (s *ResendService) Resend(ctx context.Context, tenantID, redirectURL, requestedBy string) (domain.InvitationOutcome, int, error) {
	log := slogx.FromContext(ctx).With("tenant_id", tenantID)

	rec, err := s.Store.Tenants().GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.InvitationOutcome{}, 0, ErrNoInvitationOnFile
		}
		return domain.InvitationOutcome{}, 0, fmt.Errorf("load tenant record: %w", err)
	}

	if rec.AdminEmail == "" {
		return domain.InvitationOutcome{}, rec.RetryCount, ErrNoAdminEmail
	}
	if rec.RetryCount >= s.MaxAttempts {
		log.Warn("manual resend refused, retry limit reached",
			"retry_count", rec.RetryCount,
			"max_attempts", s.MaxAttempts,
		)
		return domain.InvitationOutcome{}, rec.RetryCount, ErrRetryLimitReached
	}

	if requestedBy == "" {
		requestedBy = DefaultRequestedBy
	}

	req, err := domain.NewInvitationRequest(tenantID, rec.AdminEmail, redirectURL, requestedBy)
	if err != nil {
		return domain.InvitationOutcome{}, rec.RetryCount, fmt.Errorf("build resend request: %w", err)
	}

	log.Info("manual resend accepted",
		"requested_by", requestedBy,
		"retry_count", rec.RetryCount,
	)

	outcome := s.Processor.Process(ctx, req)
	return outcome, rec.RetryCount + 1, nil
}
