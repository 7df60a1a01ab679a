package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaultsuite/onboard/internal/onboard/directory"
	"github.com/vaultsuite/onboard/internal/onboard/domain"
)

func newTestResend(t *testing.T) (*ResendService, *fakeSender) {
	t.Helper()

	proc, sender := newTestProcessor(t)
	svc := &ResendService{
		Store:       proc.Store,
		Processor:   proc,
		MaxAttempts: 5,
	}
	return svc, sender
}

func TestResendUnknownTenant(t *testing.T) {
	svc, _ := newTestResend(t)

	_, _, err := svc.Resend(context.Background(), "missing", "", "")
	require.ErrorIs(t, err, ErrNoInvitationOnFile)
}

func TestResendRecordWithoutEmail(t *testing.T) {
	svc, _ := newTestResend(t)

	rec := domain.NewTenantInvitationRecord("tenant-1")
	rec.State = domain.StateFailed
	rec.RetryCount = 1
	require.NoError(t, svc.Store.Tenants().UpsertTenant(context.Background(), rec))

	_, count, err := svc.Resend(context.Background(), "tenant-1", "", "")
	require.ErrorIs(t, err, ErrNoAdminEmail)
	require.Equal(t, 1, count)
}

func TestResendAtCeilingRefused(t *testing.T) {
	svc, _ := newTestResend(t)

	rec := domain.NewTenantInvitationRecord("tenant-1")
	rec.AdminEmail = "admin@example.com"
	rec.State = domain.StateFailed
	rec.RetryCount = 5
	rec.InvitationDateUTC = time.Now().UTC()
	require.NoError(t, svc.Store.Tenants().UpsertTenant(context.Background(), rec))

	_, count, err := svc.Resend(context.Background(), "tenant-1", "", "")
	require.ErrorIs(t, err, ErrRetryLimitReached)
	require.Equal(t, 5, count)

	// Refusal happens before dispatch, so the record is untouched.
	got, err := svc.Store.Tenants().GetTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Equal(t, 5, got.RetryCount)
	require.Equal(t, domain.StateFailed, got.State)
}

func TestResendDispatchesAndCounts(t *testing.T) {
	svc, sender := newTestResend(t)

	rec := domain.NewTenantInvitationRecord("tenant-1")
	rec.AdminEmail = "admin@example.com"
	rec.State = domain.StateFailed
	rec.LastError = "throttled"
	rec.RetryCount = 2
	rec.InvitationDateUTC = time.Now().UTC()
	require.NoError(t, svc.Store.Tenants().UpsertTenant(context.Background(), rec))

	sender.script(directory.Result{Status: directory.StatusSent, InviteID: "inv-1"}, nil)

	outcome, count, err := svc.Resend(context.Background(), "tenant-1", "", "Operator")
	require.NoError(t, err)
	require.Equal(t, domain.StateSent, outcome.State)
	require.Equal(t, 3, count)

	got, err := svc.Store.Tenants().GetTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Equal(t, 3, got.RetryCount)
	require.Equal(t, "Operator", got.InvitedBy)
	require.Empty(t, got.LastError)
}

func TestResendDefaultsRequestedBy(t *testing.T) {
	svc, sender := newTestResend(t)

	rec := domain.NewTenantInvitationRecord("tenant-1")
	rec.AdminEmail = "admin@example.com"
	rec.State = domain.StateFailed
	rec.RetryCount = 1
	rec.InvitationDateUTC = time.Now().UTC()
	require.NoError(t, svc.Store.Tenants().UpsertTenant(context.Background(), rec))

	sender.script(directory.Result{Status: directory.StatusSent, InviteID: "inv-1"}, nil)

	_, _, err := svc.Resend(context.Background(), "tenant-1", "", "")
	require.NoError(t, err)

	got, err := svc.Store.Tenants().GetTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Equal(t, DefaultRequestedBy, got.InvitedBy)
}
