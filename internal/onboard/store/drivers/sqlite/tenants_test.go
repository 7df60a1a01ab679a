package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestGetTenantNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Tenants().GetTenant(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertCreatesAndUpdates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rec := domain.NewTenantInvitationRecord("tenant-1")
	rec.AdminEmail = "admin@example.com"
	rec.InvitationDateUTC = time.Now().UTC()
	rec.InvitedBy = "System"
	rec.RetryCount = 1

	require.NoError(t, st.Tenants().UpsertTenant(ctx, rec))

	got, err := st.Tenants().GetTenant(ctx, "tenant-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, got.State)
	require.Equal(t, "admin@example.com", got.AdminEmail)
	require.Equal(t, 1, got.RetryCount)
	require.Equal(t, 1, got.Revision)
	require.False(t, got.UpdatedAt.IsZero())

	// Second write to the same key updates in place and bumps the revision.
	got.State = domain.StateSent
	got.ExternalInviteID = "inv-123"
	require.NoError(t, st.Tenants().UpsertTenant(ctx, got))

	got, err = st.Tenants().GetTenant(ctx, "tenant-1")
	require.NoError(t, err)
	require.Equal(t, domain.StateSent, got.State)
	require.Equal(t, "inv-123", got.ExternalInviteID)
	require.Equal(t, 2, got.Revision)
}

func TestListRetryCandidates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	put := func(id string, state domain.InvitationState, retries int, attemptedAt time.Time) {
		t.Helper()
		rec := domain.NewTenantInvitationRecord(id)
		rec.AdminEmail = id + "@example.com"
		rec.State = state
		rec.RetryCount = retries
		rec.InvitationDateUTC = attemptedAt
		require.NoError(t, st.Tenants().UpsertTenant(ctx, rec))
	}

	put("due-old", domain.StateFailed, 1, now.Add(-10*time.Minute))
	put("due-recent", domain.StateFailed, 2, now.Add(-2*time.Minute))
	put("too-fresh", domain.StateFailed, 1, now.Add(-5*time.Second))
	put("at-ceiling", domain.StateFailed, 5, now.Add(-10*time.Minute))
	put("already-sent", domain.StateSent, 1, now.Add(-10*time.Minute))

	candidates, err := st.Tenants().ListRetryCandidates(ctx, 5, now.Add(-time.Minute))
	require.NoError(t, err)

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.TenantID)
	}

	// Oldest attempt first; ceiling, fresh and non-failed records excluded.
	require.Equal(t, []string{"due-old", "due-recent"}, ids)
}

func TestListRetryCandidatesSkipsRecordsWithoutAttemptDate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rec := domain.NewTenantInvitationRecord("no-date")
	rec.State = domain.StateFailed
	rec.RetryCount = 1
	require.NoError(t, st.Tenants().UpsertTenant(ctx, rec))

	candidates, err := st.Tenants().ListRetryCandidates(ctx, 5, time.Now().UTC())
	require.NoError(t, err)
	require.Empty(t, candidates)
}
