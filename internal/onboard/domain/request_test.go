package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInvitationRequestAppliesDefaults(t *testing.T) {
	t.Parallel()

	req, err := NewInvitationRequest("tenant-1", "admin@example.com", "", "")
	require.NoError(t, err)

	require.Equal(t, DefaultRedirectURL, req.RedirectURL)
	require.Equal(t, DefaultInvitedBy, req.InvitedBy)
	require.NotEmpty(t, req.RequestID)
	require.False(t, req.Timestamp.IsZero())
}

func TestNewInvitationRequestRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	t.Run("missing tenant id", func(t *testing.T) {
		_, err := NewInvitationRequest("", "admin@example.com", "", "")
		require.ErrorIs(t, err, ErrMissingTenantID)
	})

	t.Run("whitespace tenant id", func(t *testing.T) {
		_, err := NewInvitationRequest("   ", "admin@example.com", "", "")
		require.ErrorIs(t, err, ErrMissingTenantID)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := NewInvitationRequest("tenant-1", "", "", "")
		require.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("email without at sign", func(t *testing.T) {
		_, err := NewInvitationRequest("tenant-1", "not-an-email", "", "")
		require.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()

	sent := SentOutcome("inv-1", "user-1")
	require.Equal(t, StateSent, sent.State)
	require.True(t, sent.Succeeded())

	completed := CompletedOutcome("user-2", "already a member")
	require.Equal(t, StateCompleted, completed.State)
	require.True(t, completed.Succeeded())
	require.Empty(t, completed.Error)

	skipped := SkippedOutcome("invitation already sent")
	require.Equal(t, StateSkipped, skipped.State)
	require.False(t, skipped.Succeeded())

	failed := FailedOutcome("directory unavailable")
	require.Equal(t, StateFailed, failed.State)
	require.Equal(t, "directory unavailable", failed.Error)
	require.False(t, failed.Succeeded())
}

func TestTerminalStates(t *testing.T) {
	t.Parallel()

	require.True(t, StateSent.Terminal())
	require.True(t, StateCompleted.Terminal())
	require.False(t, StatePending.Terminal())
	require.False(t, StateFailed.Terminal())
	require.False(t, StateSkipped.Terminal())
}

func TestApplyOutcomePreservesEarlierReferences(t *testing.T) {
	t.Parallel()

	rec := NewTenantInvitationRecord("tenant-1")
	rec.ApplyOutcome(SentOutcome("inv-1", "user-1"))
	require.Equal(t, "inv-1", rec.ExternalInviteID)
	require.Equal(t, "user-1", rec.ExternalUserID)

	// A later failed attempt records the error but keeps the identifiers
	// from the attempt that produced them.
	rec.ApplyOutcome(FailedOutcome("timeout"))
	require.Equal(t, StateFailed, rec.State)
	require.Equal(t, "timeout", rec.LastError)
	require.Equal(t, "inv-1", rec.ExternalInviteID)
	require.Equal(t, "user-1", rec.ExternalUserID)
}
