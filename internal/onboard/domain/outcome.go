package domain

import "time"

// InvitationOutcome is the result of one processing attempt. Construct
// outcomes only through the constructors below so each variant carries
// exactly the fields that make sense for it.
type InvitationOutcome struct {
	State InvitationState

	// InviteID is the directory's opaque invitation identifier (Sent).
	InviteID string

	// UserID is the external user reference when the directory resolved one
	// (Sent when available, Completed always).
	UserID string

	// StatusNote is a human-readable explanation for Completed and Skipped
	// outcomes. It is never an error.
	StatusNote string

	// Error is the failure text for Failed outcomes.
	Error string

	// AttemptedAt is when the attempt finished.
	AttemptedAt time.Time
}

// SentOutcome records a successful invitation dispatch.
func SentOutcome(inviteID, userID string) InvitationOutcome {
	return InvitationOutcome{
		State:       StateSent,
		InviteID:    inviteID,
		UserID:      userID,
		AttemptedAt: time.Now().UTC(),
	}
}

// CompletedOutcome records that the administrator already exists in the
// directory and no invitation was required.
func CompletedOutcome(userID, note string) InvitationOutcome {
	return InvitationOutcome{
		State:       StateCompleted,
		UserID:      userID,
		StatusNote:  note,
		AttemptedAt: time.Now().UTC(),
	}
}

// SkippedOutcome records that an attempt was dropped because a previous one
// already succeeded.
func SkippedOutcome(note string) InvitationOutcome {
	return InvitationOutcome{
		State:       StateSkipped,
		StatusNote:  note,
		AttemptedAt: time.Now().UTC(),
	}
}

// FailedOutcome records a delivery failure with the reason text.
func FailedOutcome(errText string) InvitationOutcome {
	return InvitationOutcome{
		State:       StateFailed,
		Error:       errText,
		AttemptedAt: time.Now().UTC(),
	}
}

// Succeeded reports whether the attempt ended in a deliverable state.
func (o InvitationOutcome) Succeeded() bool {
	return o.State == StateSent || o.State == StateCompleted
}
