package domain

// InvitationState is the lifecycle state of a tenant's invitation record.
type InvitationState string

const (
	// StatePending is set before the directory call of an attempt. A record
	// observed as Pending outside of an in-flight attempt means the process
	// crashed mid-call.
	StatePending InvitationState = "Pending"

	// StateSent means the directory accepted the invitation and an email is
	// on its way to the administrator.
	StateSent InvitationState = "Sent"

	// StateCompleted means the administrator already exists in the host
	// directory, so no invitation was needed.
	StateCompleted InvitationState = "Completed"

	// StateSkipped means an attempt was dropped because an earlier one
	// already succeeded.
	StateSkipped InvitationState = "Skipped"

	// StateFailed means the last attempt did not deliver; the record is
	// eligible for scheduled retry until the attempt ceiling.
	StateFailed InvitationState = "Failed"
)

// Terminal reports whether the state needs no further processing.
// A Failed record is not terminal: the retry scheduler may pick it up.
func (s InvitationState) Terminal() bool {
	return s == StateSent || s == StateCompleted
}

func (s InvitationState) String() string { return string(s) }
