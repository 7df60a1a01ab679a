package domain

import "time"

// DeadLetterErrorText is written by the dead-letter recorder when the
// transport exhausted its delivery attempts for a tenant's message.
const DeadLetterErrorText = "max delivery count exceeded"

// TenantInvitationRecord is the persisted invitation lifecycle for one
// tenant, keyed by tenant id. It is created on the first attempt and kept
// for the tenant's lifetime as the invitation audit trail.
type TenantInvitationRecord struct {
	TenantID   string
	AdminEmail string
	State      InvitationState

	// InvitationDateUTC is the timestamp of the most recent attempt.
	InvitationDateUTC time.Time
	InvitedBy         string

	ExternalInviteID string
	ExternalUserID   string
	StatusNote       string

	// RetryCount increases by exactly one per processor invocation,
	// regardless of outcome, and is never reset.
	RetryCount int
	LastError  string

	// Revision bumps on every upsert. It exists for observability of the
	// write path, not for optimistic concurrency: attempts are serialized
	// per tenant before any write happens.
	Revision  int
	UpdatedAt time.Time
}

// NewTenantInvitationRecord returns the default record created on a
// tenant's first attempt.
func NewTenantInvitationRecord(tenantID string) TenantInvitationRecord {
	return TenantInvitationRecord{
		TenantID: tenantID,
		State:    StatePending,
	}
}

// ApplyOutcome writes an attempt's result back onto the record.
func (rec *TenantInvitationRecord) ApplyOutcome(o InvitationOutcome) {
	rec.State = o.State
	rec.LastError = o.Error
	if o.InviteID != "" {
		rec.ExternalInviteID = o.InviteID
	}
	if o.UserID != "" {
		rec.ExternalUserID = o.UserID
	}
	if o.StatusNote != "" {
		rec.StatusNote = o.StatusNote
	}
}
