// Package directory talks to the external identity directory that turns an
// administrator email into a redeemable B2B invitation.
package directory

import "context"

// Status is the directory's answer for one invitation attempt.
type Status string

const (
	// StatusSent means the directory created the invitation.
	StatusSent Status = "sent"

	// StatusAlreadyExists means the user is already present in the host
	// directory and no invitation is needed.
	StatusAlreadyExists Status = "alreadyExists"

	// StatusFailed means the directory rejected the request (permissions,
	// throttling, malformed address, ...). The ErrorText carries its reason.
	StatusFailed Status = "failed"
)

// Result is the outcome of one SendInvitation call.
type Result struct {
	Status    Status
	InviteID  string
	UserID    string
	ErrorText string
}

// Sender issues invitations. Implementations must treat the call as
// non-idempotent: the pipeline, not the sender, guards against duplicates.
// A returned error means the call itself could not complete (network,
// token acquisition); directory-level rejections come back as a Result
// with StatusFailed and a nil error.
type Sender interface {
	SendInvitation(ctx context.Context, email, redirectURL string) (Result, error)
}

// Unconfigured is the sender used when no directory credentials are set.
// Every delivery fails with a reason that points at the configuration, so
// the records show why nothing went out.
type Unconfigured struct{}

func (Unconfigured) SendInvitation(context.Context, string, string) (Result, error) {
	return Result{
		Status:    StatusFailed,
		ErrorText: "directory credentials are not configured",
	}, nil
}
