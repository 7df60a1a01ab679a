package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/vaultsuite/onboard/pkg/idx"
)

const (
	// DefaultRedirectURL is where the administrator lands after redeeming
	// the invitation, unless the caller overrides it.
	DefaultRedirectURL = "https://myapplications.microsoft.com"

	// DefaultInvitedBy is recorded when no actor is supplied.
	DefaultInvitedBy = "System"

	// AutoRetryActor marks attempts initiated by the retry scheduler.
	AutoRetryActor = "AutoRetry"
)

var (
	ErrMissingTenantID = errors.New("domain: tenant id is required")
	ErrInvalidEmail    = errors.New("domain: admin email is missing or malformed")
)

// InvitationRequest is one attempt to invite a tenant's administrator.
// Construct it with NewInvitationRequest so defaults and the request id are
// always populated; requests decoded off the wire must pass Validate before
// entering the pipeline.
type InvitationRequest struct {
	TenantID    string    `json:"tenantId"`
	AdminEmail  string    `json:"adminEmail"`
	RedirectURL string    `json:"redirectUrl"`
	InvitedBy   string    `json:"invitedBy"`
	RequestID   string    `json:"requestId"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewInvitationRequest builds a validated request with defaults applied and
// a fresh correlation id.
func NewInvitationRequest(tenantID, adminEmail, redirectURL, invitedBy string) (InvitationRequest, error) {
	req := InvitationRequest{
		TenantID:    strings.TrimSpace(tenantID),
		AdminEmail:  strings.TrimSpace(adminEmail),
		RedirectURL: redirectURL,
		InvitedBy:   invitedBy,
		RequestID:   idx.New().String(),
		Timestamp:   time.Now().UTC(),
	}
	req.ApplyDefaults()

	if err := req.Validate(); err != nil {
		return InvitationRequest{}, err
	}
	return req, nil
}

// ApplyDefaults fills the optional fields. Safe to call on decoded requests.
func (r *InvitationRequest) ApplyDefaults() {
	if r.RedirectURL == "" {
		r.RedirectURL = DefaultRedirectURL
	}
	if r.InvitedBy == "" {
		r.InvitedBy = DefaultInvitedBy
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
}

// Validate enforces the boundary checks: a tenant id and a plausible email.
// Invalid requests never enter the pipeline and are never retried.
func (r InvitationRequest) Validate() error {
	if strings.TrimSpace(r.TenantID) == "" {
		return ErrMissingTenantID
	}
	email := strings.TrimSpace(r.AdminEmail)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
