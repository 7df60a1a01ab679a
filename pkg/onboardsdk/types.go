package onboardsdk

// SubmitInvitationRequest asks the service to deliver an invitation to a
// tenant's administrator. TenantID and AdminEmail are required; the rest
// default server-side.
type SubmitInvitationRequest struct {
	TenantID    string `json:"tenantId"`
	AdminEmail  string `json:"adminEmail"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	InvitedBy   string `json:"invitedBy,omitempty"`
}

// SubmitInvitationResponse acknowledges that the request entered the
// pipeline. State is "Pending" on acceptance: delivery happens
// asynchronously.
type SubmitInvitationResponse struct {
	Success   bool   `json:"success"`
	State     string `json:"state"`
	TenantID  string `json:"tenantId"`
	RequestID string `json:"requestId"`
}

// ResendInvitationRequest asks for a manual redelivery of a tenant's
// invitation using the email already on record.
type ResendInvitationRequest struct {
	TenantID    string `json:"tenantId"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// ResendInvitationResponse reports the synchronous outcome of a manual
// resend attempt.
type ResendInvitationResponse struct {
	Success    bool   `json:"success"`
	State      string `json:"state"`
	Message    string `json:"message,omitempty"`
	InviteID   string `json:"inviteId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retryCount"`
	MaxRetries int    `json:"maxRetries"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of the service's critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Queue    string `json:"queue"`
}
