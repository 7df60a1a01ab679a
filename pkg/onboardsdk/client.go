package onboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the tenant onboarding service. All invitation
// operations require a bearer token; the health probes do not.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is sent as the bearer credential on invitation operations.
	Token string
}

// NewSDKClient creates an onboarding service client.
func NewSDKClient(baseURL, token string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}

// SubmitInvitation enqueues an invitation for asynchronous delivery.
func (c *SDKClient) SubmitInvitation(ctx context.Context, req SubmitInvitationRequest) (*SubmitInvitationResponse, error) {
	var out SubmitInvitationResponse
	if err := c.postJSON(ctx, "/v1/invitations", req, &out, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendInvitation triggers a manual redelivery and waits for its outcome.
// A *APIError with ErrorCodeRetryLimitReached means the tenant is at the
// attempt ceiling.
func (c *SDKClient) ResendInvitation(ctx context.Context, req ResendInvitationRequest) (*ResendInvitationResponse, error) {
	var out ResendInvitationResponse
	if err := c.postJSON(ctx, "/v1/invitations/resend", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Livez reports whether the service process is up.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// Readyz reports whether the service's dependencies are reachable.
func (c *SDKClient) Readyz(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) postJSON(ctx context.Context, path string, body, target any, expectedStatus int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return decodeJSON(resp, target, expectedStatus)
}

// decodeJSON decodes a JSON response into the target. Non-expected status
// codes come back as a typed *APIError.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
