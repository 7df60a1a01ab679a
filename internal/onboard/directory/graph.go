package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/vaultsuite/onboard/pkg/slogx"
)

const defaultCallTimeout = 15 * time.Second

// GraphConfig configures the Microsoft Graph-style invitations client.
type GraphConfig struct {
	// BaseURL of the directory API, e.g. https://graph.microsoft.com/v1.0
	BaseURL string

	// TokenURL, ClientID and ClientSecret drive the client-credentials
	// grant used to authorize outbound calls.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string

	// CallTimeout bounds a single invitation call. The pipeline has no
	// timeout of its own and relies on this one.
	CallTimeout time.Duration
}

// GraphClient sends invitations through a Graph-style /invitations API.
type GraphClient struct {
	baseURL string
	httpc   *http.Client
}

// NewGraphClient builds a client whose transport injects bearer tokens
// obtained via the client-credentials grant.
func NewGraphClient(cfg GraphConfig) *GraphClient {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}

	httpc := cc.Client(context.Background())
	httpc.Timeout = cfg.CallTimeout
	if httpc.Timeout <= 0 {
		httpc.Timeout = defaultCallTimeout
	}

	return &GraphClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   httpc,
	}
}

// NewGraphClientWithHTTP allows injecting a pre-built HTTP client, used by
// tests and by deployments that terminate auth elsewhere.
func NewGraphClientWithHTTP(baseURL string, httpc *http.Client) *GraphClient {
	return &GraphClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

type inviteRequestBody struct {
	InvitedUserEmailAddress string `json:"invitedUserEmailAddress"`
	InviteRedirectURL       string `json:"inviteRedirectUrl"`
	SendInvitationMessage   bool   `json:"sendInvitationMessage"`
}

type inviteResponseBody struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	InvitedUser struct {
		ID string `json:"id"`
	} `json:"invitedUser"`
}

type graphErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SendInvitation posts to the /invitations endpoint and maps the response.
func (c *GraphClient) SendInvitation(ctx context.Context, email, redirectURL string) (Result, error) {
	log := slogx.FromContext(ctx)

	payload, err := json.Marshal(inviteRequestBody{
		InvitedUserEmailAddress: email,
		InviteRedirectURL:       redirectURL,
		SendInvitationMessage:   true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("directory: encode invitation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/invitations", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("directory: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("directory: call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("directory: read response: %w", err)
	}

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		var ok inviteResponseBody
		if err := json.Unmarshal(body, &ok); err != nil {
			return Result{}, fmt.Errorf("directory: decode response: %w", err)
		}
		log.Debug("invitation accepted by directory", "invite_id", ok.ID)
		return Result{
			Status:   StatusSent,
			InviteID: ok.ID,
			UserID:   ok.InvitedUser.ID,
		}, nil
	}

	var apiErr graphErrorBody
	_ = json.Unmarshal(body, &apiErr)

	if isAlreadyExists(resp.StatusCode, apiErr) {
		return Result{
			Status:    StatusAlreadyExists,
			ErrorText: apiErr.Error.Message,
		}, nil
	}

	msg := apiErr.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("directory returned status %d", resp.StatusCode)
	}
	log.Warn("directory rejected invitation",
		"status_code", resp.StatusCode,
		"error_code", apiErr.Error.Code,
	)
	return Result{
		Status:    StatusFailed,
		ErrorText: msg,
	}, nil
}

// isAlreadyExists detects the directory's "user is already a member"
// rejection, which the pipeline treats as success.
func isAlreadyExists(statusCode int, apiErr graphErrorBody) bool {
	if statusCode != http.StatusBadRequest && statusCode != http.StatusConflict {
		return false
	}
	if strings.EqualFold(apiErr.Error.Code, "invalidInvitedUser") {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Error.Message), "already exists")
}
