package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vaultsuite/onboard/internal/onboard/service"
	"github.com/vaultsuite/onboard/pkg/httpx"
	"github.com/vaultsuite/onboard/pkg/onboardsdk"
	"github.com/vaultsuite/onboard/pkg/slogx"
)

type InvitationResendHandler struct {
	ResendService *service.ResendService
}

// ServeHTTP godoc
//
//	@Summary		Resend Invitation Endpoint
//	@Description	Triggers a manual redelivery of a tenant's invitation using the admin email already on record.
//	@Description	Unlike submission this is synchronous: the response carries the delivery outcome.
//	@Description	A 429 response means the tenant has reached the retry ceiling.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		onboardsdk.ResendInvitationRequest	true	"Resend request"
//	@Success		200		{object}	onboardsdk.ResendInvitationResponse	"success, state, retryCount, maxRetries"
//	@Failure		400		{object}	onboardsdk.APIError					"error, message"
//	@Failure		401		{object}	onboardsdk.APIError					"error, message"
//	@Failure		404		{object}	onboardsdk.APIError					"error, message"
//	@Failure		429		{object}	onboardsdk.APIError					"error, message"
//	@Failure		500		{object}	onboardsdk.APIError					"error, message"
//	@Security		BearerAuth
//	@Router			/v1/invitations/resend [post].
func (h *InvitationResendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req onboardsdk.ResendInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		onboardsdk.NewAPIError(http.StatusBadRequest,
			onboardsdk.ErrorCodeInvalidRequest, "invalid JSON body").WriteError(w)
		return
	}
	if req.TenantID == "" {
		onboardsdk.NewAPIError(http.StatusBadRequest,
			onboardsdk.ErrorCodeInvalidRequest, "tenantId is required").WriteError(w)
		return
	}

	requestedBy := req.RequestedBy
	if requestedBy == "" {
		requestedBy = httpx.SubjectFromCtx(ctx)
	}

	outcome, retryCount, err := h.ResendService.Resend(ctx, req.TenantID, req.RedirectURL, requestedBy)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoInvitationOnFile):
			onboardsdk.NewAPIError(http.StatusNotFound,
				onboardsdk.ErrorCodeNotFound, "no invitation on file for tenant").WriteError(w)
		case errors.Is(err, service.ErrNoAdminEmail):
			onboardsdk.NewAPIError(http.StatusNotFound,
				onboardsdk.ErrorCodeNotFound, "invitation record has no admin email").WriteError(w)
		case errors.Is(err, service.ErrRetryLimitReached):
			onboardsdk.NewAPIError(http.StatusTooManyRequests,
				onboardsdk.ErrorCodeRetryLimitReached,
				fmt.Sprintf("retry limit reached (%d of %d attempts used)",
					retryCount, h.ResendService.MaxAttempts)).WriteError(w)
		default:
			log.Error("manual resend failed", "err", err, "tenant_id", req.TenantID)
			onboardsdk.ErrServerError.WriteError(w)
		}
		return
	}

	resp := onboardsdk.ResendInvitationResponse{
		Success:    outcome.Succeeded(),
		State:      outcome.State.String(),
		Message:    outcome.StatusNote,
		InviteID:   outcome.InviteID,
		UserID:     outcome.UserID,
		Error:      outcome.Error,
		RetryCount: retryCount,
		MaxRetries: h.ResendService.MaxAttempts,
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
