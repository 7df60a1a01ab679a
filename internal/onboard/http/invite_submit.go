package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/queue"
	"github.com/vaultsuite/onboard/pkg/httpx"
	"github.com/vaultsuite/onboard/pkg/onboardsdk"
	"github.com/vaultsuite/onboard/pkg/slogx"
)

type InvitationSubmitHandler struct {
	Dispatcher queue.Dispatcher
}

// ServeHTTP godoc
//
//	@Summary		Submit Invitation Endpoint
//	@Description	Accepts an invitation request for a tenant's administrator and enqueues it for asynchronous delivery.
//	@Description	A 202 response means the request entered the pipeline, not that the invitation was delivered.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		onboardsdk.SubmitInvitationRequest	true	"Invitation request"
//	@Success		202		{object}	onboardsdk.SubmitInvitationResponse	"success, state, tenantId, requestId"
//	@Failure		400		{object}	onboardsdk.APIError					"error, message"
//	@Failure		401		{object}	onboardsdk.APIError					"error, message"
//	@Failure		500		{object}	onboardsdk.APIError					"error, message"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationSubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req onboardsdk.SubmitInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		onboardsdk.NewAPIError(http.StatusBadRequest,
			onboardsdk.ErrorCodeInvalidRequest, "invalid JSON body").WriteError(w)
		return
	}

	invitedBy := req.InvitedBy
	if invitedBy == "" {
		// Attribute the request to the authenticated caller.
		invitedBy = httpx.SubjectFromCtx(ctx)
	}

	inv, err := domain.NewInvitationRequest(req.TenantID, req.AdminEmail, req.RedirectURL, invitedBy)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingTenantID):
			onboardsdk.NewAPIError(http.StatusBadRequest,
				onboardsdk.ErrorCodeInvalidRequest, "tenantId is required").WriteError(w)
		case errors.Is(err, domain.ErrInvalidEmail):
			onboardsdk.NewAPIError(http.StatusBadRequest,
				onboardsdk.ErrorCodeInvalidRequest, "adminEmail is missing or malformed").WriteError(w)
		default:
			onboardsdk.ErrInvalidRequest.WriteError(w)
		}
		return
	}

	if err := h.Dispatcher.Enqueue(ctx, inv); err != nil {
		log.Error("failed to enqueue invitation", "err", err, "tenant_id", inv.TenantID)
		onboardsdk.NewAPIError(http.StatusInternalServerError,
			onboardsdk.ErrorCodeServerError, "failed to enqueue invitation").WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, onboardsdk.SubmitInvitationResponse{
		Success:   true,
		State:     domain.StatePending.String(),
		TenantID:  inv.TenantID,
		RequestID: inv.RequestID,
	})
}
