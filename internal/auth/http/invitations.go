package http

import (
	"errors"
	"net/http"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/service"
	"github.com/vultlabs/vult/pkg/httpx"
	"github.com/vultlabs/vult/pkg/slogx"
)

type InvitationsHandler struct {
	InvitationService *service.InvitationService
}

// HandleMint creates an invitation
//
//	@Summary		Mint an invitation
//	@Description	Creates an invitation token granting the listed roles on
//	@Description	redemption. The opaque value is returned exactly once.
//	@Description	Requires Create on InvitationToken.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	MintInvitationResponse
//	@Failure		400	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MintInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	invType := domain.InvitationType(req.Type)
	if req.Type == "" {
		invType = domain.InvitationStandard
	}

	inv, err := h.InvitationService.Mint(ctx, req.Email, invType, req.RoleIDs,
		req.ExpiresAt, httpx.UserIDFromCtx(ctx))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInvitation) {
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "invitation request rejected",
			})
			return
		}
		slogx.FromContext(ctx).Error("failed to mint invitation", "error", err)
		writeServerError(w, "Failed to mint invitation")
		return
	}

	info := toInvitationInfo(inv)
	httpx.WriteJSON(w, http.StatusCreated, MintInvitationResponse{
		Invitation: info,
		Value:      inv.Value,
	})
}

// HandleList lists invitations
//
//	@Summary		List invitations
//	@Description	Returns every invitation without its opaque value. Requires Read on InvitationToken.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	ListInvitationsResponse
//	@Security		BearerAuth
//	@Router			/v1/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invs, err := h.InvitationService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invitations", "error", err)
		writeServerError(w, "Failed to retrieve invitations")
		return
	}

	resp := ListInvitationsResponse{Invitations: make([]InvitationInfo, len(invs))}
	for i, inv := range invs {
		resp.Invitations[i] = toInvitationInfo(inv)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCancel revokes an invitation
//
//	@Summary		Cancel an invitation
//	@Description	Revokes an unaccepted invitation. Requires Delete on InvitationToken.
//	@Tags			Invitations
//	@Param			id	path	string	true	"Invitation ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id} [delete].
func (h *InvitationsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.InvitationService.Cancel(ctx, r.PathValue("id"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrInvitationNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
	default:
		slogx.FromContext(ctx).Error("failed to cancel invitation", "error", err)
		writeServerError(w, "Failed to cancel invitation")
	}
}

// HandleRedeem consumes an invitation and creates the account
//
//	@Summary		Redeem an invitation
//	@Description	Consumes an invitation value and creates the invited account
//	@Description	with the invitation's roles. Unknown, expired, cancelled and
//	@Description	spent invitations all fail the same way.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	UserInfo
//	@Failure		400	{object}	ErrorResponse	"Invitation not redeemable"
//	@Failure		409	{object}	ErrorResponse	"Username already taken"
//	@Router			/v1/invitations/redeem [post].
func (h *InvitationsHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RedeemInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.InvitationService.Redeem(ctx, req.Value, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationNotRedeemable):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "invitation is not redeemable",
			})
		case errors.Is(err, service.ErrAccountExists):
			httpx.WriteJSON(w, http.StatusConflict, ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "username already taken",
			})
		default:
			slogx.FromContext(ctx).Error("failed to redeem invitation", "error", err)
			writeServerError(w, "Failed to redeem invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserInfo(u))
}
