package http

import (
	"errors"
	"net/http"

	"github.com/vultlabs/vult/internal/auth/service"
	"github.com/vultlabs/vult/pkg/httpx"
	"github.com/vultlabs/vult/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleList lists all users
//
//	@Summary		List users
//	@Description	Returns every user account. Requires Read on User.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	ListUsersResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.UserService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", "error", err)
		writeServerError(w, "Failed to retrieve users")
		return
	}

	resp := ListUsersResponse{Users: make([]UserInfo, len(users))}
	for i, u := range users {
		resp.Users[i] = toUserInfo(u)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet fetches one user
//
//	@Summary		Get a user
//	@Description	Returns a single user by id. Requires Read on User.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	UserInfo
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := h.UserService.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
			return
		}
		slogx.FromContext(ctx).Error("failed to get user", "error", err)
		writeServerError(w, "Failed to retrieve user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserInfo(u))
}

// HandleStatusAction dispatches the lifecycle actions:
// activate, deactivate, lock, unlock, restore.
//
//	@Summary		Change a user's lifecycle status
//	@Description	Applies one of the guarded status transitions with an optional reason.
//	@Tags			Users
//	@Accept			json
//	@Param			id		path	string	true	"User ID"
//	@Param			action	path	string	true	"activate|deactivate|lock|unlock|restore"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse	"Transition not allowed from current status"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/{action} [post].
func (h *UsersHandler) HandleStatusAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("id")
	action := r.PathValue("action")

	var req StatusChangeRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	var err error
	switch action {
	case "activate":
		err = h.UserService.Activate(ctx, userID, req.Reason)
	case "deactivate":
		err = h.UserService.Deactivate(ctx, userID, req.Reason)
	case "lock":
		err = h.UserService.Lock(ctx, userID, req.Reason)
	case "unlock":
		err = h.UserService.Unlock(ctx, userID, req.Reason)
	case "restore":
		err = h.UserService.Restore(ctx, userID, req.Reason)
	default:
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
		return
	}

	h.writeTransitionResult(w, r, err)
}

// HandleDelete soft-deletes a user
//
//	@Summary		Delete a user
//	@Description	Soft-deletes the account; the record is preserved. Requires Delete on User.
//	@Tags			Users
//	@Param			id	path	string	true	"User ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req StatusChangeRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	err := h.UserService.Delete(r.Context(), r.PathValue("id"), req.Reason)
	h.writeTransitionResult(w, r, err)
}

func (h *UsersHandler) writeTransitionResult(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
	case errors.Is(err, service.ErrInvalidTransition):
		httpx.WriteJSON(w, http.StatusConflict, ErrorResponse{
			Error:            "conflict",
			ErrorDescription: "transition not allowed from current status",
		})
	default:
		slogx.FromContext(r.Context()).Error("status transition failed", "error", err)
		writeServerError(w, "Failed to update user")
	}
}

// HandleChangePassword verifies the old password and installs a new one.
// Callers change their own password; a Write-on-User grant allows acting
// on other accounts.
//
//	@Summary		Change a user's password
//	@Tags			Users
//	@Accept			json
//	@Param			id	path	string	true	"User ID"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse	"Old password does not match"
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/password [post].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.UserService.ChangePassword(ctx, r.PathValue("id"), req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
	case errors.Is(err, service.ErrPasswordMismatch):
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:            "invalid_credentials",
			ErrorDescription: "current password does not match",
		})
	default:
		slogx.FromContext(ctx).Error("password change failed", "error", err)
		writeServerError(w, "Failed to change password")
	}
}

// HandleAssignRole grants a role to a user
//
//	@Summary		Assign a role to a user
//	@Tags			Users
//	@Param			id		path	string	true	"User ID"
//	@Param			roleID	path	string	true	"Role ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/roles/{roleID} [put].
func (h *UsersHandler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	err := h.UserService.AssignRole(r.Context(), r.PathValue("id"), r.PathValue("roleID"))
	h.writeRoleRefResult(w, r, err)
}

// HandleRemoveRole revokes a role from a user
//
//	@Summary		Remove a role from a user
//	@Tags			Users
//	@Param			id		path	string	true	"User ID"
//	@Param			roleID	path	string	true	"Role ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/roles/{roleID} [delete].
func (h *UsersHandler) HandleRemoveRole(w http.ResponseWriter, r *http.Request) {
	err := h.UserService.RemoveRole(r.Context(), r.PathValue("id"), r.PathValue("roleID"))
	h.writeRoleRefResult(w, r, err)
}

func (h *UsersHandler) writeRoleRefResult(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrRoleNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
	default:
		slogx.FromContext(r.Context()).Error("role reference change failed", "error", err)
		writeServerError(w, "Failed to update user roles")
	}
}
