package http

import (
	"errors"
	"net/http"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/service"
	"github.com/vultlabs/vult/pkg/httpx"
	"github.com/vultlabs/vult/pkg/slogx"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

// HandleList lists all roles
//
//	@Summary		List all roles
//	@Description	Returns every role with its privileges. Requires Read on Role.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	ListRolesResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roles, err := h.RolesService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list roles", "error", err)
		writeServerError(w, "Failed to retrieve roles")
		return
	}

	resp := ListRolesResponse{Roles: make([]RoleInfo, len(roles))}
	for i, role := range roles {
		resp.Roles[i] = toRoleInfo(role)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet fetches one role
//
//	@Summary		Get a role
//	@Tags			Roles
//	@Produce		json
//	@Param			id	path		string	true	"Role ID"
//	@Success		200	{object}	RoleInfo
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	role, err := h.RolesService.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrRoleNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
			return
		}
		slogx.FromContext(ctx).Error("failed to get role", "error", err)
		writeServerError(w, "Failed to retrieve role")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRoleInfo(role))
}

// HandleCreate creates a role
//
//	@Summary		Create a role
//	@Description	Creates a role with its privileges. The role name must be unique. Requires Create on Role.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	RoleInfo
//	@Failure		400	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse	"Role name or privilege already exists"
//	@Security		BearerAuth
//	@Router			/v1/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decodeRoleRequest(w, r)
	if !ok {
		return
	}

	role, err := h.RolesService.Create(ctx, req.name, req.privileges)
	if err != nil {
		h.writeRoleError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toRoleInfo(role))
}

// HandleUpdate renames a role and reconciles its privileges
//
//	@Summary		Update a role
//	@Description	Renames the role and reconciles its privilege set: privileges
//	@Description	with a known id are updated in place, those without an id are
//	@Description	added, and existing ones missing from the request are removed.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string	true	"Role ID"
//	@Success		200	{object}	RoleInfo
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [put].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decodeRoleRequest(w, r)
	if !ok {
		return
	}

	role, err := h.RolesService.Update(ctx, r.PathValue("id"), req.name, req.privileges)
	if err != nil {
		h.writeRoleError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRoleInfo(role))
}

// HandleDelete deletes a role
//
//	@Summary		Delete a role
//	@Description	Deletes the role, its privileges, and every user's reference to it. Requires Delete on Role.
//	@Tags			Roles
//	@Param			id	path	string	true	"Role ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.RolesService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeRoleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type parsedRoleRequest struct {
	name       string
	privileges []service.PrivilegeInput
}

func (h *RolesHandler) decodeRoleRequest(w http.ResponseWriter, r *http.Request) (parsedRoleRequest, bool) {
	var req RoleRequest
	if !decodeJSON(w, r, &req) {
		return parsedRoleRequest{}, false
	}

	parsed := parsedRoleRequest{name: req.Name}
	for _, p := range req.Privileges {
		right, err := domain.ParseAccessRight(p.AccessRight)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "unknown access right " + p.AccessRight,
			})
			return parsedRoleRequest{}, false
		}
		parsed.privileges = append(parsed.privileges, service.PrivilegeInput{
			ID:          p.ID,
			Aggregate:   p.Aggregate,
			AccessRight: right,
		})
	}
	return parsed, true
}

func (h *RolesHandler) writeRoleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRoleRequest):
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "role name and well-formed privileges are required",
		})
	case errors.Is(err, service.ErrRoleNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
	case errors.Is(err, service.ErrRoleConflict):
		httpx.WriteJSON(w, http.StatusConflict, ErrorResponse{
			Error:            "conflict",
			ErrorDescription: "role name or privilege already exists",
		})
	default:
		slogx.FromContext(r.Context()).Error("role operation failed", "error", err)
		writeServerError(w, "Role operation failed")
	}
}
