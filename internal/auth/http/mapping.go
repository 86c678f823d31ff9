package http

import (
	"encoding/json"
	"net/http"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/pkg/httpx"
)

// decodeJSON reads the request body into v. A malformed body writes the
// 400 response itself and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "malformed JSON body",
		})
		return false
	}
	return true
}

func writeServerError(w http.ResponseWriter, desc string) {
	httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:            "server_error",
		ErrorDescription: desc,
	})
}

func toUserInfo(u domain.User) UserInfo {
	return UserInfo{
		ID:                  u.ID,
		Username:            u.Username,
		Email:               u.Email,
		Status:              string(u.Status),
		StatusReason:        u.StatusReason,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LastLoginAt:         u.LastLoginAt,
		RoleIDs:             u.RoleIDs,
		CreatedAt:           u.CreatedAt,
	}
}

func toRoleInfo(role domain.Role) RoleInfo {
	info := RoleInfo{
		ID:         role.ID,
		Name:       role.Name,
		Privileges: make([]PrivilegeInfo, len(role.Privileges)),
	}
	for i, p := range role.Privileges {
		info.Privileges[i] = PrivilegeInfo{
			ID:          p.ID,
			Aggregate:   p.Aggregate,
			AccessRight: p.AccessRight.String(),
		}
	}
	return info
}

func toInvitationInfo(inv domain.InvitationToken) InvitationInfo {
	return InvitationInfo{
		ID:         inv.ID,
		Email:      inv.Email,
		Type:       string(inv.Type),
		InvitedBy:  inv.InvitedBy,
		RoleIDs:    inv.RoleIDs,
		ExpiresAt:  inv.ExpiresAt,
		AcceptedAt: inv.AcceptedAt,
		AcceptedBy: inv.AcceptedBy,
		Cancelled:  inv.Cancelled,
		CreatedAt:  inv.CreatedAt,
	}
}
