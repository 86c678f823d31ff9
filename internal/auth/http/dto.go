package http

import "time"

// Wire DTOs for the HTTP surface. Domain types never cross the boundary
// directly; password hashes in particular stay inside.

type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserInfo struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	Status              string     `json:"status"`
	StatusReason        string     `json:"status_reason,omitempty"`
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	RoleIDs             []string   `json:"role_ids,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type ListUsersResponse struct {
	Users []UserInfo `json:"users"`
}

type StatusChangeRequest struct {
	Reason string `json:"reason,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type PrivilegeInfo struct {
	ID          string `json:"id,omitempty"`
	Aggregate   string `json:"aggregate"`
	AccessRight string `json:"access_right"`
}

type RoleInfo struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Privileges []PrivilegeInfo `json:"privileges"`
}

type ListRolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

type RoleRequest struct {
	Name       string          `json:"name"`
	Privileges []PrivilegeInfo `json:"privileges"`
}

type MintInvitationRequest struct {
	Email     string     `json:"email"`
	Type      string     `json:"type,omitempty"` // standard (default) or elevated
	RoleIDs   []string   `json:"role_ids,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type InvitationInfo struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Type       string     `json:"type"`
	InvitedBy  string     `json:"invited_by,omitempty"`
	RoleIDs    []string   `json:"role_ids,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy string     `json:"accepted_by,omitempty"`
	Cancelled  bool       `json:"cancelled"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MintInvitationResponse carries the opaque value exactly once, at mint
// time. List responses never include it.
type MintInvitationResponse struct {
	Invitation InvitationInfo `json:"invitation"`
	Value      string         `json:"value"`
}

type ListInvitationsResponse struct {
	Invitations []InvitationInfo `json:"invitations"`
}

type RedeemInvitationRequest struct {
	Value    string `json:"value"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type HealthChecks struct {
	Database string `json:"database,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
