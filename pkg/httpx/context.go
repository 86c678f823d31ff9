package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRoles  ctxKey = "roles"
	CtxKeyClaims ctxKey = "claims" // full jwtx.Claims when needed
)

// UserIDFromCtx returns the authenticated subject, or "" when the
// request was not authenticated.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// RolesFromCtx returns the role names carried in the verified token.
func RolesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyRoles).([]string); ok {
		return v
	}
	return nil
}
