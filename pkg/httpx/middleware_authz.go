package httpx

import (
	"context"
	"net/http"

	"github.com/vultlabs/vult/pkg/slogx"
)

// AuthorizeFunc decides whether the given user may perform the named
// operation. An error or a false answer both deny the request.
type AuthorizeFunc func(ctx context.Context, userID, operation string) (bool, error)

// RequireOperation denies the request unless the authenticated caller is
// permitted to perform the named operation. Must run after
// AuthnMiddleware so the user ID is in the context.
func RequireOperation(authorize AuthorizeFunc, operation string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			userID := UserIDFromCtx(ctx)
			if userID == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			ok, err := authorize(ctx, userID, operation)
			if err != nil {
				log.Warn("authorization check failed", "operation", operation, "err", err)
				writeForbidden(w, operation)
				return
			}
			if !ok {
				writeForbidden(w, operation)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, operation string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_privileges", operation="`+operation+`"`)
	WriteError(w, http.StatusForbidden, "forbidden", "insufficient privileges for "+operation)
}
