package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vultlabs/vult/internal/auth/service"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/pkg/httpx"
	"github.com/vultlabs/vult/pkg/jwtx"
	"github.com/vultlabs/vult/pkg/slogx"

	_ "github.com/vultlabs/vult/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	TokenService      *service.TokenService
	AuthnService      *service.AuthnService
	AuthzService      *service.AuthzService
	UserService       *service.UserService
	RolesService      *service.RolesService
	InvitationService *service.InvitationService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerRoles()
	r.registerInvitations()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Vult Identity Service API
//	@version		0.1.0
//	@description	Identity and access-control service issuing HS256-signed bearer
//	@description	tokens and enforcing role/privilege based authorization.
//
//	@contact.name				Vult Labs
//	@contact.url				https://github.com/vultlabs/vult
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT bearer token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// protected builds the standard chain for an authenticated route: verify
// the bearer token, check the operation against the caller's roles, then
// rate limit per user.
func (r *Router) protected(h http.Handler, operation string, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireOperation(r.AuthzService.Authorize, operation),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{
		AuthnService: r.AuthnService,
		TokenTTL:     int64(r.TokenService.TTL.Seconds()),
	}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login, httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	register := &RegisterHandler{AuthnService: r.AuthnService}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(register, httpx.RateLimitByIP(httpx.StrictLimit)),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/users",
		r.protected(http.HandlerFunc(h.HandleList), "users.read", httpx.LenientLimit))
	r.Mux.Handle("GET /v1/users/{id}",
		r.protected(http.HandlerFunc(h.HandleGet), "users.read", httpx.LenientLimit))
	r.Mux.Handle("POST /v1/users/{id}/{action}",
		r.protected(http.HandlerFunc(h.HandleStatusAction), "users.write", httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/users/{id}",
		r.protected(http.HandlerFunc(h.HandleDelete), "users.delete", httpx.ModerateLimit))
	r.Mux.Handle("PUT /v1/users/{id}/roles/{roleID}",
		r.protected(http.HandlerFunc(h.HandleAssignRole), "users.write", httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/users/{id}/roles/{roleID}",
		r.protected(http.HandlerFunc(h.HandleRemoveRole), "users.write", httpx.ModerateLimit))

	// Password changes need only authentication plus the self-or-admin
	// check done in the handler chain below.
	r.Mux.Handle("POST /v1/users/{id}/password",
		httpx.Chain(r.selfOrOperation(http.HandlerFunc(h.HandleChangePassword), "users.write"),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

// selfOrOperation lets a caller act on their own account, and requires
// the named operation when acting on anyone else's.
func (r *Router) selfOrOperation(h http.Handler, operation string) http.Handler {
	guarded := httpx.RequireOperation(r.AuthzService.Authorize, operation)(h)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.PathValue("id") == httpx.UserIDFromCtx(req.Context()) {
			h.ServeHTTP(w, req)
			return
		}
		guarded.ServeHTTP(w, req)
	})
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	r.Mux.Handle("GET /v1/roles",
		r.protected(http.HandlerFunc(h.HandleList), "roles.read", httpx.LenientLimit))
	r.Mux.Handle("GET /v1/roles/{id}",
		r.protected(http.HandlerFunc(h.HandleGet), "roles.read", httpx.LenientLimit))
	r.Mux.Handle("POST /v1/roles",
		r.protected(http.HandlerFunc(h.HandleCreate), "roles.create", httpx.ModerateLimit))
	r.Mux.Handle("PUT /v1/roles/{id}",
		r.protected(http.HandlerFunc(h.HandleUpdate), "roles.write", httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/roles/{id}",
		r.protected(http.HandlerFunc(h.HandleDelete), "roles.delete", httpx.ModerateLimit))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InvitationService: r.InvitationService}

	r.Mux.Handle("POST /v1/invitations",
		r.protected(http.HandlerFunc(h.HandleMint), "invitations.create", httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/invitations",
		r.protected(http.HandlerFunc(h.HandleList), "invitations.read", httpx.LenientLimit))
	r.Mux.Handle("DELETE /v1/invitations/{id}",
		r.protected(http.HandlerFunc(h.HandleCancel), "invitations.delete", httpx.ModerateLimit))

	// Redemption is public: the invitation value is the credential.
	r.Mux.Handle("POST /v1/invitations/redeem",
		httpx.Chain(http.HandlerFunc(h.HandleRedeem), httpx.RateLimitByIP(httpx.StrictLimit)),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), httpx.RateLimitByIP(httpx.PublicLimit)))
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store), httpx.RateLimitByIP(httpx.PublicLimit)))
}
