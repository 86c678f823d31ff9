package http

import (
	"errors"
	"net/http"

	"github.com/vultlabs/vult/internal/auth/service"
	"github.com/vultlabs/vult/pkg/httpx"
	"github.com/vultlabs/vult/pkg/slogx"
)

type LoginHandler struct {
	AuthnService *service.AuthnService
	TokenTTL     int64 // seconds, echoed back as expires_in
}

// ServeHTTP handles the login endpoint
//
//	@Summary		Authenticate with username and password
//	@Description	Exchanges a username/password pair for a signed bearer token.
//	@Description	All authentication failures return the same 401 body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	TokenResponse	"Signed bearer token"
//	@Failure		400	{object}	ErrorResponse	"Malformed request body"
//	@Failure		401	{object}	ErrorResponse	"Invalid credentials"
//	@Failure		500	{object}	ErrorResponse	"Internal server error"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, token, err := h.AuthnService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:            "invalid_credentials",
				ErrorDescription: "Invalid username or password",
			})
			return
		}
		log.Error("login failed", "error", err)
		writeServerError(w, "Authentication failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.TokenTTL,
	})
}

type RegisterHandler struct {
	AuthnService *service.AuthnService
}

// ServeHTTP handles the registration endpoint
//
//	@Summary		Register a new account
//	@Description	Creates a new active account with no roles attached.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	UserInfo		"Created user"
//	@Failure		400	{object}	ErrorResponse	"Missing or malformed fields"
//	@Failure		409	{object}	ErrorResponse	"Username or email already taken"
//	@Failure		500	{object}	ErrorResponse	"Internal server error"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.AuthnService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "username, email and password are required",
			})
		case errors.Is(err, service.ErrAccountExists):
			httpx.WriteJSON(w, http.StatusConflict, ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "username or email already taken",
			})
		default:
			log.Error("registration failed", "error", err)
			writeServerError(w, "Registration failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserInfo(u))
}
