package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/practice-tracker/internal/auth"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/service"
)

const stateCookieName = "oauth_state"

// IdentityProvider is the OAuth side of login. *auth.Provider implements it.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*model.ExternalIdentity, error)
}

// IdentityService is implemented by *service.IdentityService.
type IdentityService interface {
	Login(ctx context.Context, identity model.ExternalIdentity) (*service.LoginResult, error)
	Me(ctx context.Context) (*model.User, error)
	RegisterHandle(ctx context.Context, handle string) (*model.Profile, error)
}

// AuthHandler manages the login flow and the caller's own account.
//
//   - HandleLogin          → redirect the browser to the identity provider
//   - HandleCallback       → exchange the code, bind the identity, issue JWT
//   - HandleLogout         → clear the JWT cookie
//   - HandleMe             → the caller's profile
//   - HandleRegisterHandle → bind a ranking handle and store its tier
type AuthHandler struct {
	provider     IdentityProvider
	identity     IdentityService
	tokenTTL     time.Duration
	cookieSecure bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. provider may be nil when no
// identity provider is configured; login routes then answer 503.
func NewAuthHandler(
	provider IdentityProvider,
	identity IdentityService,
	tokenTTL time.Duration,
	cookieSecure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider:     provider,
		identity:     identity,
		tokenTTL:     tokenTTL,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// HandleLogin redirects the user to the identity provider.
//
// HTTP: GET /auth/login
//
// CSRF PROTECTION VIA STATE:
// A random state is stored in a short-lived HttpOnly cookie and sent to the
// provider, which echoes it back. HandleCallback rejects a mismatch.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Kind:    "login_disabled",
			Message: "no identity provider is configured",
		})
		return
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the login flow.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a verified external identity
//  3. Bind it to an internal user (domain policy, then upsert)
//  4. Issue a JWT in an HttpOnly cookie
//  5. Redirect to the app
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Kind:    "login_disabled",
			Message: "no identity provider is configured",
		})
		return
	}

	// --- Step 1: CSRF state ---
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	// --- Step 2: provider exchange ---
	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: provider exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	// --- Steps 3 and 4: bind identity, issue token ---
	result, err := h.identity.Login(r.Context(), *identity)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.setTokenCookie(w, result.Token, int(h.tokenTTL.Seconds()))

	// --- Step 5 ---
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the JWT cookie.
//
// HTTP: POST /auth/logout
//
// Tokens are stateless, so logout only deletes the cookie; a copied token
// stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", -1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// meResponse adds the display name of the stored tier.
type meResponse struct {
	*model.User
	TierName string `json:"tierName,omitempty"`
}

// HandleMe returns the caller's profile.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.Me(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	resp := meResponse{User: user}
	if user.Tier != nil {
		resp.TierName = model.TierName(*user.Tier)
	}
	writeJSON(w, http.StatusOK, resp)
}

type registerHandleRequest struct {
	Handle string `json:"handle"`
}

// HandleRegisterHandle binds a ranking handle to the caller.
//
// HTTP: POST /api/me/handle
// REQUEST BODY: {"handle": "kim_01"}
func (h *AuthHandler) HandleRegisterHandle(w http.ResponseWriter, r *http.Request) {
	var req registerHandleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	profile, err := h.identity.RegisterHandle(r.Context(), req.Handle)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Profile: profile, TierName: model.TierName(profile.Tier)})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
