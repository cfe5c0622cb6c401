package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/gooners/backend/internal/auth"
	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/anonto42/gooners/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	stateCookieName = "gooners_oauth_state"
	stateTTL        = 10 * time.Minute
)

// AuthHandler handles sign-in, sign-out and session issuance
type AuthHandler struct {
	userRepository repositories.UserRepository
	sessions       *auth.SessionManager
	provider       auth.IdentityProvider
	firebase       auth.TokenVerifier
	secureCookies  bool
}

// NewAuthHandler creates a new AuthHandler. provider and firebase may be nil
// when the corresponding sign-in method is not configured.
func NewAuthHandler(userRepo repositories.UserRepository, sessions *auth.SessionManager, provider auth.IdentityProvider, firebase auth.TokenVerifier, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		sessions:       sessions,
		provider:       provider,
		firebase:       firebase,
		secureCookies:  secureCookies,
	}
}

// RegisterAuthRoutes registers the public authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.GET("/login", h.Login)
	g.GET("/callback", h.Callback)
	g.GET("/logout", h.Logout)
	if h.firebase != nil {
		g.POST("/auth/firebase", h.FirebaseLogin, middleware.FirebaseIDToken(h.firebase))
	}
}

// Login redirects to the identity provider's consent page
func (h *AuthHandler) Login(c echo.Context) error {
	if h.provider == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Sign-in is not configured")
	}

	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api",
		Expires:  time.Now().Add(stateTTL),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// Callback completes the OAuth flow and starts a session
func (h *AuthHandler) Callback(c echo.Context) error {
	if h.provider == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Sign-in is not configured")
	}

	stateCookie, err := c.Cookie(stateCookieName)
	h.clearCookie(c, stateCookieName, "/api")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.Redirect(http.StatusFound, "/api/login")
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusFound, "/api/login")
	}

	ctx := c.Request().Context()
	identity, err := h.provider.Exchange(ctx, code)
	if err != nil {
		log := logger.WithComponent("auth")
		log.Warn().Err(err).Msg("oauth code exchange failed")
		return c.Redirect(http.StatusFound, "/api/login")
	}
	user, err := auth.ResolveUser(ctx, h.userRepository, identity)
	if err != nil {
		log := logger.WithUserID(identity.ID)
		log.Error().Err(err).Msg("resolve signed-in user")
		return c.Redirect(http.StatusFound, "/api/login")
	}
	if _, err := h.startSession(c, user); err != nil {
		return internalError(c, "Failed to start session", err)
	}
	return c.Redirect(http.StatusFound, "/")
}

// Logout ends the session
func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearCookie(c, auth.SessionCookieName, "/")
	return c.Redirect(http.StatusFound, "/")
}

// FirebaseLogin exchanges a Firebase ID token for a session. The token is
// taken from the bearer header when present, otherwise from the body.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	ctx := c.Request().Context()

	token := middleware.FirebaseToken(c)
	if token == nil {
		var req models.FirebaseLoginRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		verified, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
		}
		token = verified
	}

	user, err := auth.ResolveUser(ctx, h.userRepository, auth.IdentityFromFirebase(token))
	if err != nil {
		return internalError(c, "Failed to sign in", err)
	}
	sessionToken, err := h.startSession(c, user)
	if err != nil {
		return internalError(c, "Failed to start session", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": sessionToken, "user": user})
}

func (h *AuthHandler) startSession(c echo.Context, user *models.User) (string, error) {
	token, expiresAt, err := h.sessions.Issue(user)
	if err != nil {
		return "", err
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func (h *AuthHandler) clearCookie(c echo.Context, name, path string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
