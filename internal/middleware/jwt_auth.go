package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/gooners/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

// SessionAuth admits requests carrying a valid session token, either in the
// session cookie or as "Authorization: Bearer <token>".
func SessionAuth(sessions *auth.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := sessionToken(c)
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			claims, err := sessions.Parse(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithUserID(req.Context(), claims.Subject)))

			return next(c)
		}
	}
}

// CurrentUserID returns the id of the signed-in user, or "" outside SessionAuth.
func CurrentUserID(c echo.Context) string {
	return auth.UserIDFromContext(c.Request().Context())
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(c)
}

func bearerToken(c echo.Context) string {
	parts := strings.Fields(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
