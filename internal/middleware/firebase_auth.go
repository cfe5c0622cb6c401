package middleware

import (
	"net/http"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/gooners/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

const firebaseTokenKey = "firebaseToken"

// FirebaseIDToken verifies a Firebase ID token sent as a bearer token and
// stores it for the handler. Requests without the header pass through so the
// handler can read the token from the body instead.
func FirebaseIDToken(verifier auth.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken := bearerToken(c)
			if idToken == "" {
				return next(c)
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
			}
			c.Set(firebaseTokenKey, token)

			return next(c)
		}
	}
}

// FirebaseToken returns the token verified by FirebaseIDToken, if any.
func FirebaseToken(c echo.Context) *firebaseauth.Token {
	token, _ := c.Get(firebaseTokenKey).(*firebaseauth.Token)
	return token
}
