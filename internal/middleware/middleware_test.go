package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/gooners/backend/internal/auth"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request, handler echo.HandlerFunc) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, mw(handler)(c)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestSessionAuth(t *testing.T) {
	sessions := auth.NewSessionManager("secret", time.Hour)
	token, _, err := sessions.Issue(&models.User{ID: "google:1", Username: "ann"})
	require.NoError(t, err)

	ok := func(c echo.Context) error {
		assert.Equal(t, "google:1", CurrentUserID(c))
		assert.Equal(t, "google:1", auth.UserIDFromContext(c.Request().Context()))
		assert.Nil(t, c.Get("userID"))
		return c.NoContent(http.StatusNoContent)
	}

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		_, err := run(t, SessionAuth(sessions), req, ok)
		assert.NoError(t, err)
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		_, err := run(t, SessionAuth(sessions), req, ok)
		assert.NoError(t, err)
	})

	for name, header := range map[string]string{
		"missing":   "",
		"malformed": "Token " + token,
		"invalid":   "Bearer nope",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			_, err := run(t, SessionAuth(sessions), req, func(echo.Context) error {
				t.Fatal("handler must not run")
				return nil
			})
			assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		})
	}
}

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	if idToken != "good" {
		return nil, errors.New("bad token")
	}
	return &firebaseauth.Token{UID: "uid-1"}, nil
}

func TestCurrentUserIDOutsideSession(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, CurrentUserID(c))
}

func TestFirebaseIDToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	_, err := run(t, FirebaseIDToken(fakeVerifier{}), req, func(c echo.Context) error {
		require.NotNil(t, FirebaseToken(c))
		assert.Equal(t, "uid-1", FirebaseToken(c).UID)
		return nil
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	_, err = run(t, FirebaseIDToken(fakeVerifier{}), req, func(c echo.Context) error {
		assert.Nil(t, FirebaseToken(c))
		return nil
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
	_, err = run(t, FirebaseIDToken(fakeVerifier{}), req, func(echo.Context) error { return nil })
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(userID string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	assert.NoError(t, call("a"))
	assert.NoError(t, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, statusOf(t, call("a")))
	assert.NoError(t, call("b"), "buckets are per user")

	assert.Equal(t, 2, rl.size())
	rl.Cleanup(-time.Second)
	assert.Zero(t, rl.size())
}
