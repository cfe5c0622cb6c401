package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/gooners/backend/internal/auth"
	"github.com/anonto42/gooners/backend/internal/handlers"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/anonto42/gooners/backend/internal/router"
	"github.com/anonto42/gooners/backend/internal/testutil"
	"github.com/anonto42/gooners/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiServer struct {
	t        *testing.T
	e        *echo.Echo
	db       *gorm.DB
	hub      *realtime.Hub
	sessions *auth.SessionManager
}

type fakeProvider struct {
	identity *models.Identity
	err      error
}

func (p fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p fakeProvider) Exchange(context.Context, string) (*models.Identity, error) {
	return p.identity, p.err
}

func newAPIServer(t *testing.T) *apiServer {
	return newAPIServerWithProvider(t, nil)
}

func newAPIServerWithProvider(t *testing.T, provider auth.IdentityProvider) *apiServer {
	db := testutil.NewDB(t)
	sessions := auth.NewSessionManager("test-secret", time.Hour)
	hub := realtime.NewHub(8)
	e := router.New(router.Dependencies{
		DB:          db,
		Sessions:    sessions,
		Provider:    provider,
		Hub:         hub,
		CORSOrigins: []string{"http://localhost:5173"},
	})
	return &apiServer{t: t, e: e, db: db, hub: hub, sessions: sessions}
}

func (s *apiServer) token(user *models.User) string {
	token, _, err := s.sessions.Issue(user)
	require.NoError(s.t, err)
	return token
}

func (s *apiServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	s := newAPIServer(t)

	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func callback(s *apiServer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/callback?state=st&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "gooners_oauth_state", Value: "st"})
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestCallbackStartsSession(t *testing.T) {
	s := newAPIServerWithProvider(t, fakeProvider{identity: &models.Identity{
		ID:        "google:42",
		Email:     "dana@example.com",
		FirstName: "Dana",
	}})

	rec := callback(s)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	var session *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)

	rec = s.do(http.MethodGet, "/api/auth/user", session.Value, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dana", decode[models.User](t, rec).Username)
}

func TestCallbackFailureRedirectsToLogin(t *testing.T) {
	s := newAPIServerWithProvider(t, fakeProvider{err: errors.New("exchange failed")})

	rec := callback(s)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/api/login", rec.Header().Get(echo.HeaderLocation))
	for _, cookie := range rec.Result().Cookies() {
		assert.NotEqual(t, auth.SessionCookieName, cookie.Name)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/callback?state=other&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "gooners_oauth_state", Value: "st"})
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, "/api/login", rec.Header().Get(echo.HeaderLocation))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newAPIServer(t)

	for _, path := range []string{"/api/auth/user", "/api/posts", "/api/notifications", "/api/chats"} {
		rec := s.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "Unauthorized", decode[map[string]string](t, rec)["message"])
	}

	rec := s.do(http.MethodGet, "/api/auth/user", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLikeNotificationFlow(t *testing.T) {
	s := newAPIServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	aliceToken, bobToken := s.token(alice), s.token(bob)

	sub := s.hub.Subscribe(realtime.UserTopic(alice.ID))
	defer s.hub.Unsubscribe(sub)

	rec := s.do(http.MethodPost, "/api/posts", aliceToken, `{"content":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post := decode[models.Post](t, rec)
	assert.Equal(t, alice.ID, post.UserID)

	rec = s.do(http.MethodPost, "/api/posts/"+post.ID+"/like", bobToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]bool](t, rec)["success"])

	rec = s.do(http.MethodPost, "/api/posts/"+post.ID+"/like", bobToken, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/posts/"+post.ID, bobToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Post](t, rec).IsLiked)
	rec = s.do(http.MethodGet, "/api/posts/"+post.ID, aliceToken, "")
	assert.False(t, decode[models.Post](t, rec).IsLiked)

	select {
	case event := <-sub.C:
		assert.Equal(t, realtime.EventNotification, event.Type)
	case <-time.After(time.Second):
		t.Fatal("like notification was not pushed")
	}

	rec = s.do(http.MethodGet, "/api/posts", bobToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[[]models.Post](t, rec)
	require.Len(t, feed, 1)
	assert.Equal(t, 1, feed[0].LikesCount)
	assert.True(t, feed[0].IsLiked)

	rec = s.do(http.MethodGet, "/api/notifications", aliceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	notifications := decode[[]models.Notification](t, rec)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationLike, notifications[0].Type)
	assert.False(t, notifications[0].IsRead)

	rec = s.do(http.MethodGet, "/api/notifications/unread-count", aliceToken, "")
	assert.EqualValues(t, 1, decode[map[string]int](t, rec)["count"])

	// Only the recipient can mark a notification as read.
	rec = s.do(http.MethodPatch, "/api/notifications/"+notifications[0].ID+"/read", bobToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPatch, "/api/notifications/"+notifications[0].ID+"/read", aliceToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/notifications/unread-count", aliceToken, "")
	assert.EqualValues(t, 0, decode[map[string]int](t, rec)["count"])

	rec = s.do(http.MethodDelete, "/api/posts/"+post.ID+"/like", bobToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/posts/"+post.ID, bobToken, "")
	unliked := decode[models.Post](t, rec)
	assert.Equal(t, 0, unliked.LikesCount)
	assert.False(t, unliked.IsLiked)
}

func TestCreatePostValidation(t *testing.T) {
	s := newAPIServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	token := s.token(alice)

	rec := s.do(http.MethodPost, "/api/posts", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/posts", token, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request payload", decode[map[string]string](t, rec)["message"])

	rec = s.do(http.MethodPost, "/api/posts/missing/like", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfileUsernameRules(t *testing.T) {
	s := newAPIServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	testutil.CreateUser(t, s.db, "bob")
	token := s.token(alice)

	rec := s.do(http.MethodPatch, "/api/profile", token, `{"username":"x!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, validators.InvalidUsernameMessage, decode[map[string]string](t, rec)["message"])

	rec = s.do(http.MethodPatch, "/api/profile", token, `{"username":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, "/api/profile", token, `{"username":"bob"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPatch, "/api/profile", token, `{"username":"  Alice_One "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alice_one", decode[models.User](t, rec).Username)

	rec = s.do(http.MethodPatch, "/api/profile", token, `{"username":"alice_two"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPatch, "/api/profile", token, `{"username":"alice_three"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["nextAllowedDate"])

	// Bio-only updates are not subject to the quota.
	rec = s.do(http.MethodPatch, "/api/profile", token, `{"bio":"hi"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/profile/check-username/alice_three", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	check := decode[models.UsernameCheckResponse](t, rec)
	assert.True(t, check.Available)
	assert.False(t, check.CanChange)
}

func TestChatMembership(t *testing.T) {
	s := newAPIServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	carol := testutil.CreateUser(t, s.db, "carol")
	aliceToken, carolToken := s.token(alice), s.token(carol)

	rec := s.do(http.MethodPost, "/api/chats/private", aliceToken, `{"partnerId":"`+alice.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/chats/private", aliceToken, `{"partnerId":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/chats/private", aliceToken, `{"partnerId":"`+bob.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	room := decode[models.ChatRoom](t, rec)

	sub := s.hub.Subscribe(realtime.UserTopic(bob.ID))
	defer s.hub.Unsubscribe(sub)

	rec = s.do(http.MethodPost, "/api/chats/"+room.ID+"/messages", aliceToken, `{"content":"hey bob"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	select {
	case event := <-sub.C:
		assert.Equal(t, realtime.EventChatMessage, event.Type)
	case <-time.After(time.Second):
		t.Fatal("chat message was not pushed")
	}

	rec = s.do(http.MethodGet, "/api/chats/"+room.ID+"/messages", carolToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/chats/"+room.ID+"/messages", carolToken, `{"content":"let me in"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/chats/missing/messages", aliceToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/chats/"+room.ID+"/messages", aliceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decode[[]models.Message](t, rec)
	require.Len(t, messages, 1)
	assert.Equal(t, "hey bob", messages[0].Content)
}

func TestGlobalChatBroadcast(t *testing.T) {
	s := newAPIServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	token := s.token(alice)

	sub := s.hub.Subscribe(realtime.TopicGlobal)
	defer s.hub.Unsubscribe(sub)

	rec := s.do(http.MethodPost, "/api/global/messages", token, `{"content":"hi all"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	select {
	case event := <-sub.C:
		assert.Equal(t, realtime.EventGlobalMessage, event.Type)
	case <-time.After(time.Second):
		t.Fatal("global message was not pushed")
	}

	rec = s.do(http.MethodGet, "/api/global/messages", token, "")
	messages := decode[[]models.GlobalMessage](t, rec)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi all", messages[0].Content)
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"http error", echo.NewHTTPError(http.StatusConflict, "Already liked"), http.StatusConflict, "Already liked"},
		{"non-string message", echo.NewHTTPError(http.StatusNotFound, errors.New("x")), http.StatusNotFound, "Not Found"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handlers.HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decode[map[string]string](t, rec)["message"])
		})
	}
}
