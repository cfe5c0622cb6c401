// Package auth issues session tokens and resolves identities from the
// external sign-in providers into local users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "gooners_session"

const issuer = "gooners"

var ErrInvalidSession = errors.New("invalid session token")

// SessionManager signs and verifies HS256 session tokens
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long issued sessions stay valid.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session token for user. The subject is the user id.
func (m *SessionManager) Issue(user *models.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := &models.SessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies the signature and expiry of a session token
func (m *SessionManager) Parse(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Subject == "" || !claims.VerifyIssuer(issuer, true) {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

type contextKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, or "" if none.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(contextKey{}).(string)
	return userID
}
