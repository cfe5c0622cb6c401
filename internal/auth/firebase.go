package auth

import (
	"context"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/gooners/backend/internal/models"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// IdentityFromFirebase maps verified token claims to an identity
func IdentityFromFirebase(token *firebaseauth.Token) *models.Identity {
	claim := func(name string) string {
		v, _ := token.Claims[name].(string)
		return v
	}

	identity := &models.Identity{
		ID:              "firebase:" + token.UID,
		Email:           claim("email"),
		DisplayName:     claim("name"),
		ProfileImageURL: claim("picture"),
	}
	if first, last, ok := strings.Cut(identity.DisplayName, " "); ok {
		identity.FirstName, identity.LastName = first, last
	} else {
		identity.FirstName = identity.DisplayName
	}
	return identity
}
