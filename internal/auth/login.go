package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/repositories"
)

// UserStore is the part of the user repository sign-in needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) (*models.User, error)
	EnsureUniqueUsername(ctx context.Context, desired, userID string) (string, error)
}

// ResolveUser creates or refreshes the local user for identity. New users
// get a unique username derived from their email. An existing user keeps
// their username and profile image.
func ResolveUser(ctx context.Context, users UserStore, identity *models.Identity) (*models.User, error) {
	user := &models.User{
		ID:        identity.ID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}
	if identity.Email != "" {
		email := strings.ToLower(identity.Email)
		user.Email = &email
	}
	if identity.ProfileImageURL != "" {
		picture := identity.ProfileImageURL
		user.ProfileImageURL = &picture
	}

	existing, err := users.GetUserByID(ctx, identity.ID)
	switch {
	case err == nil:
		user.Username = existing.Username
		user.CreatedAt = existing.CreatedAt
		if existing.ProfileImageURL != nil {
			user.ProfileImageURL = existing.ProfileImageURL
		}
	case errors.Is(err, repositories.ErrUserNotFound):
		username, err := users.EnsureUniqueUsername(ctx, desiredUsername(identity), identity.ID)
		if err != nil {
			return nil, err
		}
		user.Username = username
	default:
		return nil, err
	}

	return users.UpsertUser(ctx, user)
}

func desiredUsername(identity *models.Identity) string {
	if prefix, _, ok := strings.Cut(identity.Email, "@"); ok && prefix != "" {
		return prefix
	}
	if identity.DisplayName != "" {
		return identity.DisplayName
	}
	if identity.FirstName != "" {
		return identity.FirstName
	}
	return "user"
}
