package repositories

import (
	"errors"

	"github.com/anonto42/gooners/backend/internal/models"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUsernameTaken          = errors.New("username is already taken")
	ErrUsernameChangeLimit    = errors.New("username change limit reached")
	ErrPostNotFound           = errors.New("post not found")
	ErrAlreadyLiked           = errors.New("post already liked by this user")
	ErrSelfRelation           = errors.New("cannot target yourself")
	ErrPartnerRequestExists   = errors.New("a partner relation already exists between these users")
	ErrPartnerRequestNotFound = errors.New("partner request not found")
	ErrChatRoomNotFound       = errors.New("chat room not found")
	ErrNotChatMember          = errors.New("user is not a member of this chat room")
	ErrNotificationNotFound   = errors.New("notification not found")
)

// UsernameCooldownError carries the next instant a username change is allowed.
type UsernameCooldownError struct {
	Eligibility models.UsernameEligibility
}

func (e *UsernameCooldownError) Error() string {
	return e.Eligibility.Reason
}

func (e *UsernameCooldownError) Unwrap() error {
	return ErrUsernameChangeLimit
}
