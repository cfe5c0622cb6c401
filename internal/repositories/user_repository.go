package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/gooners/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// MaxUsernameChanges is how many username changes fit in one window.
	MaxUsernameChanges = 2
	// UsernameChangeWindow is measured from the most recent change.
	UsernameChangeWindow = 24 * 24 * time.Hour

	maxUsernameLength = 20
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9_]+`)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) (*models.User, error)
	CheckUsernameAvailability(ctx context.Context, username, excludingUserID string) (bool, error)
	EnsureUniqueUsername(ctx context.Context, desired, userID string) (string, error)
	CanChangeUsername(ctx context.Context, userID string) (models.UsernameEligibility, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db, now: utcNow}
}

// SetClock overrides the time source used for the username quota.
func (r *PostgresUserRepository) SetClock(now func() time.Time) {
	r.now = now
}

// GetUserByID retrieves a user by ID
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpsertUser inserts a user or refreshes the identity fields of an existing
// one. The username of an existing user is never overwritten.
func (r *PostgresUserRepository) UpsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now()
	user.UpdatedAt = now
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "profile_image_url", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return r.GetUserByID(ctx, user.ID)
}

// CheckUsernameAvailability reports whether username is free or already owned by excludingUserID
func (r *PostgresUserRepository) CheckUsernameAvailability(ctx context.Context, username, excludingUserID string) (bool, error) {
	return checkUsernameAvailability(r.db.WithContext(ctx), username, excludingUserID)
}

func checkUsernameAvailability(db *gorm.DB, username, excludingUserID string) (bool, error) {
	var owner models.User
	err := db.Select("id").Where("username = ?", username).Take(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return excludingUserID != "" && owner.ID == excludingUserID, nil
}

// EnsureUniqueUsername slugs desired and appends a numeric suffix until the result is free.
func (r *PostgresUserRepository) EnsureUniqueUsername(ctx context.Context, desired, userID string) (string, error) {
	base := UsernameSlug(desired)
	candidate := base
	for suffix := 1; ; suffix++ {
		ok, err := r.CheckUsernameAvailability(ctx, candidate, userID)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
		tail := strconv.Itoa(suffix)
		head := base
		if len(head)+len(tail) > maxUsernameLength {
			head = head[:maxUsernameLength-len(tail)]
		}
		candidate = head + tail
	}
}

// UsernameSlug turns an arbitrary string into a valid username.
func UsernameSlug(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > maxUsernameLength {
		slug = strings.TrimRight(slug[:maxUsernameLength], "_")
	}
	if len(slug) < 3 {
		slug = "user_" + slug
	}
	return slug
}

// CanChangeUsername applies the rolling quota. When the window has elapsed
// for a user at the limit, the counter is reset before answering.
func (r *PostgresUserRepository) CanChangeUsername(ctx context.Context, userID string) (models.UsernameEligibility, error) {
	var result models.UsernameEligibility
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		result, err = r.refreshEligibility(tx, user)
		return err
	})
	return result, err
}

// UpdateProfile applies a partial update. A username change is checked for
// availability first, then for the change quota.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	var updated *models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		if update.Username != nil && *update.Username != user.Username {
			available, err := checkUsernameAvailability(tx, *update.Username, userID)
			if err != nil {
				return err
			}
			if !available {
				return ErrUsernameTaken
			}

			eligibility, err := r.refreshEligibility(tx, user)
			if err != nil {
				return err
			}
			if !eligibility.CanChange {
				return &UsernameCooldownError{Eligibility: eligibility}
			}

			now := r.now()
			user.Username = *update.Username
			user.UsernameChangedAt = &now
			user.UsernameChangeCount++
		}
		if update.Bio != nil {
			user.Bio = update.Bio
		}
		if update.ProfileImageURL != nil {
			user.ProfileImageURL = update.ProfileImageURL
		}
		user.UpdatedAt = r.now()

		if err := tx.Save(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresUserRepository) refreshEligibility(tx *gorm.DB, user *models.User) (models.UsernameEligibility, error) {
	eligibility, reset := UsernameChangeEligibility(user, r.now())
	if reset {
		err := tx.Model(user).Updates(map[string]interface{}{
			"username_change_count": 0,
			"username_changed_at":   nil,
		}).Error
		if err != nil {
			return eligibility, err
		}
		user.UsernameChangeCount = 0
		user.UsernameChangedAt = nil
	}
	return eligibility, nil
}

// UsernameChangeEligibility evaluates the quota at now. The second result
// reports whether the stored counter should be reset because the window elapsed.
func UsernameChangeEligibility(user *models.User, now time.Time) (models.UsernameEligibility, bool) {
	if user.UsernameChangeCount < MaxUsernameChanges || user.UsernameChangedAt == nil {
		return models.UsernameEligibility{CanChange: true}, false
	}
	next := user.UsernameChangedAt.Add(UsernameChangeWindow)
	if now.Before(next) {
		next = next.UTC()
		return models.UsernameEligibility{
			CanChange:       false,
			Reason:          "You can only change your username twice in 24 days",
			NextAllowedDate: &next,
		}, false
	}
	return models.UsernameEligibility{CanChange: true}, true
}

func lockUser(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
