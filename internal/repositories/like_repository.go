package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/gooners/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	LikePost(ctx context.Context, postID, userID string) (*models.Notification, error)
	UnlikePost(ctx context.Context, postID, userID string) error
	HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// LikePost records the like, bumps likes_count and notifies the post owner,
// all in one transaction. The returned notification is nil for self-likes.
func (r *PostgresLikeRepository) LikePost(ctx context.Context, postID, userID string) (*models.Notification, error) {
	var notification *models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, postID)
		if err != nil {
			return err
		}

		if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLiked
			}
			return err
		}
		err = tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
		if err != nil {
			return err
		}

		if post.UserID == userID {
			return nil
		}
		notification = &models.Notification{
			UserID:     post.UserID,
			FromUserID: &userID,
			Type:       models.NotificationLike,
			PostID:     &postID,
			Message:    "liked your post",
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// UnlikePost removes the like if present. The counter only moves when a row
// was actually deleted and never drops below zero.
func (r *PostgresLikeRepository) UnlikePost(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error
	})
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
