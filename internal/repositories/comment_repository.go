package repositories

import (
	"context"

	"github.com/anonto42/gooners/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.PostComment) (*models.Notification, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.PostComment, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment stores the comment together with the comments_count bump and
// the owner's notification. The comment is returned with its author loaded.
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.PostComment) (*models.Notification, error) {
	var notification *models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, comment.PostID)
		if err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		err = tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
		if err != nil {
			return err
		}
		if err := tx.Preload("User").First(comment, "id = ?", comment.ID).Error; err != nil {
			return err
		}

		if post.UserID == comment.UserID {
			return nil
		}
		fromUserID, postID := comment.UserID, comment.PostID
		notification = &models.Notification{
			UserID:     post.UserID,
			FromUserID: &fromUserID,
			Type:       models.NotificationComment,
			PostID:     &postID,
			Message:    "commented on your post",
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// GetCommentsByPostID returns the comments of a post in the order they were written
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.PostComment, error) {
	var comments []models.PostComment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
