package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/gooners/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPostLimit is the feed size when the caller does not pass one.
const DefaultPostLimit = 20

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPosts(ctx context.Context, viewerID string, limit int) ([]models.Post, error)
	GetPostsByUser(ctx context.Context, userID, viewerID string) ([]models.Post, error)
	DeletePost(ctx context.Context, postID, ownerID string) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost inserts the post and loads its author
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return db.Preload("User").First(post, "id = ?", post.ID).Error
}

// GetPostByID retrieves a post by ID
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("User").First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPosts returns the newest posts with their authors. IsLiked is set for viewerID.
func (r *PostgresPostRepository) GetPosts(ctx context.Context, viewerID string, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = DefaultPostLimit
	}
	db := r.db.WithContext(ctx)

	var posts []models.Post
	err := db.Joins("User").
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := markLiked(db, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostsByUser returns every post by userID, newest first
func (r *PostgresPostRepository) GetPostsByUser(ctx context.Context, userID, viewerID string) ([]models.Post, error) {
	db := r.db.WithContext(ctx)

	var posts []models.Post
	err := db.Joins("User").
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := markLiked(db, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost removes a post owned by ownerID. Likes, comments and
// notifications referencing it go with it.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, postID, ownerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Select("id").Where("id = ? AND user_id = ?", postID, ownerID).Take(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		if err != nil {
			return err
		}

		for _, dependent := range []interface{}{&models.PostLike{}, &models.PostComment{}, &models.Notification{}} {
			if err := tx.Where("post_id = ?", postID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Post{}, "id = ?", postID).Error
	})
}

func markLiked(db *gorm.DB, viewerID string, posts []models.Post) error {
	if viewerID == "" || len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var liked []string
	err := db.Model(&models.PostLike{}).
		Where("user_id = ? AND post_id IN ?", viewerID, ids).
		Pluck("post_id", &liked).Error
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(liked))
	for _, id := range liked {
		set[id] = struct{}{}
	}
	for i := range posts {
		_, posts[i].IsLiked = set[posts[i].ID]
	}
	return nil
}

func lockPost(tx *gorm.DB, postID string) (*models.Post, error) {
	var post models.Post
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}
