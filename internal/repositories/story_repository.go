package repositories

import (
	"context"
	"time"

	"github.com/anonto42/gooners/backend/internal/models"
	"gorm.io/gorm"
)

// StoryRepository defines the interface for story data operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetActiveStories(ctx context.Context) ([]models.Story, error)
}

// PostgresStoryRepository implements StoryRepository for PostgreSQL
type PostgresStoryRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPostgresStoryRepository creates a new PostgresStoryRepository
func NewPostgresStoryRepository(db *gorm.DB) *PostgresStoryRepository {
	return &PostgresStoryRepository{db: db, now: utcNow}
}

// SetClock overrides the time source used for expiry.
func (r *PostgresStoryRepository) SetClock(now func() time.Time) {
	r.now = now
}

// CreateStory stamps the story with its 24 hour expiry and inserts it
func (r *PostgresStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	now := r.now()
	story.CreatedAt = now
	story.ExpiresAt = now.Add(models.StoryLifetime)

	db := r.db.WithContext(ctx)
	if err := db.Create(story).Error; err != nil {
		return err
	}
	return db.Preload("User").First(story, "id = ?", story.ID).Error
}

// GetActiveStories returns unexpired stories with their authors, newest first.
// Expired rows are kept and simply filtered out here.
func (r *PostgresStoryRepository) GetActiveStories(ctx context.Context) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.WithContext(ctx).
		Joins("User").
		Where("stories.expires_at >= ?", r.now()).
		Order("stories.created_at DESC").
		Find(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}
