package repositories

import (
	"context"

	"github.com/anonto42/gooners/backend/internal/models"
	"gorm.io/gorm"
)

// DefaultGlobalMessageLimit is the page size of GetGlobalMessages.
const DefaultGlobalMessageLimit = 100

// GlobalMessageRepository defines the interface for the shared chat room
type GlobalMessageRepository interface {
	SendGlobalMessage(ctx context.Context, message *models.GlobalMessage) error
	GetGlobalMessages(ctx context.Context, limit int) ([]models.GlobalMessage, error)
}

// PostgresGlobalMessageRepository implements GlobalMessageRepository for PostgreSQL
type PostgresGlobalMessageRepository struct {
	db *gorm.DB
}

// NewPostgresGlobalMessageRepository creates a new PostgresGlobalMessageRepository
func NewPostgresGlobalMessageRepository(db *gorm.DB) *PostgresGlobalMessageRepository {
	return &PostgresGlobalMessageRepository{db: db}
}

func (r *PostgresGlobalMessageRepository) SendGlobalMessage(ctx context.Context, message *models.GlobalMessage) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(message).Error; err != nil {
		return err
	}
	return db.Preload("Sender").First(message, "id = ?", message.ID).Error
}

// GetGlobalMessages returns at most limit of the newest messages, oldest first
func (r *PostgresGlobalMessageRepository) GetGlobalMessages(ctx context.Context, limit int) ([]models.GlobalMessage, error) {
	if limit <= 0 {
		limit = DefaultGlobalMessageLimit
	}
	var messages []models.GlobalMessage
	err := r.db.WithContext(ctx).
		Joins("Sender").
		Order("global_messages.created_at DESC, global_messages.id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	reverse(messages)
	return messages, nil
}
