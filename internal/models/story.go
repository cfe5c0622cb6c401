package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoryLifetime is how long a story stays visible after creation.
const StoryLifetime = 24 * time.Hour

// Story is never deleted on expiry; reads filter on ExpiresAt instead.
type Story struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string    `json:"userId" gorm:"type:varchar(191);not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Content   *string   `json:"content" gorm:"type:text"`
	ImageURL  *string   `json:"imageUrl"`
	VideoURL  *string   `json:"videoUrl"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	Content  *string `json:"content,omitempty" validate:"omitempty,max=500"`
	ImageURL *string `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	VideoURL *string `json:"videoUrl,omitempty" validate:"omitempty,max=2048"`
}

func (r CreateStoryRequest) HasBody() bool {
	return nonEmpty(r.Content) || nonEmpty(r.ImageURL) || nonEmpty(r.VideoURL)
}
