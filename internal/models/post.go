package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a feed entry. LikesCount and CommentsCount are denormalized and
// only ever changed in the same transaction as the like/comment rows.
type Post struct {
	ID            string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID        string    `json:"userId" gorm:"type:varchar(191);not null;index"`
	User          *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Content       *string   `json:"content" gorm:"type:text"`
	ImageURL      *string   `json:"imageUrl"`
	VideoURL      *string   `json:"videoUrl"`
	VideoDuration *int      `json:"videoDuration"`
	LikesCount    int       `json:"likesCount" gorm:"not null;default:0"`
	CommentsCount int       `json:"commentsCount" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`

	IsLiked bool `json:"isLiked" gorm:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostLike is unique per (post, user) so a like can never be counted twice.
type PostLike struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	PostID    string    `json:"postId" gorm:"type:varchar(36);not null;uniqueIndex:idx_post_like_user"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	UserID    string    `json:"userId" gorm:"type:varchar(191);not null;uniqueIndex:idx_post_like_user;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type PostComment struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	PostID    string    `json:"postId" gorm:"type:varchar(36);not null;index"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	UserID    string    `json:"userId" gorm:"type:varchar(191);not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *PostComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content       *string `json:"content,omitempty" validate:"omitempty,max=2000"`
	ImageURL      *string `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	VideoURL      *string `json:"videoUrl,omitempty" validate:"omitempty,max=2048"`
	VideoDuration *int    `json:"videoDuration,omitempty" validate:"omitempty,min=0"`
}

// HasBody reports whether at least one of content, image or video is present.
func (r CreatePostRequest) HasBody() bool {
	return nonEmpty(r.Content) || nonEmpty(r.ImageURL) || nonEmpty(r.VideoURL)
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
