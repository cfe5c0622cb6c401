package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
	NotificationFollow   NotificationType = "follow"
	NotificationUnfollow NotificationType = "unfollow"
)

// Notification is addressed to UserID; FromUserID and PostID are optional.
type Notification struct {
	ID         string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID     string           `json:"userId" gorm:"type:varchar(191);not null;index:idx_notification_recipient"`
	Recipient  *User            `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	FromUserID *string          `json:"fromUserId" gorm:"type:varchar(191)"`
	FromUser   *User            `json:"fromUser,omitempty" gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE"`
	Type       NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	PostID     *string          `json:"postId" gorm:"type:varchar(36)"`
	Post       *Post            `json:"post,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Message    string           `json:"message" gorm:"type:text;not null"`
	IsRead     bool             `json:"isRead" gorm:"not null;default:false;index:idx_notification_recipient"`
	CreatedAt  time.Time        `json:"createdAt" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
