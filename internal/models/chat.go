package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
)

// ChatRoom is either a private room (two members, no name, PrivateKey set)
// or a named group room.
type ChatRoom struct {
	ID         string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name       *string          `json:"name"`
	IsGroup    bool             `json:"isGroup" gorm:"not null;default:false"`
	CreatedBy  string           `json:"createdBy" gorm:"type:varchar(191);index"`
	Creator    *User            `json:"-" gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE"`
	PrivateKey *string          `json:"-" gorm:"type:varchar(400);uniqueIndex"`
	Members    []ChatRoomMember `json:"members,omitempty" gorm:"foreignKey:ChatRoomID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type ChatRoomMember struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ChatRoomID string    `json:"chatRoomId" gorm:"type:varchar(36);not null;uniqueIndex:idx_chat_room_member"`
	UserID     string    `json:"userId" gorm:"type:varchar(191);not null;uniqueIndex:idx_chat_room_member;index"`
	User       *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	JoinedAt   time.Time `json:"joinedAt" gorm:"autoCreateTime"`
}

func (m *ChatRoomMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type Message struct {
	ID          string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	ChatRoomID  string      `json:"chatRoomId" gorm:"type:varchar(36);not null;index:idx_message_room_created"`
	ChatRoom    *ChatRoom   `json:"-" gorm:"foreignKey:ChatRoomID;constraint:OnDelete:CASCADE"`
	SenderID    string      `json:"senderId" gorm:"type:varchar(191);not null;index"`
	Sender      *User       `json:"sender,omitempty" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Content     string      `json:"content" gorm:"type:text;not null"`
	MessageType MessageType `json:"messageType" gorm:"type:varchar(10);not null;default:'text'"`
	ImageURL    *string     `json:"imageUrl"`
	VideoURL    *string     `json:"videoUrl"`
	CreatedAt   time.Time   `json:"createdAt" gorm:"index:idx_message_room_created"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.MessageType == "" {
		m.MessageType = MessageText
	}
	return nil
}

// GlobalMessage belongs to the single shared room; there is no membership.
type GlobalMessage struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	SenderID  string    `json:"senderId" gorm:"type:varchar(191);not null;index"`
	Sender    *User     `json:"sender,omitempty" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (m *GlobalMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ChatRoomSummary is a room as listed for one member.
type ChatRoomSummary struct {
	ChatRoom
	OtherUser   *User    `json:"otherUser,omitempty"`
	LastMessage *Message `json:"lastMessage,omitempty"`
}

// PrivateChatRequest is the body of POST /api/chats/private
type PrivateChatRequest struct {
	PartnerID string `json:"partnerId" validate:"required"`
}

// GroupChatRequest is the body of POST /api/chats/group
type GroupChatRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=100"`
	MemberIDs []string `json:"memberIds" validate:"required,min=1,max=50,dive,required"`
}

// SendMessageRequest is the body of POST /api/chats/:chatId/messages
type SendMessageRequest struct {
	Content     string      `json:"content" validate:"required,max=4000"`
	MessageType MessageType `json:"messageType,omitempty" validate:"omitempty,oneof=text image video"`
	ImageURL    *string     `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	VideoURL    *string     `json:"videoUrl,omitempty" validate:"omitempty,max=2048"`
}

// SendGlobalMessageRequest is the body of POST /api/global/messages
type SendGlobalMessageRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}
