package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/anonto42/gooners/backend/internal/models"
	"gorm.io/gorm"
)

// DefaultMessageLimit is the page size of GetMessages.
const DefaultMessageLimit = 50

// ChatRepository defines the interface for chat rooms and their messages
type ChatRepository interface {
	GetOrCreatePrivateChat(ctx context.Context, userID, partnerID string) (*models.ChatRoom, error)
	CreateGroupChat(ctx context.Context, creatorID, name string, memberIDs []string) (*models.ChatRoom, error)
	GetChatRooms(ctx context.Context, userID string) ([]models.ChatRoomSummary, error)
	GetMemberIDs(ctx context.Context, chatRoomID string) ([]string, error)
	SendMessage(ctx context.Context, message *models.Message) error
	GetMessages(ctx context.Context, chatRoomID, userID string, limit int) ([]models.Message, error)
}

// PostgresChatRepository implements ChatRepository for PostgreSQL
type PostgresChatRepository struct {
	db *gorm.DB
}

// NewPostgresChatRepository creates a new PostgresChatRepository
func NewPostgresChatRepository(db *gorm.DB) *PostgresChatRepository {
	return &PostgresChatRepository{db: db}
}

// GetOrCreatePrivateChat returns the one private room shared by the two
// users, creating it on first use. The unique private key makes concurrent
// first calls converge on the same room.
func (r *PostgresChatRepository) GetOrCreatePrivateChat(ctx context.Context, userID, partnerID string) (*models.ChatRoom, error) {
	if userID == partnerID {
		return nil, ErrSelfRelation
	}
	db := r.db.WithContext(ctx)
	key := models.PairKey(userID, partnerID)

	room, err := findPrivateChat(db, key)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, ErrChatRoomNotFound) {
		return nil, err
	}

	if err := requireUsers(db, []string{partnerID}); err != nil {
		return nil, err
	}
	room = &models.ChatRoom{
		IsGroup:    false,
		CreatedBy:  userID,
		PrivateKey: &key,
		Members: []models.ChatRoomMember{
			{UserID: userID},
			{UserID: partnerID},
		},
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(room).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return findPrivateChat(db, key)
	}
	if err != nil {
		return nil, fmt.Errorf("create private chat: %w", err)
	}
	return findPrivateChat(db, key)
}

func findPrivateChat(db *gorm.DB, key string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := db.Preload("Members.User").Where("private_key = ?", key).Take(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateGroupChat creates a named room holding the creator and memberIDs
func (r *PostgresChatRepository) CreateGroupChat(ctx context.Context, creatorID, name string, memberIDs []string) (*models.ChatRoom, error) {
	db := r.db.WithContext(ctx)

	seen := map[string]struct{}{creatorID: {}}
	members := []models.ChatRoomMember{{UserID: creatorID}}
	var others []string
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		others = append(others, id)
		members = append(members, models.ChatRoomMember{UserID: id})
	}
	if err := requireUsers(db, others); err != nil {
		return nil, err
	}

	room := &models.ChatRoom{
		Name:      &name,
		IsGroup:   true,
		CreatedBy: creatorID,
		Members:   members,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(room).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create group chat: %w", err)
	}
	if err := db.Preload("Members.User").First(room, "id = ?", room.ID).Error; err != nil {
		return nil, err
	}
	return room, nil
}

// GetChatRooms lists the caller's rooms, most recently active first. Private
// rooms carry the other participant and every room its latest message.
func (r *PostgresChatRepository) GetChatRooms(ctx context.Context, userID string) ([]models.ChatRoomSummary, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&models.ChatRoomMember{}).Select("chat_room_id").Where("user_id = ?", userID)

	var rooms []models.ChatRoom
	if err := db.Preload("Members.User").Where("id IN (?)", memberOf).Find(&rooms).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.ChatRoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := models.ChatRoomSummary{ChatRoom: room}
		if !room.IsGroup {
			for _, m := range room.Members {
				if m.UserID != userID {
					summary.OtherUser = m.User
					break
				}
			}
		}

		var last []models.Message
		err := db.Where("chat_room_id = ?", room.ID).Order("created_at DESC, id DESC").Limit(1).Find(&last).Error
		if err != nil {
			return nil, err
		}
		if len(last) == 1 {
			summary.LastMessage = &last[0]
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return lastActivity(summaries[i]).After(lastActivity(summaries[j]))
	})
	return summaries, nil
}

// GetMemberIDs returns the user ids of every member of the room
func (r *PostgresChatRepository) GetMemberIDs(ctx context.Context, chatRoomID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.ChatRoomMember{}).
		Where("chat_room_id = ?", chatRoomID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// SendMessage stores a message from a member of the room and loads its sender
func (r *PostgresChatRepository) SendMessage(ctx context.Context, message *models.Message) error {
	db := r.db.WithContext(ctx)
	if err := requireMember(db, message.ChatRoomID, message.SenderID); err != nil {
		return err
	}
	if err := db.Create(message).Error; err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return db.Preload("Sender").First(message, "id = ?", message.ID).Error
}

// GetMessages returns at most limit of the newest messages, oldest first
func (r *PostgresChatRepository) GetMessages(ctx context.Context, chatRoomID, userID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	db := r.db.WithContext(ctx)
	if err := requireMember(db, chatRoomID, userID); err != nil {
		return nil, err
	}

	var messages []models.Message
	err := db.Joins("Sender").
		Where("messages.chat_room_id = ?", chatRoomID).
		Order("messages.created_at DESC, messages.id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	reverse(messages)
	return messages, nil
}

func requireMember(db *gorm.DB, chatRoomID, userID string) error {
	var room models.ChatRoom
	err := db.Select("id").Take(&room, "id = ?", chatRoomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrChatRoomNotFound
	}
	if err != nil {
		return err
	}

	var count int64
	err = db.Model(&models.ChatRoomMember{}).
		Where("chat_room_id = ? AND user_id = ?", chatRoomID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotChatMember
	}
	return nil
}

func requireUsers(db *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrUserNotFound
	}
	return nil
}

func lastActivity(s models.ChatRoomSummary) time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.CreatedAt
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
