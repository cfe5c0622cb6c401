package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/gooners/backend/internal/metrics"
	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/anonto42/gooners/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// ChatHandler handles private and group chat rooms
type ChatHandler struct {
	chatRepository repositories.ChatRepository
	hub            *realtime.Hub
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatRepo repositories.ChatRepository, hub *realtime.Hub) *ChatHandler {
	return &ChatHandler{chatRepository: chatRepo, hub: hub}
}

// RegisterChatRoutes registers chat-related routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chats", h.GetChatRooms)
	g.POST("/chats/private", h.GetOrCreatePrivateChat)
	g.POST("/chats/group", h.CreateGroupChat)
	g.GET("/chats/:chatId/messages", h.GetMessages)
	g.POST("/chats/:chatId/messages", h.SendMessage)
}

// GetChatRooms lists the caller's rooms
func (h *ChatHandler) GetChatRooms(c echo.Context) error {
	rooms, err := h.chatRepository.GetChatRooms(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return internalError(c, "Failed to fetch chats", err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// GetOrCreatePrivateChat returns the caller's private room with partnerId
func (h *ChatHandler) GetOrCreatePrivateChat(c echo.Context) error {
	var req models.PrivateChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	room, err := h.chatRepository.GetOrCreatePrivateChat(c.Request().Context(), middleware.CurrentUserID(c), req.PartnerID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSelfRelation):
			return echo.NewHTTPError(http.StatusBadRequest, "You cannot start a chat with yourself")
		case errors.Is(err, repositories.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, "Failed to create private chat", err)
	}
	return c.JSON(http.StatusOK, room)
}

// CreateGroupChat creates a named room with the caller and the given members
func (h *ChatHandler) CreateGroupChat(c echo.Context) error {
	var req models.GroupChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	room, err := h.chatRepository.CreateGroupChat(c.Request().Context(), middleware.CurrentUserID(c), req.Name, req.MemberIDs)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, "Failed to create group chat", err)
	}
	return c.JSON(http.StatusOK, room)
}

// GetMessages returns the latest messages of a room in chronological order
func (h *ChatHandler) GetMessages(c echo.Context) error {
	messages, err := h.chatRepository.GetMessages(c.Request().Context(), c.Param("chatId"), middleware.CurrentUserID(c), parseLimit(c))
	if err != nil {
		if mapped := chatError(err); mapped != nil {
			return mapped
		}
		return internalError(c, "Failed to fetch messages", err)
	}
	return c.JSON(http.StatusOK, messages)
}

// SendMessage posts a message to a room and pushes it to every member
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	message := &models.Message{
		ChatRoomID:  c.Param("chatId"),
		SenderID:    middleware.CurrentUserID(c),
		Content:     req.Content,
		MessageType: req.MessageType,
		ImageURL:    req.ImageURL,
		VideoURL:    req.VideoURL,
	}
	if err := h.chatRepository.SendMessage(ctx, message); err != nil {
		if mapped := chatError(err); mapped != nil {
			return mapped
		}
		return internalError(c, "Failed to send message", err)
	}
	metrics.MessagesSent.WithLabelValues("chat").Inc()

	if h.hub != nil {
		members, err := h.chatRepository.GetMemberIDs(ctx, message.ChatRoomID)
		if err != nil {
			log := logger.WithUserID(message.SenderID)
			log.Warn().Err(err).Str("chat_id", message.ChatRoomID).Msg("push chat message")
		}
		for _, memberID := range members {
			h.hub.PublishJSON(realtime.EventChatMessage, realtime.UserTopic(memberID), message)
		}
	}

	return c.JSON(http.StatusOK, message)
}

func chatError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrChatRoomNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Chat not found")
	case errors.Is(err, repositories.ErrNotChatMember):
		return echo.NewHTTPError(http.StatusForbidden, "You are not a member of this chat")
	}
	return nil
}
