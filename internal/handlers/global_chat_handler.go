package handlers

import (
	"net/http"

	"github.com/anonto42/gooners/backend/internal/metrics"
	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// GlobalChatHandler serves the room every user shares
type GlobalChatHandler struct {
	repo repositories.GlobalMessageRepository
	hub  *realtime.Hub
}

func NewGlobalChatHandler(repo repositories.GlobalMessageRepository, hub *realtime.Hub) *GlobalChatHandler {
	return &GlobalChatHandler{repo: repo, hub: hub}
}

func (h *GlobalChatHandler) RegisterGlobalChatRoutes(g *echo.Group) {
	g.GET("/global/messages", h.GetMessages)
	g.POST("/global/messages", h.SendMessage)
}

func (h *GlobalChatHandler) GetMessages(c echo.Context) error {
	messages, err := h.repo.GetGlobalMessages(c.Request().Context(), parseLimit(c))
	if err != nil {
		return internalError(c, "Failed to fetch global messages", err)
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *GlobalChatHandler) SendMessage(c echo.Context) error {
	var req models.SendGlobalMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	message := &models.GlobalMessage{SenderID: middleware.CurrentUserID(c), Content: req.Content}
	if err := h.repo.SendGlobalMessage(c.Request().Context(), message); err != nil {
		return internalError(c, "Failed to send global message", err)
	}
	metrics.MessagesSent.WithLabelValues("global").Inc()
	if h.hub != nil {
		h.hub.PublishJSON(realtime.EventGlobalMessage, realtime.TopicGlobal, message)
	}

	return c.JSON(http.StatusOK, message)
}
