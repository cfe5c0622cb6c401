package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/gooners/backend/internal/metrics"
	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	hub            *realtime.Hub
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, hub *realtime.Hub) *LikeHandler {
	return &LikeHandler{likeRepository: likeRepo, hub: hub}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:postId/like", h.LikePost)
	g.DELETE("/posts/:postId/like", h.UnlikePost)
}

// LikePost likes a post on behalf of the caller
func (h *LikeHandler) LikePost(c echo.Context) error {
	notification, err := h.likeRepository.LikePost(c.Request().Context(), c.Param("postId"), middleware.CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrPostNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		case errors.Is(err, repositories.ErrAlreadyLiked):
			return echo.NewHTTPError(http.StatusConflict, "Post already liked")
		}
		return internalError(c, "Failed to like post", err)
	}
	metrics.LikesTotal.WithLabelValues("like").Inc()
	publishNotification(h.hub, notification)

	return c.JSON(http.StatusOK, success)
}

// UnlikePost removes the caller's like; unliking twice is not an error
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	if err := h.likeRepository.UnlikePost(c.Request().Context(), c.Param("postId"), middleware.CurrentUserID(c)); err != nil {
		return internalError(c, "Failed to unlike post", err)
	}
	metrics.LikesTotal.WithLabelValues("unlike").Inc()

	return c.JSON(http.StatusOK, success)
}
