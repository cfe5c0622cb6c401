package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	hub               *realtime.Hub
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, hub *realtime.Hub) *CommentHandler {
	return &CommentHandler{commentRepository: commentRepo, hub: hub}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:postId/comments", h.CreateComment)
	g.GET("/posts/:postId/comments", h.GetComments)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment := &models.PostComment{
		PostID:  c.Param("postId"),
		UserID:  middleware.CurrentUserID(c),
		Content: req.Content,
	}
	notification, err := h.commentRepository.CreateComment(c.Request().Context(), comment)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(c, "Failed to create comment", err)
	}
	publishNotification(h.hub, notification)

	return c.JSON(http.StatusOK, comment)
}

// GetComments lists a post's comments in the order they were written
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return internalError(c, "Failed to fetch comments", err)
	}
	return c.JSON(http.StatusOK, comments)
}
