package handlers

import (
	"net/http"

	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles HTTP requests related to stories
type StoryHandler struct {
	storyRepository repositories.StoryRepository
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyRepo repositories.StoryRepository) *StoryHandler {
	return &StoryHandler{storyRepository: storyRepo}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.GET("/stories", h.GetStories)
}

// CreateStory publishes a story that expires after 24 hours
func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.HasBody() {
		return echo.NewHTTPError(http.StatusBadRequest, "A story needs content, an image or a video")
	}

	story := &models.Story{
		UserID:   middleware.CurrentUserID(c),
		Content:  req.Content,
		ImageURL: req.ImageURL,
		VideoURL: req.VideoURL,
	}
	if err := h.storyRepository.CreateStory(c.Request().Context(), story); err != nil {
		return internalError(c, "Failed to create story", err)
	}
	return c.JSON(http.StatusOK, story)
}

// GetStories returns the unexpired stories, newest first
func (h *StoryHandler) GetStories(c echo.Context) error {
	stories, err := h.storyRepository.GetActiveStories(c.Request().Context())
	if err != nil {
		return internalError(c, "Failed to fetch stories", err)
	}
	return c.JSON(http.StatusOK, stories)
}
