package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/gooners/backend/internal/metrics"
	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	likeRepository repositories.LikeRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, likeRepo repositories.LikeRepository) *PostHandler {
	return &PostHandler{postRepository: postRepo, likeRepository: likeRepo}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/user/:userId", h.GetPostsByUser)
	g.GET("/posts/:postId", h.GetPost)
	g.DELETE("/posts/:postId", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.HasBody() {
		return echo.NewHTTPError(http.StatusBadRequest, "A post needs content, an image or a video")
	}

	post := &models.Post{
		UserID:        middleware.CurrentUserID(c),
		Content:       req.Content,
		ImageURL:      req.ImageURL,
		VideoURL:      req.VideoURL,
		VideoDuration: req.VideoDuration,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return internalError(c, "Failed to create post", err)
	}
	metrics.PostsCreated.Inc()

	return c.JSON(http.StatusOK, post)
}

// GetPosts returns the feed, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.postRepository.GetPosts(c.Request().Context(), middleware.CurrentUserID(c), parseLimit(c))
	if err != nil {
		return internalError(c, "Failed to fetch posts", err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPostsByUser returns one user's posts, newest first
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	posts, err := h.postRepository.GetPostsByUser(c.Request().Context(), c.Param("userId"), middleware.CurrentUserID(c))
	if err != nil {
		return internalError(c, "Failed to fetch user posts", err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a post by ID with isLiked set for the caller
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("postId"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(c, "Failed to fetch post", err)
	}
	if post.IsLiked, err = h.likeRepository.HasUserLikedPost(ctx, post.ID, middleware.CurrentUserID(c)); err != nil {
		return internalError(c, "Failed to fetch post", err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes one of the caller's posts
func (h *PostHandler) DeletePost(c echo.Context) error {
	err := h.postRepository.DeletePost(c.Request().Context(), c.Param("postId"), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(c, "Failed to delete post", err)
	}
	return c.JSON(http.StatusOK, success)
}
