package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/anonto42/gooners/backend/validators"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/auth/user", h.GetProfile)
	g.GET("/profile", h.GetProfile)
	g.PATCH("/profile", h.UpdateProfile)
	g.GET("/profile/check-username/:username", h.CheckUsername)
	g.GET("/users/:userId", h.GetUser)
}

// GetProfile returns the signed-in user
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, "Failed to fetch user", err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser returns another user's profile
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, "Failed to fetch user", err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial update to the signed-in user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Username != nil {
		username := validators.NormalizeUsername(*req.Username)
		req.Username = &username
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	update := models.ProfileUpdate{Username: req.Username, Bio: req.Bio, ProfileImageURL: req.ProfileImageURL}

	user, err := h.userRepository.UpdateProfile(c.Request().Context(), middleware.CurrentUserID(c), update)
	if err != nil {
		var cooldown *repositories.UsernameCooldownError
		switch {
		case errors.As(err, &cooldown):
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"message":         cooldown.Eligibility.Reason,
				"nextAllowedDate": cooldown.Eligibility.NextAllowedDate,
			})
		case errors.Is(err, repositories.ErrUsernameTaken):
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		case errors.Is(err, repositories.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, "Failed to update profile", err)
	}
	return c.JSON(http.StatusOK, user)
}

// CheckUsername reports whether the caller could switch to the given username
func (h *UserHandler) CheckUsername(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.CurrentUserID(c)
	username := validators.NormalizeUsername(c.Param("username"))

	resp := models.UsernameCheckResponse{Username: username}
	if !validators.IsValidUsername(username) {
		resp.Reason = validators.InvalidUsernameMessage
		return c.JSON(http.StatusOK, resp)
	}

	available, err := h.userRepository.CheckUsernameAvailability(ctx, username, userID)
	if err != nil {
		return internalError(c, "Failed to check username", err)
	}
	eligibility, err := h.userRepository.CanChangeUsername(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, "Failed to check username", err)
	}

	resp.Available = available
	resp.CanChange = eligibility.CanChange
	resp.Reason = eligibility.Reason
	resp.NextAllowedDate = eligibility.NextAllowedDate
	if !available {
		resp.Reason = "Username is already taken"
	}
	return c.JSON(http.StatusOK, resp)
}
