package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/metrics"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/anonto42/gooners/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

const maxListLimit = 200

var success = echo.Map{"success": true}

// HTTPErrorHandler renders every error as {"message": ...}
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else {
		log := logger.WithComponent("http")
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"message": message})
	}
	if err != nil {
		log := logger.WithComponent("http")
		log.Error().Err(err).Msg("write error response")
	}
}

// internalError logs the cause and hides it behind a fixed route message
func internalError(c echo.Context, message string, err error) error {
	log := logger.WithUserID(middleware.CurrentUserID(c))
	log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg(message)
	return echo.NewHTTPError(http.StatusInternalServerError, message)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// parseLimit reads ?limit=. Missing or unusable values give 0, which the
// repositories replace with their own default.
func parseLimit(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		return 0
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// publishNotification pushes a freshly created notification to its recipient.
func publishNotification(hub *realtime.Hub, n *models.Notification) {
	if n == nil {
		return
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	if hub == nil {
		return
	}
	hub.PublishJSON(realtime.EventNotification, realtime.UserTopic(n.UserID), n)
}
