package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	repo repositories.NotificationRepository
}

func NewNotificationHandler(repo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/read-all", h.MarkAllAsRead)
	g.PATCH("/notifications/:notificationId/read", h.MarkAsRead)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	notifications, err := h.repo.GetNotifications(c.Request().Context(), middleware.CurrentUserID(c), parseLimit(c))
	if err != nil {
		return internalError(c, "Failed to fetch notifications", err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.repo.GetUnreadCount(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return internalError(c, "Failed to fetch unread count", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	err := h.repo.MarkAsRead(c.Request().Context(), c.Param("notificationId"), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return internalError(c, "Failed to mark notification as read", err)
	}
	return c.JSON(http.StatusOK, success)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	updated, err := h.repo.MarkAllAsRead(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return internalError(c, "Failed to mark notifications as read", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "updated": updated})
}
