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

// PartnerHandler handles partner requests and listings
type PartnerHandler struct {
	partnerRepository repositories.PartnerRepository
	hub               *realtime.Hub
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partnerRepo repositories.PartnerRepository, hub *realtime.Hub) *PartnerHandler {
	return &PartnerHandler{partnerRepository: partnerRepo, hub: hub}
}

// RegisterPartnerRoutes registers partner-related routes
func (h *PartnerHandler) RegisterPartnerRoutes(g *echo.Group) {
	g.POST("/partners/request", h.SendRequest)
	g.POST("/partners/accept", h.AcceptRequest)
	g.GET("/partners", h.GetPartners)
	g.GET("/partners/requests", h.GetPendingRequests)
}

// SendRequest asks another user to become the caller's partner
func (h *PartnerHandler) SendRequest(c echo.Context) error {
	var req models.PartnerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	_, notification, err := h.partnerRepository.SendPartnerRequest(c.Request().Context(), middleware.CurrentUserID(c), req.PartnerID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSelfRelation):
			return echo.NewHTTPError(http.StatusBadRequest, "You cannot partner with yourself")
		case errors.Is(err, repositories.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case errors.Is(err, repositories.ErrPartnerRequestExists):
			return echo.NewHTTPError(http.StatusConflict, "A partner request already exists")
		}
		return internalError(c, "Failed to send partner request", err)
	}
	publishNotification(h.hub, notification)

	return c.JSON(http.StatusOK, success)
}

// AcceptRequest accepts a pending request sent to the caller
func (h *PartnerHandler) AcceptRequest(c echo.Context) error {
	var req models.PartnerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.partnerRepository.AcceptPartnerRequest(c.Request().Context(), middleware.CurrentUserID(c), req.PartnerID); err != nil {
		if errors.Is(err, repositories.ErrPartnerRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Partner request not found")
		}
		return internalError(c, "Failed to accept partner request", err)
	}
	return c.JSON(http.StatusOK, success)
}

// GetPartners lists the caller's accepted partners
func (h *PartnerHandler) GetPartners(c echo.Context) error {
	partners, err := h.partnerRepository.GetPartners(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return internalError(c, "Failed to fetch partners", err)
	}
	return c.JSON(http.StatusOK, partners)
}

// GetPendingRequests lists requests waiting on the caller
func (h *PartnerHandler) GetPendingRequests(c echo.Context) error {
	requests, err := h.partnerRepository.GetPendingRequests(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return internalError(c, "Failed to fetch partner requests", err)
	}
	return c.JSON(http.StatusOK, requests)
}
