package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wagate_app_echo/internal/middleware"
	"wagate_app_echo/internal/models"
	"wagate_app_echo/internal/services"
)

// SubscriptionHandler exposes the customer's entitlement and session slots.
type SubscriptionHandler struct {
	db            *gorm.DB
	subscriptions *services.SubscriptionService
}

func NewSubscriptionHandler(db *gorm.DB, subscriptions *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{db: db, subscriptions: subscriptions}
}

// Get returns the active subscription and session usage
// GET /api/customer/subscription
func (h *SubscriptionHandler) Get(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	sub, err := h.subscriptions.ActiveSubscription(userID)
	if err != nil {
		return mapServiceError(err)
	}

	var used int64
	if err := h.db.Model(&models.WhatsAppSession{}).
		Where("subscription_id = ?", sub.ID).Count(&used).Error; err != nil {
		return err
	}

	return respondOK(c, map[string]interface{}{
		"subscription":  sub,
		"sessions_used": used,
		"sessions_max":  sub.MaxSessions,
	}, "")
}

// ListSessions returns the caller's WhatsApp sessions with fresh-enough
// connection state
// GET /api/customer/sessions
func (h *SubscriptionHandler) ListSessions(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	sessions, err := h.subscriptions.ListSessions(c.Request().Context(), userID)
	if err != nil {
		return mapServiceError(err)
	}
	return respondOK(c, sessions, "")
}

// CreateSession claims a session slot and starts it on the WhatsApp server
// POST /api/customer/sessions
func (h *SubscriptionHandler) CreateSession(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	session, err := h.subscriptions.CreateSession(c.Request().Context(), userID)
	if err != nil {
		return mapServiceError(err)
	}
	return respondCreated(c, session, "Sesi dibuat, scan QR untuk menghubungkan")
}

// StopSession disconnects a session without releasing the slot
// POST /api/customer/sessions/:id/stop
func (h *SubscriptionHandler) StopSession(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid session id")
	}

	if err := h.subscriptions.StopSession(c.Request().Context(), userID, uint(sessionID)); err != nil {
		return mapServiceError(err)
	}
	return respondOK(c, nil, "Sesi dihentikan")
}

// DeleteSession removes a session and releases its slot
// DELETE /api/customer/sessions/:id
func (h *SubscriptionHandler) DeleteSession(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid session id")
	}

	if err := h.subscriptions.DeleteSession(c.Request().Context(), userID, uint(sessionID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Session not found")
		}
		return mapServiceError(err)
	}
	return respondOK(c, nil, "Sesi dihapus")
}
