package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/metrics"
	"github.com/anonto42/nano-midea/feedview/internal/middleware"
	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/notifications"
)

// SettingsStore reads and writes viewer settings; repositories.UserRepository implements it
type SettingsStore interface {
	GetViewerSettings(userID string) (*models.ViewerSettings, error)
	SaveViewerSettings(settings *models.ViewerSettings) error
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	views    ViewLoader
	registry *notifications.Registry
	settings SettingsStore
	metrics  *metrics.Metrics
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(views ViewLoader, registry *notifications.Registry, settings SettingsStore, m *metrics.Metrics) *NotificationHandler {
	return &NotificationHandler{views: views, registry: registry, settings: settings, metrics: m}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns a page of rendered notifications.
// ?filter=mentions,directs narrows them to some categories.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	filter, err := notifications.ParseFilter(c.QueryParam("filter"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	page := pageParams(c)

	snap, total, err := h.views.Notifications(c.Request().Context(), viewer, filter.EventTypes(), page)
	if err != nil {
		return loadError(err)
	}
	views := h.registry.Feed(snap, filter)
	h.metrics.Projected("notification", len(views))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": views,
			"filters":       notifications.FilterLinks(filter),
		},
		"meta": paginationMeta(page, total),
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	settings, err := h.settings.GetViewerSettings(middleware.UserIDFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": settings.UnreadNotificationsNumber}})
}

// MarkAllAsRead clears the unread notification count
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	settings, err := h.settings.GetViewerSettings(middleware.UserIDFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	settings.UnreadNotificationsNumber = 0
	if err := h.settings.SaveViewerSettings(settings); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}
