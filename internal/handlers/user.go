package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/navigation"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	views ViewLoader
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(views ViewLoader) *UserHandler {
	return &UserHandler{views: views}
}

// RegisterProfileRoutes registers the viewer's own routes; they need a signed-in viewer
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.GET("/sidebar", h.GetSidebar)
}

// RegisterUserRoutes registers routes about other users
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/:username", h.GetUser)
	g.GET("/users/:username/directs", h.GetDirectsStatus)
}

// GetProfile returns the viewer with settings and subscribers
func (h *UserHandler) GetProfile(c echo.Context) error {
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"viewer": viewer}})
}

// GetSidebar returns the viewer's navigation links with unread badges
func (h *UserHandler) GetSidebar(c echo.Context) error {
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"sidebar": navigation.BuildSidebar(viewer)}})
}

// GetUser returns the user card of username
func (h *UserHandler) GetUser(c echo.Context) error {
	username := c.Param("username")
	snap, err := h.profile(c, username)
	if err != nil {
		return err
	}
	user, ok := snap.UserByName(username)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	accepts, known := navigation.CanAcceptDirects(snap, username)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"user":             user.ToCompact(),
			"description":      user.Description,
			"isFollowing":      snap.IsFollowing(user.ID),
			"isManaged":        snap.IsManaged(user.ID),
			"canAcceptDirects": triState(accepts, known),
		},
	})
}

// GetDirectsStatus tells whether the viewer may write a direct message to
// username; canAcceptDirects is null when that cannot be decided
func (h *UserHandler) GetDirectsStatus(c echo.Context) error {
	username := c.Param("username")
	snap, err := h.profile(c, username)
	if err != nil {
		return err
	}
	accepts, known := navigation.CanAcceptDirects(snap, username)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"canAcceptDirects": triState(accepts, known)},
	})
}

func (h *UserHandler) profile(c echo.Context, username string) (*snapshot.Snapshot, error) {
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return nil, err
	}
	snap, err := h.views.Profile(c.Request().Context(), viewer, username)
	if err != nil {
		return nil, loadError(err)
	}
	return snap, nil
}

func triState(value, known bool) *bool {
	if !known {
		return nil
	}
	return &value
}
