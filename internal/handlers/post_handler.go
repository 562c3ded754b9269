package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/editing"
	"github.com/anonto42/nano-midea/feedview/internal/metrics"
	"github.com/anonto42/nano-midea/feedview/internal/postview"
	"github.com/anonto42/nano-midea/feedview/internal/privacy"
)

// PostHandler serves single posts and the checks run while editing one
type PostHandler struct {
	views     ViewLoader
	projector *postview.Projector
	editor    *editing.Editor
	metrics   *metrics.Metrics
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(views ViewLoader, projector *postview.Projector, editor *editing.Editor, m *metrics.Metrics) *PostHandler {
	return &PostHandler{views: views, projector: projector, editor: editor, metrics: m}
}

// RegisterPostRoutes registers post-related routes. The edit checks need
// a signed-in viewer; requireUser guards them.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.GET("/posts/:id", h.GetPost)
	g.POST("/posts/:id/destinations", h.CheckDestinations, requireUser)
	g.POST("/posts/:id/draft", h.CheckDraft, requireUser)
}

// GetPost returns one projected post. ?hash=comment-<id> highlights the
// comment the link points at.
func (h *PostHandler) GetPost(c echo.Context) error {
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	postID := c.Param("id")

	snap, err := h.views.Post(c.Request().Context(), viewer, postID, location(c))
	if err != nil {
		return loadError(err)
	}
	post, ok := h.projector.Project(snap, postID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	h.metrics.Projected("post", 1)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"post": post},
	})
}

// DestinationsRequest names the feeds a post is about to be sent to
type DestinationsRequest struct {
	Destinations []string `json:"destinations"`
}

// CheckDestinations reports the privacy the post would get if sent to the
// given feeds, with a warning when that exposes it more than now
func (h *PostHandler) CheckDestinations(c echo.Context) error {
	var req DestinationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	postID := c.Param("id")

	snap, err := h.views.Post(c.Request().Context(), viewer, postID, location(c))
	if err != nil {
		return loadError(err)
	}
	post, ok := h.projector.Project(snap, postID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	next := privacy.Destinations(req.Destinations, snap)
	var warning string
	if !post.IsDirect {
		warning = privacy.Warning(post.Privacy, next)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"privacy": next,
			"level":   next.Level(),
			"warning": warning,
		},
	})
}

// CheckDraft tells whether an edit draft of the post can be submitted
func (h *PostHandler) CheckDraft(c echo.Context) error {
	var draft editing.Draft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	postID := c.Param("id")

	snap, err := h.views.Post(c.Request().Context(), viewer, postID, location(c))
	if err != nil {
		return loadError(err)
	}
	check, err := h.editor.Check(snap, postID, draft)
	if errors.Is(err, editing.ErrPostNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"check": check},
	})
}
