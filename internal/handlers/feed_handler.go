package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/metrics"
	"github.com/anonto42/nano-midea/feedview/internal/postview"
)

// FeedHandler serves the viewer's home feed
type FeedHandler struct {
	views     ViewLoader
	projector *postview.Projector
	metrics   *metrics.Metrics
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(views ViewLoader, projector *postview.Projector, m *metrics.Metrics) *FeedHandler {
	return &FeedHandler{views: views, projector: projector, metrics: m}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns a page of projected posts. Posts that fail to project are
// left out; the rest of the page is still served.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	page := pageParams(c)

	snap, ids, err := h.views.Feed(c.Request().Context(), viewer, page, location(c))
	if err != nil {
		return loadError(err)
	}
	posts := h.projector.ProjectAll(snap, ids)
	h.metrics.Projected("post", len(posts))

	// the feed store has no cheap count; a full page means there may be more
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": posts,
		},
		"meta": echo.Map{
			"currentPage":     page.Page,
			"itemsPerPage":    page.Limit,
			"hasNextPage":     len(snap.PostIDs()) == page.Limit,
			"hasPreviousPage": page.Page > 1,
		},
	})
}
