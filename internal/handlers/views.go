package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/loader"
	"github.com/anonto42/nano-midea/feedview/internal/middleware"
	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/repositories"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// ViewLoader builds the snapshots views are projected from; *loader.Loader implements it
type ViewLoader interface {
	Viewer(userID string) (models.Viewer, error)
	Feed(ctx context.Context, viewer models.Viewer, page loader.Page, loc models.Location) (*snapshot.Snapshot, []string, error)
	Post(ctx context.Context, viewer models.Viewer, postID string, loc models.Location) (*snapshot.Snapshot, error)
	Notifications(ctx context.Context, viewer models.Viewer, eventTypes []string, page loader.Page) (*snapshot.Snapshot, int64, error)
	Groups(ctx context.Context, viewer models.Viewer) (*snapshot.Snapshot, error)
	Profile(ctx context.Context, viewer models.Viewer, username string) (*snapshot.Snapshot, error)
}

// currentViewer loads the viewer of the request; anonymous when nobody signed in
func currentViewer(c echo.Context, views ViewLoader) (models.Viewer, error) {
	viewer, err := views.Viewer(middleware.UserIDFromContext(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return viewer, echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	if err != nil {
		return viewer, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return viewer, nil
}

// pageParams reads ?page and ?limit: page starts at 1, limit defaults to 20
// and may not exceed 50
func pageParams(c echo.Context) loader.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return loader.Page{Page: page, Limit: limit}
}

func paginationMeta(p loader.Page, totalItems int64) echo.Map {
	totalPages := int(math.Ceil(float64(totalItems) / float64(p.Limit)))
	return echo.Map{
		"currentPage":     p.Page,
		"totalPages":      totalPages,
		"totalItems":      totalItems,
		"itemsPerPage":    p.Limit,
		"hasNextPage":     p.Page < totalPages,
		"hasPreviousPage": p.Page > 1,
	}
}

// location describes the page the client shows. ?hash carries the URL
// fragment, which browsers never send.
func location(c echo.Context) models.Location {
	loc := models.Location{Path: c.Request().URL.Path}
	if hash := c.QueryParam("hash"); hash != "" {
		if !strings.HasPrefix(hash, "#") {
			hash = "#" + hash
		}
		loc.Hash = hash
	}
	for key, values := range c.QueryParams() {
		if key == "hash" || len(values) == 0 {
			continue
		}
		if loc.Query == nil {
			loc.Query = map[string]string{}
		}
		loc.Query[key] = values[0]
	}
	return loc
}

// loadError maps loader errors to HTTP errors
func loadError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPostNotFound), errors.Is(err, loader.ErrNotVisible):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
