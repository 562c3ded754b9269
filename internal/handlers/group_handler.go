package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/actions"
	"github.com/anonto42/nano-midea/feedview/internal/editing"
	"github.com/anonto42/nano-midea/feedview/internal/groups"
	"github.com/anonto42/nano-midea/feedview/internal/metrics"
	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// GroupForms tracks the viewer's group creation; viewstate.RedisStore implements it
type GroupForms interface {
	GroupFormStatus(ctx context.Context, viewerID string) (string, error)
	StartGroupForm(ctx context.Context, viewerID, loading string) (bool, error)
	SetGroupFormStatus(ctx context.Context, viewerID, status string) error
}

// GroupHandler serves the groups page and group creation
type GroupHandler struct {
	views    ViewLoader
	commands CommandExecutor
	editor   *editing.Editor
	forms    GroupForms
	metrics  *metrics.Metrics
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(views ViewLoader, commands CommandExecutor, editor *editing.Editor, forms GroupForms, m *metrics.Metrics) *GroupHandler {
	return &GroupHandler{views: views, commands: commands, editor: editor, forms: forms, metrics: m}
}

// RegisterGroupRoutes registers group routes; all of them need a signed-in viewer
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.GET("/groups", h.GetGroups)
	g.POST("/groups", h.CreateGroup)
}

// GetGroups lists pending join requests, the groups the viewer administers
// and the ones the viewer is a member of
func (h *GroupHandler) GetGroups(c echo.Context) error {
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	snap, err := h.views.Groups(ctx, viewer)
	if err != nil {
		return loadError(err)
	}
	status, err := h.forms.GroupFormStatus(ctx, viewer.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	page := groups.Aggregate(snap)
	h.metrics.Projected("group", len(page.Administered.Users)+len(page.MemberOf.Users))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"groups":     page,
			"formStatus": status,
			"canCreate":  editing.CanSubmitGroup(editing.FormStatus(status)),
		},
	})
}

// CreateGroup validates the group form and dispatches its creation. A second
// submission while one is loading is refused with 409.
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	req := models.NewCreateGroupRequest()
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if problems := h.editor.CheckGroup(req); len(problems) > 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, problems)
	}
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	snap, err := h.views.Groups(ctx, viewer)
	if err != nil {
		return loadError(err)
	}
	started, err := h.forms.StartGroupForm(ctx, viewer.ID, string(editing.FormLoading))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !started {
		return echo.NewHTTPError(http.StatusConflict, "A group is being created already")
	}

	res, err := h.commands.Execute(ctx, snap, actions.Command{Type: actions.CreateGroup, Group: &req})
	status := editing.FormSuccess
	if err != nil {
		status = editing.FormError
	}
	if serr := h.forms.SetGroupFormStatus(ctx, viewer.ID, string(status)); serr != nil {
		log.Printf("Failed to record group form status for %s: %v", viewer.ID, serr)
	}
	if err != nil {
		return commandError(err)
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"success": true,
		"data":    echo.Map{"commandId": res.CommandID, "formStatus": status},
	})
}
