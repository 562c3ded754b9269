package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/actions"
	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// CommandExecutor runs presentation commands; *actions.Service implements it
type CommandExecutor interface {
	Execute(ctx context.Context, snap *snapshot.Snapshot, cmd actions.Command) (actions.Result, error)
}

// CommandHandler accepts the viewer's commands, either as a raw command or
// through the resource-style shortcuts below
type CommandHandler struct {
	views    ViewLoader
	commands CommandExecutor
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(views ViewLoader, commands CommandExecutor) *CommandHandler {
	return &CommandHandler{views: views, commands: commands}
}

// RegisterCommandRoutes registers command routes; all of them need a signed-in viewer
func (h *CommandHandler) RegisterCommandRoutes(g *echo.Group) {
	g.POST("/commands", h.PostCommand)

	g.POST("/posts/:id/likes", h.postCommand(actions.Like))
	g.DELETE("/posts/:id/likes", h.postCommand(actions.Unlike))
	g.POST("/posts/:id/save", h.postCommand(actions.Save))
	g.DELETE("/posts/:id/save", h.postCommand(actions.Unsave))
	g.POST("/posts/:id/hide", h.postCommand(actions.Hide))
	g.DELETE("/posts/:id/hide", h.postCommand(actions.Unhide))
	g.DELETE("/posts/:id", h.postCommand(actions.DeletePost))
	g.DELETE("/posts/:id/comments/:commentId", h.DeleteComment)

	g.POST("/users/:username/follow", h.userCommand(actions.Subscribe))
	g.DELETE("/users/:username/follow", h.userCommand(actions.Unsubscribe))
	g.POST("/users/:username/subscription-request", h.userCommand(actions.SendSubscriptionRequest))
	g.POST("/users/:username/ban", h.userCommand(actions.Ban))
	g.DELETE("/users/:username/ban", h.userCommand(actions.Unban))

	g.PUT("/groups/:group/requests/:username", h.groupRequest(actions.AcceptGroupRequest))
	g.DELETE("/groups/:group/requests/:username", h.groupRequest(actions.RejectGroupRequest))
}

// PostCommand runs the command in the request body
func (h *CommandHandler) PostCommand(c echo.Context) error {
	var cmd actions.Command
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return h.run(c, cmd)
}

// DeleteComment deletes a comment of a post
func (h *CommandHandler) DeleteComment(c echo.Context) error {
	return h.run(c, actions.Command{Type: actions.DeleteComment, PostID: c.Param("id"), CommentID: c.Param("commentId")})
}

func (h *CommandHandler) postCommand(t actions.Type) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.run(c, actions.Command{Type: t, PostID: c.Param("id")})
	}
}

func (h *CommandHandler) userCommand(t actions.Type) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.run(c, actions.Command{Type: t, Username: c.Param("username")})
	}
}

func (h *CommandHandler) groupRequest(t actions.Type) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.run(c, actions.Command{Type: t, GroupName: c.Param("group"), Username: c.Param("username")})
	}
}

func (h *CommandHandler) run(c echo.Context, cmd actions.Command) error {
	if !actions.Known(cmd.Type) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown command type: "+string(cmd.Type))
	}
	viewer, err := currentViewer(c, h.views)
	if err != nil {
		return err
	}
	snap, err := h.snapshotFor(c, viewer, cmd)
	if err != nil {
		return loadError(err)
	}

	res, err := h.commands.Execute(c.Request().Context(), snap, cmd)
	if err != nil {
		return commandError(err)
	}
	status := http.StatusOK
	if res.Dispatched {
		status = http.StatusAccepted
	}
	return c.JSON(status, echo.Map{"success": true, "data": res})
}

// snapshotFor loads what cmd is checked against: its post, its group or
// its target user
func (h *CommandHandler) snapshotFor(c echo.Context, viewer models.Viewer, cmd actions.Command) (*snapshot.Snapshot, error) {
	ctx := c.Request().Context()
	switch {
	case cmd.PostID != "":
		return h.views.Post(ctx, viewer, cmd.PostID, location(c))
	case cmd.GroupName != "":
		return h.views.Profile(ctx, viewer, cmd.GroupName)
	case cmd.Username != "":
		return h.views.Profile(ctx, viewer, cmd.Username)
	default:
		return h.views.Groups(ctx, viewer)
	}
}

// commandError maps command failures to HTTP errors
func commandError(err error) error {
	var invalid *actions.InvalidError
	switch {
	case errors.Is(err, actions.ErrUnknownCommand):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, invalid.Problems)
	case errors.Is(err, actions.ErrNotAllowed):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, actions.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, actions.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, actions.ErrDispatchRejected):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
