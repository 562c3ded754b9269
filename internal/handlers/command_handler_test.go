package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/actions"
	"github.com/anonto42/nano-midea/feedview/internal/notifications"
)

func TestCommandRoutes(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		want    actions.Command
		profile string
	}{
		{"like", http.MethodPost, "/api/v1/posts/p1/likes", "", actions.Command{Type: actions.Like, PostID: "p1"}, ""},
		{"unsave", http.MethodDelete, "/api/v1/posts/p1/save", "", actions.Command{Type: actions.Unsave, PostID: "p1"}, ""},
		{"delete post", http.MethodDelete, "/api/v1/posts/p2", "", actions.Command{Type: actions.DeletePost, PostID: "p2"}, ""},
		{"delete comment", http.MethodDelete, "/api/v1/posts/p1/comments/c1", "", actions.Command{Type: actions.DeleteComment, PostID: "p1", CommentID: "c1"}, ""},
		{"follow", http.MethodPost, "/api/v1/users/alice/follow", "", actions.Command{Type: actions.Subscribe, Username: "alice"}, "alice"},
		{"ban", http.MethodPost, "/api/v1/users/bob/ban", "", actions.Command{Type: actions.Ban, Username: "bob"}, "bob"},
		{"accept request", http.MethodPut, "/api/v1/groups/cats/requests/bob", "", actions.Command{Type: actions.AcceptGroupRequest, GroupName: "cats", Username: "bob"}, "cats"},
		{"reject request", http.MethodDelete, "/api/v1/groups/cats/requests/bob", "", actions.Command{Type: actions.RejectGroupRequest, GroupName: "cats", Username: "bob"}, "cats"},
		{"raw command", http.MethodPost, "/api/v1/commands", `{"type":"hide_by_name","username":"bob"}`, actions.Command{Type: actions.HideByName, Username: "bob"}, "bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.commands.res = actions.Result{CommandID: "cmd-1", Dispatched: true}

			rec := ts.do(t, tt.method, tt.target, tt.body, "me")
			if rec.Code != http.StatusAccepted {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if len(ts.commands.calls) != 1 {
				t.Fatalf("executed %d commands, want 1", len(ts.commands.calls))
			}
			got := ts.commands.calls[0]
			if got.Type != tt.want.Type || got.PostID != tt.want.PostID || got.CommentID != tt.want.CommentID ||
				got.Username != tt.want.Username || got.GroupName != tt.want.GroupName {
				t.Errorf("command = %+v, want %+v", got, tt.want)
			}
			if ts.views.lastProfile != tt.profile {
				t.Errorf("profile loaded for %q, want %q", ts.views.lastProfile, tt.profile)
			}
		})
	}
}

func TestCommandRoutesRejected(t *testing.T) {
	ts := newTestServer()

	if rec := ts.do(t, http.MethodPost, "/api/v1/posts/p1/likes", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
	if rec := ts.do(t, http.MethodPost, "/api/v1/commands", `{"type":"fly"}`, "me"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown type status = %d, want 400", rec.Code)
	}
	if rec := ts.do(t, http.MethodPost, "/api/v1/posts/nope/likes", "", "me"); rec.Code != http.StatusNotFound {
		t.Errorf("missing post status = %d, want 404", rec.Code)
	}
	if len(ts.commands.calls) != 0 {
		t.Errorf("executed %v", ts.commands.calls)
	}

	// UI-only commands are applied, not dispatched
	rec := ts.do(t, http.MethodPost, "/api/v1/commands", `{"type":"toggle_editing","postId":"p2"}`, "me")
	if rec.Code != http.StatusOK {
		t.Errorf("ui command status = %d, want 200", rec.Code)
	}
}

func TestCommandError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: %q", actions.ErrUnknownCommand, "fly"), http.StatusBadRequest},
		{&actions.InvalidError{Problems: []string{"postId: required"}}, http.StatusUnprocessableEntity},
		{actions.ErrNotAllowed, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: post p9", actions.ErrNotFound), http.StatusNotFound},
		{actions.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("%w: %w", actions.ErrDispatchRejected, errors.New("broker down")), http.StatusBadGateway},
		{errors.New("redis down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		var he *echo.HTTPError
		if !errors.As(commandError(tt.err), &he) || he.Code != tt.code {
			t.Errorf("commandError(%v) = %v, want %d", tt.err, he, tt.code)
		}
	}
}

func TestGetGroups(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/groups", "", "me")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Data struct {
			Groups struct {
				PendingRequests []struct {
					Count int `json:"count"`
				} `json:"pendingRequests"`
				Administered struct {
					Users []struct {
						Username string `json:"username"`
					} `json:"users"`
				} `json:"administered"`
				MemberOf struct {
					Users []struct {
						Username string `json:"username"`
					} `json:"users"`
				} `json:"memberOf"`
			} `json:"groups"`
			FormStatus string `json:"formStatus"`
			CanCreate  bool   `json:"canCreate"`
		} `json:"data"`
	}
	decode(t, rec, &got)
	g := got.Data.Groups
	if len(g.Administered.Users) != 1 || g.Administered.Users[0].Username != "cats" {
		t.Errorf("administered = %+v", g.Administered.Users)
	}
	if len(g.MemberOf.Users) != 1 || g.MemberOf.Users[0].Username != "dogs" {
		t.Errorf("member of = %+v", g.MemberOf.Users)
	}
	if len(g.PendingRequests) != 1 || g.PendingRequests[0].Count != 1 {
		t.Errorf("pending requests = %+v", g.PendingRequests)
	}
	if got.Data.FormStatus != "" || !got.Data.CanCreate {
		t.Errorf("form status %q, canCreate %v", got.Data.FormStatus, got.Data.CanCreate)
	}

	ts.forms.status = "loading"
	decode(t, ts.do(t, http.MethodGet, "/api/v1/groups", "", "me"), &got)
	if got.Data.CanCreate {
		t.Error("can create while a group is loading")
	}
}

func TestCreateGroup(t *testing.T) {
	const body = `{"username":"birds","screenName":"Birds of a feather"}`

	t.Run("dispatched", func(t *testing.T) {
		ts := newTestServer()
		ts.commands.res = actions.Result{CommandID: "cmd-7", Dispatched: true}

		rec := ts.do(t, http.MethodPost, "/api/v1/groups", body, "me")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if len(ts.commands.calls) != 1 {
			t.Fatalf("executed %d commands", len(ts.commands.calls))
		}
		cmd := ts.commands.calls[0]
		if cmd.Type != actions.CreateGroup || cmd.Group == nil || cmd.Group.Username != "birds" || cmd.Group.IsPrivate != "0" {
			t.Errorf("command = %+v group = %+v", cmd, cmd.Group)
		}
		if ts.forms.status != "success" {
			t.Errorf("form status = %q, want success", ts.forms.status)
		}
	})

	t.Run("invalid form", func(t *testing.T) {
		ts := newTestServer()
		rec := ts.do(t, http.MethodPost, "/api/v1/groups", `{"username":"b!","screenName":"B","isPrivate":"2"}`, "me")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
		if len(ts.commands.calls) != 0 || ts.forms.status != "" {
			t.Errorf("invalid form was submitted: %v, status %q", ts.commands.calls, ts.forms.status)
		}
	})

	t.Run("already loading", func(t *testing.T) {
		ts := newTestServer()
		ts.forms.status = "loading"
		if rec := ts.do(t, http.MethodPost, "/api/v1/groups", body, "me"); rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
		if len(ts.commands.calls) != 0 {
			t.Errorf("executed %v", ts.commands.calls)
		}
	})

	t.Run("dispatch rejected", func(t *testing.T) {
		ts := newTestServer()
		ts.commands.err = fmt.Errorf("%w: %w", actions.ErrDispatchRejected, errors.New("broker down"))
		if rec := ts.do(t, http.MethodPost, "/api/v1/groups", body, "me"); rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
		if ts.forms.status != "error" {
			t.Errorf("form status = %q, want error", ts.forms.status)
		}
	})
}

func TestGetNotifications(t *testing.T) {
	ts := newTestServer()

	type response struct {
		Data struct {
			Notifications []notifications.View       `json:"notifications"`
			Filters       []notifications.FilterLink `json:"filters"`
		} `json:"data"`
		Meta struct {
			TotalItems int64 `json:"totalItems"`
			TotalPages int   `json:"totalPages"`
		} `json:"meta"`
	}

	if rec := ts.do(t, http.MethodGet, "/api/v1/notifications?filter=bogus", "", "me"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown filter status = %d, want 400", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/v1/notifications", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/notifications?filter=subscriptions", "", "me")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got response
	decode(t, rec, &got)
	if len(got.Data.Notifications) != 1 || got.Data.Notifications[0].EventType != notifications.UserSubscribed {
		t.Errorf("notifications = %+v", got.Data.Notifications)
	}
	if !slices.Contains(ts.views.lastEventTypes, string(notifications.UserSubscribed)) {
		t.Errorf("queried event types %v", ts.views.lastEventTypes)
	}
	if got.Meta.TotalItems != 1 || got.Meta.TotalPages != 1 {
		t.Errorf("meta = %+v", got.Meta)
	}
	active := slices.IndexFunc(got.Data.Filters, func(l notifications.FilterLink) bool { return l.Active })
	if active < 0 || got.Data.Filters[active].Query != "subscriptions" {
		t.Errorf("filters = %+v", got.Data.Filters)
	}

	got = response{}
	decode(t, ts.do(t, http.MethodGet, "/api/v1/notifications?filter=bans", "", "me"), &got)
	if len(got.Data.Notifications) != 0 {
		t.Errorf("bans filter let through %+v", got.Data.Notifications)
	}

	got = response{}
	decode(t, ts.do(t, http.MethodGet, "/api/v1/notifications", "", "me"), &got)
	if ts.views.lastEventTypes != nil || len(got.Data.Notifications) != 1 {
		t.Errorf("unfiltered: queried %v, rendered %d", ts.views.lastEventTypes, len(got.Data.Notifications))
	}
}

func TestUnreadNotifications(t *testing.T) {
	ts := newTestServer()

	var got struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	decode(t, ts.do(t, http.MethodGet, "/api/v1/notifications/unread-count", "", "me"), &got)
	if got.Data.Count != 3 {
		t.Errorf("count = %d, want 3", got.Data.Count)
	}

	if rec := ts.do(t, http.MethodPut, "/api/v1/notifications/read-all", "", "me"); rec.Code != http.StatusOK {
		t.Fatalf("read-all status = %d", rec.Code)
	}
	if n := ts.settings["me"].UnreadNotificationsNumber; n != 0 {
		t.Errorf("unread after read-all = %d", n)
	}
}
