// Package navigation derives the sidebar and user-card affordances of the viewer.
package navigation

import (
	"fmt"
	"slices"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// Link is a sidebar entry
type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Badge string `json:"badge,omitempty"`
	Bold  bool   `json:"bold,omitempty"`
}

// Sidebar is the "My" box of the viewer
type Sidebar struct {
	Links []Link `json:"links"`
}

// BuildSidebar lists the viewer's navigation links. Directs and
// notifications carry an unread badge; the notifications one can be turned
// off in preferences.
func BuildSidebar(v models.Viewer) Sidebar {
	hasNotifications := v.UnreadNotificationsNumber > 0 && !v.Preferences.HideUnreadNotifications
	hasDirects := v.UnreadDirectsNumber > 0

	return Sidebar{Links: []Link{
		{Label: "Home", Path: "/"},
		{Label: "Direct messages", Path: "/filter/direct", Badge: badge(hasDirects, v.UnreadDirectsNumber), Bold: hasDirects},
		{Label: "Discussions", Path: "/filter/discussions"},
		{Label: "Saved posts", Path: "/filter/saves"},
		{Label: "Best of the day", Path: "/summary/1"},
		{Label: "Notifications", Path: "/filter/notifications",
			Badge: badge(hasNotifications, v.UnreadNotificationsNumber), Bold: hasNotifications},
	}}
}

func badge(show bool, n int) string {
	if !show {
		return ""
	}
	return fmt.Sprintf("(%d)", n)
}

// CanAcceptDirects reports whether the viewer may send a direct message to
// username. known is false when the answer depends on data not loaded yet.
func CanAcceptDirects(snap *snapshot.Snapshot, username string) (accepts, known bool) {
	if username == "" {
		return false, false
	}
	user, ok := snap.UserByName(username)
	if !ok && !snap.IsUserNotFound(username) {
		return false, false
	}

	me := snap.Viewer()
	if !me.Authenticated() || user.IsGroup() || me.Username == username || snap.IsUserNotFound(username) {
		return false, true
	}
	if slices.ContainsFunc(me.Subscribers, func(s models.User) bool { return s.Username == username }) {
		return true, true
	}
	return snap.DirectsReceiver(username)
}
