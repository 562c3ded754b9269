package groups

import (
	"testing"
	"time"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return epoch.Add(time.Duration(minutes) * time.Minute)
}

func grp(id string, created, updated int) models.User {
	g := models.User{ID: id, Username: id, ScreenName: "Group " + id, Type: models.UserTypeGroup, CreatedAt: at(created)}
	if updated > 0 {
		g.UpdatedAt = at(updated)
	}
	return g
}

func usernames(users []models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Username
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAggregate(t *testing.T) {
	viewer := models.Viewer{User: models.User{ID: "me", Username: "me"}}
	snap := snapshot.NewBuilder(viewer).
		Users(grp("g3", 3, 0), models.User{ID: "u1", Username: "u1", Type: models.UserTypeUser}).
		ManagedGroups(grp("g1", 1, 5), grp("g2", 1, 10)).
		Build()

	got := Aggregate(snap)
	if want := []string{"g2", "g1"}; !equal(usernames(got.Administered.Users), want) {
		t.Errorf("Administered = %v, want %v", usernames(got.Administered.Users), want)
	}
	if want := []string{"g3"}; !equal(usernames(got.MemberOf.Users), want) {
		t.Errorf("MemberOf = %v, want %v", usernames(got.MemberOf.Users), want)
	}
	if got.PendingRequests != nil {
		t.Errorf("PendingRequests = %+v, want none", got.PendingRequests)
	}
}

func TestAggregateIsStable(t *testing.T) {
	viewer := models.Viewer{User: models.User{ID: "me", Username: "me"}}
	snap := snapshot.NewBuilder(viewer).
		Users(grp("a", 7, 0), grp("b", 1, 7), grp("c", 9, 0), grp("d", 7, 0)).
		Build()

	got := usernames(Aggregate(snap).MemberOf.Users)
	if want := []string{"c", "a", "b", "d"}; !equal(got, want) {
		t.Fatalf("MemberOf = %v, want %v", got, want)
	}
}

func TestPendingRequests(t *testing.T) {
	one := grp("one", 1, 0)
	one.Requests = []models.User{{ID: "u1", Username: "u1"}}
	many := grp("many", 2, 0)
	many.Requests = []models.User{{ID: "u1", Username: "u1"}, {ID: "u2", Username: "u2"}}
	none := grp("none", 3, 0)

	viewer := models.Viewer{User: models.User{ID: "me", Username: "me"}}
	snap := snapshot.NewBuilder(viewer).ManagedGroups(many, none, one).Build()

	got := PendingRequests(snap)
	if len(got) != 2 {
		t.Fatalf("got %d pending groups, want 2", len(got))
	}
	if got[0].Group.ID != "many" || got[0].Header != "Requests to join Group many" || got[0].Count != 2 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Group.ID != "one" || got[1].Header != "Request to join Group one" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestPluralForm(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "comments"},
		{1, "comment"},
		{2, "comments"},
	}
	for _, tc := range cases {
		if got := PluralForm(tc.n, "comment", ""); got != tc.want {
			t.Errorf("PluralForm(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
	if got := PluralForm(3, "person", "people"); got != "people" {
		t.Errorf("irregular plural = %q", got)
	}
}
