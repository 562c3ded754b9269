// Package groups splits the groups of a snapshot into the ones the viewer
// administers and the ones the viewer is only a member of.
package groups

import (
	"slices"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// Request lists pending join requests to one administered group
type Request struct {
	Group    models.UserCompact `json:"group"`
	Header   string             `json:"header"`
	Count    int                `json:"count"`
	Requests []models.User      `json:"requests"`
}

// List is a titled list of groups
type List struct {
	Header string        `json:"header"`
	Users  []models.User `json:"users"`
}

// Groups is the groups page of the viewer
type Groups struct {
	PendingRequests []Request `json:"pendingRequests"`
	Administered    List      `json:"administered"`
	MemberOf        List      `json:"memberOf"`
}

// Aggregate partitions every group of snap by whether the viewer administers
// it. Both lists are sorted by last activity, most recent first.
func Aggregate(snap *snapshot.Snapshot) Groups {
	var admin, member []models.User
	for _, g := range snap.Groups() {
		if snap.IsManaged(g.ID) {
			admin = append(admin, g)
		} else {
			member = append(member, g)
		}
	}
	byActivity := func(a, b models.User) int {
		return b.LastActivity().Compare(a.LastActivity())
	}
	slices.SortStableFunc(admin, byActivity)
	slices.SortStableFunc(member, byActivity)

	return Groups{
		PendingRequests: PendingRequests(snap),
		Administered:    List{Header: "Groups you admin", Users: admin},
		MemberOf:        List{Header: "Groups you are in", Users: member},
	}
}

// PendingRequests lists the administered groups with someone waiting to
// join, in the order they were loaded
func PendingRequests(snap *snapshot.Snapshot) []Request {
	var out []Request
	for _, g := range snap.ManagedGroups() {
		if len(g.Requests) == 0 {
			continue
		}
		out = append(out, Request{
			Group:    g.ToCompact(),
			Header:   RequestsHeader(len(g.Requests), g.ScreenName),
			Count:    len(g.Requests),
			Requests: g.Requests,
		})
	}
	return out
}

// RequestsHeader titles the request list of a group, e.g. "Requests to join Cats"
func RequestsHeader(count int, screenName string) string {
	return PluralForm(count, "Request", "") + " to join " + screenName
}

// PluralForm returns singular for exactly one and plural otherwise; an empty
// plural means singular + "s"
func PluralForm(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	if plural == "" {
		return singular + "s"
	}
	return plural
}
