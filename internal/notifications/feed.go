package notifications

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// ErrUnknownFilter is returned for a filter name outside the known set
var ErrUnknownFilter = errors.New("unknown notifications filter")

// Resolved is an event joined with the entities it references. Every
// reference missing from the snapshot is a zero value, never nil.
type Resolved struct {
	models.NotificationEvent
	CreatedUser  models.User
	AffectedUser models.User
	Group        models.User
	PostAuthor   models.User
	Post         models.Post
	Comment      models.Comment
}

// Resolve joins ev against snap
func Resolve(ev models.NotificationEvent, snap *snapshot.Snapshot) Resolved {
	r := Resolved{NotificationEvent: ev}
	r.CreatedUser = lookupUser(snap, ev.CreatedUserID)
	r.AffectedUser = lookupUser(snap, ev.AffectedUserID)
	if ev.GroupID != "" {
		r.Group, _ = snap.User(ev.GroupID)
	}
	if ev.PostAuthorID != "" {
		r.PostAuthor, _ = snap.User(ev.PostAuthorID)
	}
	if ev.PostID != "" {
		r.Post, _ = snap.Post(ev.PostID)
	}
	if ev.CommentID != "" {
		r.Comment, _ = snap.Comment(ev.CommentID)
	}
	return r
}

func lookupUser(snap *snapshot.Snapshot, id string) models.User {
	if id == "" {
		return models.User{}
	}
	if u, ok := snap.User(id); ok {
		return u
	}
	u, _ := snap.Subscriber(id)
	return u
}

// View is a rendered notification
type View struct {
	ID        string     `json:"id"`
	EventType EventType  `json:"eventType"`
	Category  Category   `json:"category"`
	Date      time.Time  `json:"date"`
	Fragments []Fragment `json:"fragments"`
	Text      string     `json:"text"`
}

// Registry renders events with site-wide settings
type Registry struct {
	siteTitle string
}

func NewRegistry(siteTitle string) *Registry {
	return &Registry{siteTitle: siteTitle}
}

// Render formats a resolved event. It returns false for unknown and
// suppressed event types: those render nothing.
func (r *Registry) Render(ev Resolved, snap *snapshot.Snapshot) (View, bool) {
	t := EventType(ev.EventType)
	e, ok := registry[t]
	if !ok || e.disposition == suppressed || e.format == nil {
		return View{}, false
	}
	s := &sentence{}
	e.format(s, ev, env{siteTitle: r.siteTitle, pending: pendingIn(snap)})
	return View{
		ID:        ev.ID,
		EventType: t,
		Category:  e.category,
		Date:      ev.Date,
		Fragments: s.frags,
		Text:      s.String(),
	}, true
}

// Feed renders the snapshot's events that pass filter, in snapshot order
func (r *Registry) Feed(snap *snapshot.Snapshot, filter Filter) []View {
	events := snap.Events()
	views := make([]View, 0, len(events))
	for _, ev := range events {
		v, ok := r.Render(Resolve(ev, snap), snap)
		if !ok || !filter.Allows(v.Category) {
			continue
		}
		views = append(views, v)
	}
	return views
}

// pendingIn reports pending requests: to a group the viewer manages, or to
// the viewer personally
func pendingIn(snap *snapshot.Snapshot) func(userID, groupID string) bool {
	return func(userID, groupID string) bool {
		hasUser := func(u models.User) bool { return u.ID == userID }
		if groupID == "" {
			return slices.ContainsFunc(snap.UserRequests(), hasUser)
		}
		for _, g := range snap.ManagedGroups() {
			if g.ID == groupID {
				return slices.ContainsFunc(g.Requests, hasUser)
			}
		}
		return false
	}
}

// Filter selects categories; an empty filter shows everything
type Filter []Category

type filterName struct {
	name     string
	label    string
	category Category
}

var filterNames = []filterName{
	{"mentions", "Mentions", CategoryMention},
	{"subscriptions", "Subscriptions", CategorySubscription},
	{"groups", "Groups", CategoryGroup},
	{"directs", "Direct messages", CategoryDirect},
	{"bans", "Bans", CategoryBan},
}

// ParseFilter reads a comma separated list of filter names such as
// "mentions,directs"
func ParseFilter(raw string) (Filter, error) {
	var f Filter
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		i := slices.IndexFunc(filterNames, func(n filterName) bool { return n.name == name })
		if i < 0 {
			return nil, ErrUnknownFilter
		}
		f = append(f, filterNames[i].category)
	}
	return f, nil
}

// Allows reports whether events of category c pass the filter
func (f Filter) Allows(c Category) bool {
	return len(f) == 0 || slices.Contains(f, c)
}

// EventTypes lists the event types a store query should narrow to, in a
// stable order. An empty filter returns nil: every type is wanted.
func (f Filter) EventTypes() []string {
	if len(f) == 0 {
		return nil
	}
	var out []string
	for t, e := range registry {
		if e.disposition != suppressed && f.Allows(e.category) {
			out = append(out, string(t))
		}
	}
	slices.Sort(out)
	return out
}

// FilterLink is one entry of the filter bar
type FilterLink struct {
	Label  string `json:"label"`
	Query  string `json:"query"`
	Active bool   `json:"active"`
}

// FilterLinks lists the filter bar for the currently active filter
func FilterLinks(active Filter) []FilterLink {
	links := []FilterLink{{Label: "Everything", Active: len(active) == 0}}
	for _, n := range filterNames {
		links = append(links, FilterLink{
			Label:  n.label,
			Query:  n.name,
			Active: slices.Contains(active, n.category),
		})
	}
	return links
}
