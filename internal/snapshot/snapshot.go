// Package snapshot holds the normalized, read-only entity store that every
// view projection is derived from.
//
// A Snapshot is assembled once per request with a Builder and never changes
// afterwards; accessors hand out copies so callers cannot reach into it.
package snapshot

import (
	"slices"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// Snapshot is an immutable set of entities keyed by id
type Snapshot struct {
	viewer models.Viewer

	users       map[string]models.User
	userOrder   []string
	subscribers map[string]models.User

	subscriptions map[string]models.Subscription
	posts         map[string]models.Post
	postOrder     []string
	comments      map[string]models.Comment
	commentLikes  map[string][]string
	commentEdits  map[string]models.CommentEditState
	attachments   map[string]models.Attachment

	managed    []models.User
	managedIDs map[string]struct{}
	following  map[string]struct{}

	hiddenNames []string
	viewStates  map[string]models.PostViewState
	highlight   models.CommentHighlight
	location    models.Location

	events           []models.NotificationEvent
	userRequests     []models.User
	usersNotFound    map[string]struct{}
	directsReceivers map[string]bool
}

// Viewer returns the user the snapshot was loaded for
func (s *Snapshot) Viewer() models.Viewer {
	return s.viewer
}

// User looks up a user or group by id
func (s *Snapshot) User(id string) (models.User, bool) {
	u, ok := s.users[id]
	return cloneUser(u), ok
}

// UserByName looks up a user or group by username
func (s *Snapshot) UserByName(username string) (models.User, bool) {
	for _, id := range s.userOrder {
		if u := s.users[id]; u.Username == username {
			return cloneUser(u), true
		}
	}
	return models.User{}, false
}

// Subscriber looks up the owner of a subscription, falling back to the users set
func (s *Snapshot) Subscriber(id string) (models.User, bool) {
	if u, ok := s.subscribers[id]; ok {
		return cloneUser(u), true
	}
	return s.User(id)
}

// Subscription looks up a feed subscription by id
func (s *Snapshot) Subscription(id string) (models.Subscription, bool) {
	sub, ok := s.subscriptions[id]
	return sub, ok
}

// Post looks up a post by id
func (s *Snapshot) Post(id string) (models.Post, bool) {
	p, ok := s.posts[id]
	return clonePost(p), ok
}

// PostIDs lists the loaded posts in the order they were added
func (s *Snapshot) PostIDs() []string {
	return slices.Clone(s.postOrder)
}

// Comment looks up a comment by id
func (s *Snapshot) Comment(id string) (models.Comment, bool) {
	c, ok := s.comments[id]
	return c, ok
}

// CommentLikers resolves the users who liked a comment; unknown users are skipped
func (s *Snapshot) CommentLikers(commentID string) []models.User {
	ids := s.commentLikes[commentID]
	likers := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			likers = append(likers, cloneUser(u))
		}
	}
	return likers
}

// CommentEditState returns the editing flags of a comment, zero when idle
func (s *Snapshot) CommentEditState(commentID string) models.CommentEditState {
	return s.commentEdits[commentID]
}

// Attachment looks up an attachment by id
func (s *Snapshot) Attachment(id string) (models.Attachment, bool) {
	a, ok := s.attachments[id]
	return a, ok
}

// Groups lists every group-type user in insertion order
func (s *Snapshot) Groups() []models.User {
	var groups []models.User
	for _, id := range s.userOrder {
		if u := s.users[id]; u.IsGroup() {
			groups = append(groups, cloneUser(u))
		}
	}
	return groups
}

// IsManaged reports whether the viewer administers the group
func (s *Snapshot) IsManaged(groupID string) bool {
	_, ok := s.managedIDs[groupID]
	return ok
}

// ManagedGroups lists the groups the viewer administers, with their pending requests
func (s *Snapshot) ManagedGroups() []models.User {
	return cloneUsers(s.managed)
}

// IsFollowing reports whether the viewer is subscribed to a user or group
func (s *Snapshot) IsFollowing(userID string) bool {
	_, ok := s.following[userID]
	return ok
}

// HiddenNames lists the user and group names the viewer hid
func (s *Snapshot) HiddenNames() []string {
	return slices.Clone(s.hiddenNames)
}

// ViewState returns the ephemeral UI flags of a post, with in-flight marks
// the loaded post already settled cleared
func (s *Snapshot) ViewState(postID string) models.PostViewState {
	st := s.viewStates[postID]
	if p, ok := s.posts[postID]; ok {
		st = st.Settled(p, s.viewer.ID)
	}
	return st
}

// Highlight returns the current comment highlight gesture
func (s *Snapshot) Highlight() models.CommentHighlight {
	return s.highlight
}

// Location returns the client location the snapshot was requested from
func (s *Snapshot) Location() models.Location {
	l := s.location
	if l.Query != nil {
		q := make(map[string]string, len(l.Query))
		for k, v := range l.Query {
			q[k] = v
		}
		l.Query = q
	}
	return l
}

// Events lists the loaded notification events, newest first as loaded
func (s *Snapshot) Events() []models.NotificationEvent {
	return slices.Clone(s.events)
}

// UserRequests lists users waiting for the viewer to approve their subscription
func (s *Snapshot) UserRequests() []models.User {
	return cloneUsers(s.userRequests)
}

// IsUserNotFound reports whether a username is known not to exist
func (s *Snapshot) IsUserNotFound(username string) bool {
	_, ok := s.usersNotFound[username]
	return ok
}

// DirectsReceiver reports whether username accepts directs from the viewer;
// the second value is false when that is not known yet.
func (s *Snapshot) DirectsReceiver(username string) (accepts, known bool) {
	accepts, known = s.directsReceivers[username]
	return accepts, known
}

func cloneUsers(users []models.User) []models.User {
	if users == nil {
		return nil
	}
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = cloneUser(u)
	}
	return out
}

func cloneUser(u models.User) models.User {
	u.Requests = slices.Clone(u.Requests)
	return u
}

func clonePost(p models.Post) models.Post {
	p.PostedTo = slices.Clone(p.PostedTo)
	p.Attachments = slices.Clone(p.Attachments)
	p.Comments = slices.Clone(p.Comments)
	p.Likes = slices.Clone(p.Likes)
	return p
}
