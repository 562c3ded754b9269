package snapshot

import (
	"slices"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// Builder collects entities for a Snapshot. It is not safe for concurrent use.
type Builder struct {
	s *Snapshot
}

// NewBuilder starts a snapshot for the given viewer. The viewer is also
// registered as a user so that its own posts resolve their author.
func NewBuilder(viewer models.Viewer) *Builder {
	b := &Builder{s: &Snapshot{
		viewer:           viewer,
		users:            map[string]models.User{},
		subscribers:      map[string]models.User{},
		subscriptions:    map[string]models.Subscription{},
		posts:            map[string]models.Post{},
		comments:         map[string]models.Comment{},
		commentLikes:     map[string][]string{},
		commentEdits:     map[string]models.CommentEditState{},
		attachments:      map[string]models.Attachment{},
		managedIDs:       map[string]struct{}{},
		following:        map[string]struct{}{},
		viewStates:       map[string]models.PostViewState{},
		usersNotFound:    map[string]struct{}{},
		directsReceivers: map[string]bool{},
	}}
	if viewer.ID != "" {
		b.Users(viewer.User)
	}
	return b
}

// Users adds users and groups; a later entry with the same id replaces the earlier one
func (b *Builder) Users(users ...models.User) *Builder {
	for _, u := range users {
		if _, seen := b.s.users[u.ID]; !seen {
			b.s.userOrder = append(b.s.userOrder, u.ID)
		}
		b.s.users[u.ID] = cloneUser(u)
	}
	return b
}

// Subscribers adds owners of subscriptions that are not full users of the snapshot
func (b *Builder) Subscribers(users ...models.User) *Builder {
	for _, u := range users {
		b.s.subscribers[u.ID] = cloneUser(u)
	}
	return b
}

func (b *Builder) Subscriptions(subs ...models.Subscription) *Builder {
	for _, sub := range subs {
		b.s.subscriptions[sub.ID] = sub
	}
	return b
}

func (b *Builder) Posts(posts ...models.Post) *Builder {
	for _, p := range posts {
		if _, seen := b.s.posts[p.ID]; !seen {
			b.s.postOrder = append(b.s.postOrder, p.ID)
		}
		b.s.posts[p.ID] = clonePost(p)
	}
	return b
}

func (b *Builder) Comments(comments ...models.Comment) *Builder {
	for _, c := range comments {
		b.s.comments[c.ID] = c
	}
	return b
}

// CommentLikes sets the ids of users who liked a comment
func (b *Builder) CommentLikes(commentID string, userIDs ...string) *Builder {
	b.s.commentLikes[commentID] = slices.Clone(userIDs)
	return b
}

func (b *Builder) CommentEditState(commentID string, st models.CommentEditState) *Builder {
	b.s.commentEdits[commentID] = st
	return b
}

func (b *Builder) Attachments(atts ...models.Attachment) *Builder {
	for _, a := range atts {
		b.s.attachments[a.ID] = a
	}
	return b
}

// ManagedGroups registers the groups the viewer administers. They are added
// to the users set as well, Requests included.
func (b *Builder) ManagedGroups(groups ...models.User) *Builder {
	for _, g := range groups {
		g.Requests = slices.Clone(g.Requests)
		b.s.managed = append(b.s.managed, g)
		b.s.managedIDs[g.ID] = struct{}{}
		b.Users(g)
	}
	return b
}

// Following registers the users and groups the viewer is subscribed to
func (b *Builder) Following(userIDs ...string) *Builder {
	for _, id := range userIDs {
		b.s.following[id] = struct{}{}
	}
	return b
}

func (b *Builder) HiddenNames(names ...string) *Builder {
	b.s.hiddenNames = append(b.s.hiddenNames, names...)
	return b
}

func (b *Builder) ViewState(postID string, st models.PostViewState) *Builder {
	b.s.viewStates[postID] = st
	return b
}

func (b *Builder) Highlight(h models.CommentHighlight) *Builder {
	b.s.highlight = h
	return b
}

func (b *Builder) Location(l models.Location) *Builder {
	b.s.location = l
	return b
}

func (b *Builder) Events(events ...models.NotificationEvent) *Builder {
	b.s.events = append(b.s.events, events...)
	return b
}

func (b *Builder) UserRequests(users ...models.User) *Builder {
	b.s.userRequests = append(b.s.userRequests, users...)
	return b
}

func (b *Builder) UsersNotFound(usernames ...string) *Builder {
	for _, name := range usernames {
		b.s.usersNotFound[name] = struct{}{}
	}
	return b
}

func (b *Builder) DirectsReceiver(username string, accepts bool) *Builder {
	b.s.directsReceivers[username] = accepts
	return b
}

// Build seals the snapshot. The builder must not be used afterwards.
func (b *Builder) Build() *Snapshot {
	s := b.s
	b.s = nil
	return s
}
