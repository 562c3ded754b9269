package notifications

import (
	"fmt"
	"strings"
)

// ReviewRequestsPath is where pending subscription requests are reviewed
const ReviewRequestsPath = "/friends?show=requests"

// Fragment is a piece of a rendered notification. Href is set for links.
type Fragment struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

type sentence struct {
	frags []Fragment
}

func (s *sentence) text(format string, args ...any) {
	t := fmt.Sprintf(format, args...)
	if t == "" {
		return
	}
	if n := len(s.frags); n > 0 && s.frags[n-1].Href == "" {
		s.frags[n-1].Text += t
		return
	}
	s.frags = append(s.frags, Fragment{Text: t})
}

func (s *sentence) link(text, href string) {
	s.frags = append(s.frags, Fragment{Text: text, Href: href})
}

func (s *sentence) String() string {
	var b strings.Builder
	for _, f := range s.frags {
		b.WriteString(f.Text)
	}
	return b.String()
}

// env carries what templates need beyond the event itself
type env struct {
	siteTitle string
	// pending reports whether a subscription request from userID is still
	// waiting for review; groupID is empty for requests to the viewer
	pending func(userID, groupID string) bool
}

// authorName is the feed the event's post lives in: the group, the post
// author or, failing both, the actor
func authorName(ev Resolved) string {
	switch {
	case ev.Group.Username != "":
		return ev.Group.Username
	case ev.PostAuthor.Username != "":
		return ev.PostAuthor.Username
	default:
		return ev.CreatedUser.Username
	}
}

func postURL(ev Resolved) string {
	return "/" + authorName(ev) + "/" + ev.PostID
}

func commentURL(ev Resolved) string {
	return postURL(ev) + "#comment-" + ev.CommentID
}

func (s *sentence) postLink(ev Resolved) {
	if ev.PostID == "" {
		s.text("deleted post")
		return
	}
	s.link("post", postURL(ev))
}

func (s *sentence) directPostLink(ev Resolved) {
	if ev.PostID == "" {
		s.text("deleted direct message")
		return
	}
	s.link("direct message", postURL(ev))
}

func (s *sentence) commentLink(ev Resolved, text string) {
	if ev.CommentID != "" {
		s.link(text, commentURL(ev))
		return
	}
	switch text {
	case "comment":
		s.text("deleted comment")
	case "New comment":
		s.text("Deleted comment")
	default:
		s.text("%s", text)
	}
}

func (s *sentence) inGroup(ev Resolved) {
	if ev.Group.Username != "" {
		s.text(" [in @%s]", ev.Group.Username)
	}
}

func (s *sentence) reviewLink(e env, from, groupID string) {
	if e.pending != nil && from != "" && e.pending(from, groupID) {
		s.text(" ")
		s.link("Review", ReviewRequestsPath)
	}
}

// plain renders a template made of text only
func plain(format string, fields ...func(Resolved) string) func(*sentence, Resolved, env) {
	return func(s *sentence, ev Resolved, _ env) {
		args := make([]any, len(fields))
		for i, f := range fields {
			args[i] = f(ev)
		}
		s.text(format, args...)
	}
}

func actor(ev Resolved) string    { return ev.CreatedUser.Username }
func affected(ev Resolved) string { return ev.AffectedUser.Username }
func groupName(ev Resolved) string {
	return ev.Group.Username
}

var registry = map[EventType]entry{
	MentionInPost: {category: CategoryMention, format: func(s *sentence, ev Resolved, _ env) {
		s.text("@%s mentioned you in the ", actor(ev))
		s.postLink(ev)
		s.inGroup(ev)
	}},
	MentionInComment: {category: CategoryMention, format: func(s *sentence, ev Resolved, _ env) {
		s.text("@%s mentioned you in a ", actor(ev))
		s.commentLink(ev, "comment")
		s.text(" to the ")
		s.postLink(ev)
		s.inGroup(ev)
	}},
	MentionCommentTo: {category: CategoryMention, format: func(s *sentence, ev Resolved, _ env) {
		s.text("@%s ", actor(ev))
		s.commentLink(ev, "replied")
		s.text(" to you in the ")
		s.postLink(ev)
		s.inGroup(ev)
	}},

	BannedUser:     {category: CategoryBan, format: plain("You blocked @%s", affected)},
	UnbannedUser:   {category: CategoryBan, format: plain("You unblocked @%s", affected)},
	BannedByUser:   {category: CategoryBan, disposition: suppressed},
	UnbannedByUser: {category: CategoryBan, disposition: suppressed},

	InvitationUsed: {category: CategorySubscription, format: func(s *sentence, ev Resolved, e env) {
		s.text("@%s has joined %s using your invitation", actor(ev), e.siteTitle)
	}},
	SubscriptionRequested: {category: CategorySubscription, format: func(s *sentence, ev Resolved, e env) {
		s.text("@%s sent you a subscription request", actor(ev))
		s.reviewLink(e, ev.CreatedUser.ID, "")
	}},
	SubscriptionRequestRevoked:  {category: CategorySubscription, format: plain("@%s revoked subscription request to you", actor)},
	UserSubscribed:              {category: CategorySubscription, format: plain("@%s subscribed to your feed", actor)},
	UserUnsubscribed:            {category: CategorySubscription, format: plain("@%s unsubscribed from your feed", actor)},
	SubscriptionRequestApproved: {category: CategorySubscription, format: plain("Your subscription request to @%s was approved", actor)},
	SubscriptionRequestRejected: {category: CategorySubscription, format: plain("Your subscription request to @%s was rejected", actor)},

	GroupCreated: {category: CategoryGroup, format: plain("You created a group @%s", groupName)},
	GroupSubscriptionRequested: {category: CategoryGroup, format: func(s *sentence, ev Resolved, e env) {
		s.text("@%s sent a request to join @%s that you admin", actor(ev), groupName(ev))
		s.reviewLink(e, ev.CreatedUser.ID, ev.Group.ID)
	}},
	GroupAdminPromoted: {category: CategoryGroup,
		format: plain("@%s promoted @%s to admin in the group @%s", actor, affected, groupName)},
	GroupAdminDemoted: {category: CategoryGroup,
		format: plain("@%s revoked admin privileges from @%s in group @%s", actor, affected, groupName)},
	GroupSubscriptionApproved:       {category: CategoryGroup, format: plain("Your request to join group @%s was approved", groupName)},
	GroupSubscriptionRejected:       {category: CategoryGroup, format: plain("Your request to join group @%s was rejected", groupName)},
	GroupSubscriptionRequestRevoked: {category: CategoryGroup, format: plain("@%s revoked subscription request to @%s", actor, groupName)},
	GroupSubscribed:                 {category: CategoryGroup, format: plain("@%s subscribed to @%s", actor, groupName)},
	GroupUnsubscribed:               {category: CategoryGroup, format: plain("@%s unsubscribed from @%s", actor, groupName)},
	ManagedGroupSubscriptionApproved: {category: CategoryGroup,
		format: plain("@%s request to join @%s was approved by @%s", affected, groupName, actor)},
	ManagedGroupSubscriptionRejected: {category: CategoryGroup,
		format: plain("@%s request to join @%s was rejected", affected, groupName)},

	CommentModerated: {category: CategoryGroup, format: func(s *sentence, ev Resolved, _ env) {
		s.text("@%s has deleted your comment to the ", actor(ev))
		s.postLink(ev)
		if ev.GroupID != "" {
			s.text(" in the group @%s", groupName(ev))
		}
	}},
	CommentModeratedByAnotherAdmin: {category: CategoryGroup, format: func(s *sentence, ev Resolved, _ env) {
		s.text("@%s has removed a comment from @%s to the ", actor(ev), affected(ev))
		s.postLink(ev)
		s.text(" in the group @%s", groupName(ev))
	}},
	PostModerated: {category: CategoryGroup, format: func(s *sentence, ev Resolved, _ env) {
		s.text("@%s has removed your ", actor(ev))
		s.moderatedPost(ev)
		if ev.GroupID != "" {
			s.text(" from the group @%s", groupName(ev))
		}
	}},
	PostModeratedByAnotherAdmin: {category: CategoryGroup, format: func(s *sentence, ev Resolved, _ env) {
		s.text("@%s has removed the ", actor(ev))
		s.moderatedPost(ev)
		s.text(" from @%s", affected(ev))
		if ev.GroupID != "" {
			s.text(" from the group @%s", groupName(ev))
		}
	}},

	Direct: {category: CategoryDirect, format: func(s *sentence, ev Resolved, _ env) {
		s.text("You received a ")
		s.directPostLink(ev)
		s.text(" from @%s", actor(ev))
	}},
	DirectComment: {category: CategoryDirect, format: func(s *sentence, ev Resolved, _ env) {
		s.commentLink(ev, "New comment")
		s.text(" was posted to a ")
		s.directPostLink(ev)
		s.text(" from @%s", actor(ev))
	}},
}

// moderatedPost links the removed post, or reads just "post" without an id
func (s *sentence) moderatedPost(ev Resolved) {
	if ev.PostID == "" {
		s.text("post")
		return
	}
	s.postLink(ev)
}
