// Package notifications turns the viewer's event records into short
// sentences with links, grouped into coarse categories for filtering.
package notifications

// EventType tags a notification event
type EventType string

const (
	MentionInPost    EventType = "mention_in_post"
	MentionInComment EventType = "mention_in_comment"
	MentionCommentTo EventType = "mention_comment_to"

	BannedUser     EventType = "banned_user"
	UnbannedUser   EventType = "unbanned_user"
	BannedByUser   EventType = "banned_by_user"
	UnbannedByUser EventType = "unbanned_by_user"

	InvitationUsed              EventType = "invitation_used"
	SubscriptionRequested       EventType = "subscription_requested"
	SubscriptionRequestRevoked  EventType = "subscription_request_revoked"
	UserSubscribed              EventType = "user_subscribed"
	UserUnsubscribed            EventType = "user_unsubscribed"
	SubscriptionRequestApproved EventType = "subscription_request_approved"
	SubscriptionRequestRejected EventType = "subscription_request_rejected"

	GroupCreated                     EventType = "group_created"
	GroupSubscriptionRequested       EventType = "group_subscription_requested"
	GroupAdminPromoted               EventType = "group_admin_promoted"
	GroupAdminDemoted                EventType = "group_admin_demoted"
	GroupSubscriptionApproved        EventType = "group_subscription_approved"
	GroupSubscriptionRequestRevoked  EventType = "group_subscription_request_revoked"
	GroupSubscriptionRejected        EventType = "group_subscription_rejected"
	GroupSubscribed                  EventType = "group_subscribed"
	GroupUnsubscribed                EventType = "group_unsubscribed"
	ManagedGroupSubscriptionApproved EventType = "managed_group_subscription_approved"
	ManagedGroupSubscriptionRejected EventType = "managed_group_subscription_rejected"
	CommentModerated                 EventType = "comment_moderated"
	CommentModeratedByAnotherAdmin   EventType = "comment_moderated_by_another_admin"
	PostModerated                    EventType = "post_moderated"
	PostModeratedByAnotherAdmin      EventType = "post_moderated_by_another_admin"

	Direct        EventType = "direct"
	DirectComment EventType = "direct_comment"
)

// Category is the coarse class of an event used by filters
type Category string

const (
	CategoryMention      Category = "mention"
	CategoryBan          Category = "ban"
	CategorySubscription Category = "subscription"
	CategoryGroup        Category = "group"
	CategoryDirect       Category = "direct"
)

// disposition says what to do with an event of a known type
type disposition int

const (
	render disposition = iota
	// suppressed events are known but must never reach the viewer
	suppressed
)

type entry struct {
	category    Category
	disposition disposition
	format      func(*sentence, Resolved, env)
}

// AllEventTypes lists every known event type
func AllEventTypes() []EventType {
	types := make([]EventType, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	return types
}

// Classify returns the category of an event type; false for unknown types
func Classify(t EventType) (Category, bool) {
	e, ok := registry[t]
	if !ok {
		return "", false
	}
	return e.category, true
}

// Suppressed reports whether events of type t are known but never shown
func Suppressed(t EventType) bool {
	e, ok := registry[t]
	return ok && e.disposition == suppressed
}
