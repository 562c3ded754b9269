package models

import "time"

// NotificationEvent is a single record of the viewer's event feed (PostgreSQL).
// The *ID fields are joined against a snapshot when the feed is rendered.
type NotificationEvent struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecipientID    string    `json:"-" gorm:"index"`
	EventType      string    `json:"event_type" gorm:"size:50;index"`
	Date           time.Time `json:"date" gorm:"index"`
	CreatedUserID  string    `json:"created_user_id,omitempty"`
	AffectedUserID string    `json:"affected_user_id,omitempty"`
	GroupID        string    `json:"group_id,omitempty"`
	PostID         string    `json:"post_id,omitempty"`
	PostAuthorID   string    `json:"post_author_id,omitempty"`
	CommentID      string    `json:"comment_id,omitempty"`
}

// UserIDs lists the user ids the event references, empty ones included
func (e NotificationEvent) UserIDs() []string {
	return []string{e.CreatedUserID, e.AffectedUserID, e.GroupID, e.PostAuthorID}
}
