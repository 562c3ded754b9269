package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Read-more styles a viewer may pick
const (
	ReadMoreStyleCompact  = "compact"
	ReadMoreStyleExpanded = "expanded"
)

// CommentPreferences controls how comment threads are shown
type CommentPreferences struct {
	OmitRepeatedBubbles bool `json:"omitRepeatedBubbles"`
	HighlightComments   bool `json:"highlightComments"`
}

// FrontendPreferences are the viewer's client-side display settings
type FrontendPreferences struct {
	Comments                CommentPreferences `json:"comments"`
	AllowLinksPreview       bool               `json:"allowLinksPreview"`
	ReadMoreStyle           string             `json:"readMoreStyle"`
	HideUnreadNotifications bool               `json:"hideUnreadNotifications"`
}

// DefaultFrontendPreferences are applied when the viewer never saved any
func DefaultFrontendPreferences() FrontendPreferences {
	return FrontendPreferences{
		Comments:      CommentPreferences{OmitRepeatedBubbles: true, HighlightComments: true},
		ReadMoreStyle: ReadMoreStyleCompact,
	}
}

// ViewerSettings is the persisted per-user state behind Viewer (PostgreSQL)
type ViewerSettings struct {
	UserID                    string         `json:"userId" gorm:"primaryKey;type:varchar(36)"`
	Preferences               datatypes.JSON `json:"preferences"`
	IsNSFWVisible             bool           `json:"isNSFWVisible" gorm:"default:false"`
	UnreadNotificationsNumber int            `json:"unreadNotificationsNumber"`
	UnreadDirectsNumber       int            `json:"unreadDirectsNumber"`
	AcceptDirectsFromAll      bool           `json:"acceptDirectsFromAll" gorm:"default:false"`
}

// FrontendPreferences decodes the stored preferences over the defaults
func (s ViewerSettings) FrontendPreferences() (FrontendPreferences, error) {
	prefs := DefaultFrontendPreferences()
	if len(s.Preferences) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(s.Preferences, &prefs); err != nil {
		return prefs, fmt.Errorf("decode frontend preferences: %w", err)
	}
	return prefs, nil
}

// Viewer is the signed-in user the views are derived for
type Viewer struct {
	User
	Preferences               FrontendPreferences `json:"frontendPreferences"`
	IsNSFWVisible             bool                `json:"isNSFWVisible"`
	UnreadNotificationsNumber int                 `json:"unreadNotificationsNumber"`
	UnreadDirectsNumber       int                 `json:"unreadDirectsNumber"`
	Subscribers               []User              `json:"subscribers"`
}

// Authenticated reports whether the viewer is signed in
func (v Viewer) Authenticated() bool {
	return v.ID != ""
}

// PostViewState holds ephemeral per-post UI flags (Redis).
// OmittedComments/OmittedLikes are non-zero while the lists are collapsed.
type PostViewState struct {
	OmittedComments      int    `json:"omittedComments"`
	OmittedLikes         int    `json:"omittedLikes"`
	IsEditing            bool   `json:"isEditing"`
	IsSaving             bool   `json:"isSaving"`
	IsCommenting         bool   `json:"isCommenting"`
	IsModeratingComments bool   `json:"isModeratingComments"`
	IsHidden             bool   `json:"isHidden"`
	IsSaved              bool   `json:"isSaved"`
	IsLiking             bool   `json:"isLiking"`
	LikeError            string `json:"likeError,omitempty"`

	// what the post looked like when the in-flight like or save was sent
	LikedWhenSent bool      `json:"likedWhenSent,omitempty"`
	SavingFrom    time.Time `json:"savingFrom,omitzero"`
}

// Settled drops in-flight marks whose outcome the loaded post already shows.
// A like settles once the viewer's like differs from when it was sent, a
// save once the post was updated after it was sent.
func (st PostViewState) Settled(post Post, viewerID string) PostViewState {
	if st.IsLiking && slices.Contains(post.Likes, viewerID) != st.LikedWhenSent {
		st.IsLiking = false
	}
	if st.IsSaving && post.UpdatedAt.After(st.SavingFrom) {
		st.IsSaving = false
		st.IsEditing = false
	}
	return st
}

// CommentEditState holds ephemeral per-comment editing flags
type CommentEditState struct {
	IsEditing    bool   `json:"isEditing"`
	IsSaving     bool   `json:"isSaving"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// CommentHighlight is set by navigation gestures over a comment thread
type CommentHighlight struct {
	PostID        string `json:"postId"`
	Author        string `json:"author,omitempty"`
	Arrows        int    `json:"arrows"`
	BaseCommentID string `json:"baseCommentId,omitempty"`
}

// Location is the client's current path, query and hash
type Location struct {
	Path  string            `json:"path"`
	Query map[string]string `json:"query,omitempty"`
	Hash  string            `json:"hash,omitempty"`
}

// CommentID extracts the id out of a "#comment-<id>" hash
func (l Location) CommentID() string {
	if l.Hash == "" {
		return ""
	}
	return strings.Replace(l.Hash, "#comment-", "", 1)
}
