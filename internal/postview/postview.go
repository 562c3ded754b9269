// Package postview joins a post with the rest of a snapshot into the view
// model a feed renders: author, recipients, privacy, permissions, comments
// and likes.
package postview

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/anonto42/nano-midea/feedview/internal/diagnostics"
	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/privacy"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// MaxLikes is how many likers are listed while the likes list is collapsed
const MaxLikes = 4

// RecipientView is a recipient as shown in the post header.
// Label overrides the display name and is empty for everyone but the author.
type RecipientView struct {
	models.UserCompact
	Label string `json:"label,omitempty"`
}

// PostView is a fully resolved post
type PostView struct {
	ID               string      `json:"id"`
	Body             string      `json:"body"`
	CreatedAt        time.Time   `json:"createdAt"`
	CreatedBy        models.User `json:"createdBy"`
	CommentsDisabled bool        `json:"commentsDisabled"`

	Recipients        []models.User   `json:"recipients"`
	DisplayRecipients []RecipientView `json:"displayRecipients"`
	RecipientNames    []string        `json:"recipientNames"`
	HiddenByNames     []string        `json:"hiddenByNames"`

	Attachments    []models.Attachment `json:"attachments"`
	Comments       []CommentView       `json:"comments"`
	CommentsCount  int                 `json:"commentsCount"`
	UsersLikedPost []models.User       `json:"usersLikedPost"`
	LikesCount     int                 `json:"likesCount"`
	ViewerLiked    bool                `json:"viewerLiked"`

	models.PostViewState
	privacy.Privacy

	IsDirect         bool `json:"isDirect"`
	IsEditable       bool `json:"isEditable"`
	IsModeratable    bool `json:"isModeratable"`
	IsFullyRemovable bool `json:"isFullyRemovable"`
	IsNSFW           bool `json:"isNSFW"`

	CanComment  bool `json:"canComment"`
	CanLike     bool `json:"canLike"`
	HasMoreMenu bool `json:"hasMoreMenu"`

	AllowLinksPreview bool   `json:"allowLinksPreview"`
	ReadMoreStyle     string `json:"readMoreStyle"`
}

// Projector derives PostViews from snapshots
type Projector struct {
	reporter diagnostics.Reporter
}

func New(reporter diagnostics.Reporter) *Projector {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	return &Projector{reporter: reporter}
}

// Project resolves postID against snap. It returns false when the post is
// not part of the snapshot, which means "not loaded or deleted".
func (p *Projector) Project(snap *snapshot.Snapshot, postID string) (*PostView, bool) {
	post, ok := snap.Post(postID)
	if !ok {
		return nil, false
	}
	viewer := snap.Viewer()

	author, ok := snap.User(post.CreatedBy)
	if !ok {
		author = models.User{ID: post.CreatedBy, Username: models.UnknownUsername}
		p.reporter.CaptureMessage("unknown_post_author", "post with unknown author",
			map[string]any{"uid": post.CreatedBy, "postId": post.ID})
	}

	recipients := Recipients(post, snap)
	names := recipientNames(author, recipients)
	editable, moderatable, fullyRemovable := permissions(post, viewer, recipients, snap)
	vs := snap.ViewState(post.ID)
	prefs := viewer.Preferences

	view := &PostView{
		ID:                post.ID,
		Body:              post.Body,
		CreatedAt:         post.CreatedAt,
		CreatedBy:         author,
		CommentsDisabled:  post.CommentsDisabled,
		Recipients:        recipients,
		DisplayRecipients: displayRecipients(author, recipients),
		RecipientNames:    names,
		HiddenByNames:     hiddenByNames(names, snap.HiddenNames()),
		Attachments:       resolveAttachments(post, snap),
		Comments:          windowAndHighlight(post, snap, vs, moderatable),
		CommentsCount:     len(post.Comments),
		UsersLikedPost:    likers(post, snap, vs),
		LikesCount:        len(post.Likes),
		ViewerLiked:       viewer.Authenticated() && slices.Contains(post.Likes, viewer.ID),
		PostViewState:     vs,
		Privacy:           privacy.Classify(author.ID, recipients),
		IsDirect:          isDirect(post, snap),
		IsEditable:        editable,
		IsModeratable:     moderatable,
		IsFullyRemovable:  fullyRemovable,
		IsNSFW:            isNSFW(post, recipients, viewer),
		AllowLinksPreview: prefs.AllowLinksPreview,
		ReadMoreStyle:     prefs.ReadMoreStyle,
	}
	view.CanComment = viewer.Authenticated() && (!post.CommentsDisabled || editable || moderatable)
	view.CanLike = viewer.Authenticated() && !editable
	view.HasMoreMenu = editable || moderatable
	return view, true
}

// ProjectAll projects the given posts in order. Posts missing from the
// snapshot are skipped, and so is a post whose projection panics: one broken
// post must not take the whole feed down.
func (p *Projector) ProjectAll(snap *snapshot.Snapshot, postIDs []string) []PostView {
	views := make([]PostView, 0, len(postIDs))
	for _, id := range postIDs {
		if v, ok := p.safeProject(snap, id); ok {
			views = append(views, *v)
		}
	}
	return views
}

func (p *Projector) safeProject(snap *snapshot.Snapshot, postID string) (view *PostView, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.reporter.CaptureMessage("projection_failed", "post projection panicked",
				map[string]any{"postId": postID, "panic": fmt.Sprint(r)})
			view, ok = nil, false
		}
	}()
	return p.Project(snap, postID)
}

// Recipients maps postedTo subscriptions to their owners. The author's
// own Directs feed is not a recipient.
func Recipients(post models.Post, snap *snapshot.Snapshot) []models.User {
	recipients := make([]models.User, 0, len(post.PostedTo))
	for _, subID := range post.PostedTo {
		sub, ok := snap.Subscription(subID)
		if !ok {
			continue
		}
		if sub.UserID == post.CreatedBy && sub.IsDirects() {
			continue
		}
		if u, ok := snap.Subscriber(sub.UserID); ok {
			recipients = append(recipients, u)
		}
	}
	return recipients
}

// recipientNames returns the unique names of the author and recipients,
// author first and the rest in collation order.
func recipientNames(author models.User, recipients []models.User) []string {
	seen := map[string]struct{}{author.Username: {}}
	var rest []string
	for _, r := range recipients {
		if _, dup := seen[r.Username]; dup {
			continue
		}
		seen[r.Username] = struct{}{}
		rest = append(rest, r.Username)
	}
	collate.New(language.Und).SortStrings(rest)
	return append([]string{author.Username}, rest...)
}

func hiddenByNames(names, hidden []string) []string {
	var out []string
	for _, n := range names {
		if slices.Contains(hidden, n) {
			out = append(out, n)
		}
	}
	return out
}

func permissions(post models.Post, viewer models.Viewer, recipients []models.User, snap *snapshot.Snapshot) (editable, moderatable, fullyRemovable bool) {
	editable = viewer.Authenticated() && post.CreatedBy == viewer.ID
	managed := func(u models.User) bool { return snap.IsManaged(u.ID) }
	moderatable = editable || slices.ContainsFunc(recipients, managed)
	fullyRemovable = editable || !slices.ContainsFunc(recipients, func(u models.User) bool { return !managed(u) })
	return editable, moderatable, fullyRemovable
}

// displayRecipients drops a lone recipient that is the author's own feed and
// labels the author's feed when it is listed among others.
func displayRecipients(author models.User, recipients []models.User) []RecipientView {
	if len(recipients) == 1 && recipients[0].ID == author.ID {
		return []RecipientView{}
	}
	out := make([]RecipientView, len(recipients))
	for i, r := range recipients {
		out[i] = RecipientView{UserCompact: r.ToCompact()}
		if r.ID == author.ID {
			out[i].Label = feedLabel(r.Username)
		}
	}
	return out
}

func feedLabel(username string) string {
	if strings.HasSuffix(username, "s") {
		return username + "’ feed"
	}
	return username + "’s feed"
}

func isNSFW(post models.Post, recipients []models.User, viewer models.Viewer) bool {
	if viewer.IsNSFWVisible {
		return false
	}
	if HasNSFWTag(post.Body) {
		return true
	}
	return slices.ContainsFunc(recipients, func(r models.User) bool {
		return r.IsGroup() && HasNSFWTag(r.Description)
	})
}

func resolveAttachments(post models.Post, snap *snapshot.Snapshot) []models.Attachment {
	atts := make([]models.Attachment, 0, len(post.Attachments))
	for _, id := range post.Attachments {
		if a, ok := snap.Attachment(id); ok {
			atts = append(atts, a)
		}
	}
	return atts
}

func likers(post models.Post, snap *snapshot.Snapshot, vs models.PostViewState) []models.User {
	users := make([]models.User, 0, len(post.Likes))
	for _, id := range post.Likes {
		if u, ok := snap.User(id); ok {
			users = append(users, u)
		}
	}
	if vs.OmittedLikes != 0 && len(users) > MaxLikes {
		users = users[:MaxLikes]
	}
	return users
}

func isDirect(post models.Post, snap *snapshot.Snapshot) bool {
	return slices.ContainsFunc(post.PostedTo, func(subID string) bool {
		sub, ok := snap.Subscription(subID)
		return ok && sub.IsDirects()
	})
}
