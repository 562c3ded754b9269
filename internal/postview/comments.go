package postview

import (
	"slices"
	"time"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// OmitBubblesThreshold is the longest gap between two comments of the same
// author for the second one to lose its bubble
const OmitBubblesThreshold = 10 * time.Minute

// CommentView is a comment as rendered under a post
type CommentView struct {
	models.Comment
	models.CommentEditState

	User               *models.User  `json:"user"`
	IsEditable         bool          `json:"isEditable"`
	IsDeletable        bool          `json:"isDeletable"`
	OmitBubble         bool          `json:"omitBubble"`
	Highlighted        bool          `json:"highlighted"`
	HighlightedFromURL bool          `json:"highlightedFromUrl"`
	LikedBy            []models.User `json:"likedBy"`
}

// WindowAndHighlight derives the visible comments of post. While comments are
// collapsed and there are more than two, only the first and the last remain.
func WindowAndHighlight(post models.Post, snap *snapshot.Snapshot, vs models.PostViewState) []CommentView {
	recipients := Recipients(post, snap)
	_, moderatable, _ := permissions(post, snap.Viewer(), recipients, snap)
	return windowAndHighlight(post, snap, vs, moderatable)
}

func windowAndHighlight(post models.Post, snap *snapshot.Snapshot, vs models.PostViewState, moderatable bool) []CommentView {
	viewer := snap.Viewer()
	prefs := viewer.Preferences.Comments
	fromURL := snap.Location().CommentID()
	isHighlighted := highlighter(snap, post, vs)

	views := make([]CommentView, 0, len(post.Comments))
	var prev models.Comment
	hasPrev := false
	for _, id := range post.Comments {
		c, ok := snap.Comment(id)
		if !ok {
			continue
		}
		var author *models.User
		if u, ok := snap.User(c.CreatedBy); ok {
			author = &u
		}
		editable := viewer.Authenticated() && c.CreatedBy == viewer.ID
		views = append(views, CommentView{
			Comment:            c,
			CommentEditState:   snap.CommentEditState(c.ID),
			User:               author,
			IsEditable:         editable,
			IsDeletable:        moderatable || editable,
			OmitBubble:         prefs.OmitRepeatedBubbles && vs.OmittedComments == 0 && hasPrev && repeatsBubble(prev, c),
			Highlighted:        isHighlighted(c.ID, author),
			HighlightedFromURL: fromURL != "" && c.ID == fromURL,
			LikedBy:            snap.CommentLikers(c.ID),
		})
		prev, hasPrev = c, true
	}

	if vs.OmittedComments != 0 && len(views) > 2 {
		return []CommentView{views[0], views[len(views)-1]}
	}
	return views
}

func repeatsBubble(prev, c models.Comment) bool {
	return !c.IsHidden() && !prev.IsHidden() &&
		c.CreatedBy == prev.CreatedBy &&
		c.CreatedAt.Sub(prev.CreatedAt) < OmitBubblesThreshold
}

// highlighter returns the predicate marking comments highlighted by the
// viewer's navigation: every comment of the highlighted author, plus the
// comment reached by stepping back Arrows comments from the base one.
func highlighter(snap *snapshot.Snapshot, post models.Post, vs models.PostViewState) func(commentID string, author *models.User) bool {
	h := snap.Highlight()
	if !snap.Viewer().Preferences.Comments.HighlightComments || h.PostID == "" || h.PostID != post.ID {
		return func(string, *models.User) bool { return false }
	}

	target := ""
	if base := slices.Index(post.Comments, h.BaseCommentID); base >= 0 {
		idx := base + vs.OmittedComments - h.Arrows
		if idx >= 0 && idx < base {
			target = post.Comments[idx]
		}
	}

	return func(commentID string, author *models.User) bool {
		if h.Author != "" && author != nil && author.Username == h.Author {
			return true
		}
		return target != "" && commentID == target
	}
}
