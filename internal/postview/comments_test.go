package postview

import (
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// thread builds a post "p" by alice with one comment per author, one minute apart
func thread(authors ...string) (models.Post, []models.Comment) {
	post := models.Post{ID: "p", CreatedBy: "alice", PostedTo: []string{"alice-posts"}}
	var comments []models.Comment
	for i, a := range authors {
		c := models.Comment{
			ID:        fmt.Sprintf("c%d", i+1),
			PostID:    "p",
			CreatedBy: a,
			Body:      "comment",
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}
		comments = append(comments, c)
		post.Comments = append(post.Comments, c.ID)
	}
	return post, comments
}

func ids(views []CommentView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}

func flagged(views []CommentView, pick func(CommentView) bool) []string {
	var out []string
	for _, v := range views {
		if pick(v) {
			out = append(out, v.ID)
		}
	}
	return out
}

func TestWindowing(t *testing.T) {
	cases := []struct {
		name    string
		count   int
		omitted int
		want    int
	}{
		{name: "expanded", count: 5, want: 5},
		{name: "collapsed", count: 5, omitted: 3, want: 2},
		{name: "collapsed but short", count: 2, omitted: 1, want: 2},
		{name: "collapsed and empty", count: 0, omitted: 1, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authors := make([]string, tc.count)
			for i := range authors {
				authors[i] = "bob"
			}
			post, comments := thread(authors...)
			snap := base(viewerOf(person("me"))).Posts(post).Comments(comments...).Build()

			got := WindowAndHighlight(post, snap, models.PostViewState{OmittedComments: tc.omitted})
			if len(got) != tc.want {
				t.Fatalf("got %d comments, want %d", len(got), tc.want)
			}
			if tc.want == 2 && tc.count > 2 && (got[0].ID != "c1" || got[1].ID != fmt.Sprintf("c%d", tc.count)) {
				t.Fatalf("window = %v", ids(got))
			}
		})
	}
}

func TestOmitBubble(t *testing.T) {
	post, comments := thread("bob", "bob", "alice", "alice", "alice")
	comments[3].HideType = 2
	// c5 comes long after c4
	comments[4].CreatedAt = comments[3].CreatedAt.Add(OmitBubblesThreshold)

	snap := base(viewerOf(person("me"))).Posts(post).Comments(comments...).Build()
	got := flagged(WindowAndHighlight(post, snap, models.PostViewState{}), func(v CommentView) bool { return v.OmitBubble })
	if fmt.Sprint(got) != "[c2]" {
		t.Fatalf("omitted bubbles = %v, want [c2]", got)
	}

	v := viewerOf(person("me"))
	v.Preferences.Comments.OmitRepeatedBubbles = false
	snap = base(v).Posts(post).Comments(comments...).Build()
	if got := flagged(WindowAndHighlight(post, snap, models.PostViewState{}), func(v CommentView) bool { return v.OmitBubble }); got != nil {
		t.Fatalf("preference off, omitted bubbles = %v", got)
	}
}

func TestOmitBubbleSkipsMissingComments(t *testing.T) {
	post, comments := thread("bob", "alice", "bob")
	// c2 is not loaded, so c3 directly follows c1
	snap := base(viewerOf(person("me"))).Posts(post).Comments(comments[0], comments[2]).Build()
	got := WindowAndHighlight(post, snap, models.PostViewState{})
	if len(got) != 2 || !got[1].OmitBubble {
		t.Fatalf("comments = %v, second omitBubble=%v", ids(got), len(got) == 2 && got[1].OmitBubble)
	}
}

func TestHighlight(t *testing.T) {
	post, comments := thread("bob", "james", "bob", "james", "bob")

	cases := []struct {
		name      string
		highlight models.CommentHighlight
		omitted   int
		prefOff   bool
		want      string
	}{
		{name: "none", want: "[]"},
		{name: "by author", highlight: models.CommentHighlight{PostID: "p", Author: "james"}, want: "[c2 c4]"},
		{name: "two arrows back", highlight: models.CommentHighlight{PostID: "p", BaseCommentID: "c5", Arrows: 2}, want: "[c3]"},
		{name: "no arrows", highlight: models.CommentHighlight{PostID: "p", BaseCommentID: "c5"}, want: "[]"},
		{name: "before the first comment", highlight: models.CommentHighlight{PostID: "p", BaseCommentID: "c2", Arrows: 3}, want: "[]"},
		{name: "unknown base", highlight: models.CommentHighlight{PostID: "p", BaseCommentID: "zz", Arrows: 1}, want: "[]"},
		{name: "other post", highlight: models.CommentHighlight{PostID: "other", Author: "james"}, want: "[]"},
		{name: "preference off", highlight: models.CommentHighlight{PostID: "p", Author: "james"}, prefOff: true, want: "[]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := viewerOf(person("me"))
			v.Preferences.Comments.HighlightComments = !tc.prefOff
			snap := base(v).Posts(post).Comments(comments...).Highlight(tc.highlight).Build()

			got := flagged(WindowAndHighlight(post, snap, models.PostViewState{OmittedComments: tc.omitted}),
				func(v CommentView) bool { return v.Highlighted })
			if fmt.Sprint(got) != tc.want {
				t.Fatalf("highlighted = %v, want %s", got, tc.want)
			}
		})
	}
}

func TestHighlightedFromURL(t *testing.T) {
	post, comments := thread("bob", "james", "bob")
	snap := base(viewerOf(person("me"))).Posts(post).Comments(comments...).
		Location(models.Location{Path: "/alice/p", Hash: "#comment-c2"}).
		Build()

	got := flagged(WindowAndHighlight(post, snap, models.PostViewState{}), func(v CommentView) bool { return v.HighlightedFromURL })
	if fmt.Sprint(got) != "[c2]" {
		t.Fatalf("highlighted from url = %v", got)
	}
}

func TestCommentPermissions(t *testing.T) {
	post, comments := thread("me", "bob")

	snap := base(viewerOf(person("me"))).Posts(post).Comments(comments...).Build()
	views := WindowAndHighlight(post, snap, models.PostViewState{})
	if !views[0].IsEditable || !views[0].IsDeletable || views[1].IsEditable || views[1].IsDeletable {
		t.Fatalf("plain viewer: %+v", views)
	}

	post.PostedTo = append(post.PostedTo, "cats-posts")
	snap = base(viewerOf(person("me"))).Posts(post).Comments(comments...).
		ManagedGroups(group("cats", "")).
		Build()
	views = WindowAndHighlight(post, snap, models.PostViewState{})
	if views[1].IsEditable || !views[1].IsDeletable {
		t.Fatalf("moderator: %+v", views[1])
	}
}

func TestCommentDetails(t *testing.T) {
	post, comments := thread("bob", "ghost")
	snap := base(viewerOf(person("me"))).Posts(post).Comments(comments...).
		CommentLikes("c1", "alice", "nobody", "james").
		CommentEditState("c1", models.CommentEditState{IsEditing: true}).
		Build()

	views := WindowAndHighlight(post, snap, models.PostViewState{})
	if views[0].User == nil || views[0].User.Username != "bob" {
		t.Fatalf("c1 author = %+v", views[0].User)
	}
	if views[1].User != nil {
		t.Fatalf("unknown author should be nil, got %+v", views[1].User)
	}
	if len(views[0].LikedBy) != 2 || !views[0].IsEditing {
		t.Fatalf("c1 likes=%d editing=%v", len(views[0].LikedBy), views[0].IsEditing)
	}
}

func TestProjectUsesWindowedComments(t *testing.T) {
	post, comments := thread("bob", "bob", "bob", "bob")
	snap := base(viewerOf(person("me"))).Posts(post).Comments(comments...).
		ViewState("p", models.PostViewState{OmittedComments: 2}).
		Build()

	v := project(t, snap, "p")
	if fmt.Sprint(ids(v.Comments)) != "[c1 c4]" || v.CommentsCount != 4 {
		t.Fatalf("comments = %v count=%d", ids(v.Comments), v.CommentsCount)
	}
}
