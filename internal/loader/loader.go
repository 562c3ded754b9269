// Package loader reads everything a view needs from the databases and the
// UI state store and seals it into a snapshot.
package loader

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/postview"
	"github.com/anonto42/nano-midea/feedview/internal/privacy"
	"github.com/anonto42/nano-midea/feedview/internal/repositories"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
	"github.com/anonto42/nano-midea/feedview/internal/viewstate"
)

// ErrNotVisible is returned for posts the viewer may not read
var ErrNotVisible = errors.New("post is not visible to the viewer")

// Repositories are the stores a Loader reads from
type Repositories struct {
	Users         repositories.UserRepository
	Subscriptions repositories.SubscriptionRepository
	Requests      repositories.SubscriptionRequestRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	CommentLikes  repositories.CommentLikeRepository
	Likes         repositories.LikeRepository
	Marks         repositories.SavedPostRepository
	Attachments   repositories.AttachmentRepository
	Events        repositories.NotificationRepository
}

// StateReader reads the viewer's UI state; viewstate.RedisStore implements it
type StateReader interface {
	PostStates(ctx context.Context, viewerID string, postIDs []string) (map[string]models.PostViewState, error)
	Highlight(ctx context.Context, viewerID string) (models.CommentHighlight, error)
}

type Loader struct {
	repos  Repositories
	states StateReader
}

func New(repos Repositories, states StateReader) *Loader {
	return &Loader{repos: repos, states: states}
}

// Viewer loads the signed-in user with settings and subscribers. An empty
// userID gives the anonymous viewer.
func (l *Loader) Viewer(userID string) (models.Viewer, error) {
	v := models.Viewer{Preferences: models.DefaultFrontendPreferences()}
	if userID == "" {
		return v, nil
	}

	user, err := l.repos.Users.GetUserByID(userID)
	if err != nil {
		return v, fmt.Errorf("load viewer: %w", err)
	}
	settings, err := l.repos.Users.GetViewerSettings(userID)
	if err != nil {
		return v, fmt.Errorf("load viewer settings: %w", err)
	}
	prefs, err := settings.FrontendPreferences()
	if err != nil {
		return v, err
	}
	subscribers, err := l.repos.Subscriptions.GetSubscribers(userID)
	if err != nil {
		return v, fmt.Errorf("load subscribers: %w", err)
	}

	v.User = *user
	v.Preferences = prefs
	v.IsNSFWVisible = settings.IsNSFWVisible
	v.UnreadNotificationsNumber = settings.UnreadNotificationsNumber
	v.UnreadDirectsNumber = settings.UnreadDirectsNumber
	v.Subscribers = subscribers
	return v, nil
}

// Page selects a slice of a paginated list; Page starts at 1
type Page struct {
	Page  int
	Limit int
}

func (p Page) skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// Feed loads the viewer's home feed: posts in the feeds the viewer follows,
// their own posts and directs. Anonymous viewers get every public post.
// The returned ids keep the feed order.
func (l *Loader) Feed(ctx context.Context, viewer models.Viewer, page Page, loc models.Location) (*snapshot.Snapshot, []string, error) {
	req := request{viewer: viewer, location: loc}
	var posts []models.Post
	var err error
	if viewer.Authenticated() {
		following, ferr := l.repos.Subscriptions.GetFollowingIDs(viewer.ID)
		if ferr != nil {
			return nil, nil, fmt.Errorf("load following: %w", ferr)
		}
		req.following, req.followingLoaded = following, true
		feedIDs, ferr := l.repos.Subscriptions.GetFeedIDs(append(following, viewer.ID), "Posts")
		if ferr != nil {
			return nil, nil, fmt.Errorf("load feeds: %w", ferr)
		}
		directs, ferr := l.repos.Subscriptions.GetFeedIDs([]string{viewer.ID}, models.DirectsFeed)
		if ferr != nil {
			return nil, nil, fmt.Errorf("load directs feed: %w", ferr)
		}
		posts, err = l.repos.Posts.GetPostsInFeeds(ctx, append(feedIDs, directs...), page.skip(), int64(page.Limit))
	} else {
		posts, err = l.repos.Posts.GetAllPosts(ctx, page.skip(), int64(page.Limit))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load posts: %w", err)
	}

	req.posts = posts
	snap, err := l.build(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if visible(snap, p.ID) {
			ids = append(ids, p.ID)
		}
	}
	return snap, ids, nil
}

// Post loads a single post
func (l *Loader) Post(ctx context.Context, viewer models.Viewer, postID string, loc models.Location) (*snapshot.Snapshot, error) {
	post, err := l.repos.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	snap, err := l.build(ctx, request{viewer: viewer, location: loc, posts: []models.Post{*post}})
	if err != nil {
		return nil, err
	}
	if !visible(snap, postID) {
		return nil, ErrNotVisible
	}
	return snap, nil
}

// Notifications loads a page of the viewer's events, narrowed to eventTypes
// when not empty, and everything the events refer to
func (l *Loader) Notifications(ctx context.Context, viewer models.Viewer, eventTypes []string, page Page) (*snapshot.Snapshot, int64, error) {
	events, total, err := l.repos.Events.GetByRecipientID(viewer.ID, eventTypes, page.Page, page.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("load notification events: %w", err)
	}

	var postIDs []string
	for _, ev := range events {
		if ev.PostID != "" {
			postIDs = append(postIDs, ev.PostID)
		}
	}
	posts, err := l.repos.Posts.GetPostsByIDs(ctx, uniq(postIDs))
	if err != nil {
		return nil, 0, fmt.Errorf("load event posts: %w", err)
	}

	snap, err := l.build(ctx, request{viewer: viewer, posts: posts, events: events})
	return snap, total, err
}

// Groups loads the groups the viewer belongs to or administers
func (l *Loader) Groups(ctx context.Context, viewer models.Viewer) (*snapshot.Snapshot, error) {
	return l.build(ctx, request{viewer: viewer})
}

// Profile loads the user called username for the user card
func (l *Loader) Profile(ctx context.Context, viewer models.Viewer, username string) (*snapshot.Snapshot, error) {
	return l.build(ctx, request{viewer: viewer, usernames: []string{username}})
}

type request struct {
	viewer    models.Viewer
	location  models.Location
	posts     []models.Post
	events    []models.NotificationEvent
	usernames []string

	following       []string
	followingLoaded bool
}

func (l *Loader) build(ctx context.Context, req request) (*snapshot.Snapshot, error) {
	viewer := req.viewer
	b := snapshot.NewBuilder(viewer).Location(req.location).Events(req.events...)

	posts := slices.Clone(req.posts)
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	comments, err := l.repos.Comments.GetCommentsByPostIDs(postIDs)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	var eventCommentIDs []string
	for _, ev := range req.events {
		if ev.CommentID != "" {
			eventCommentIDs = append(eventCommentIDs, ev.CommentID)
		}
	}
	eventComments, err := l.repos.Comments.GetCommentsByIDs(uniq(eventCommentIDs))
	if err != nil {
		return nil, fmt.Errorf("load event comments: %w", err)
	}

	commentsByPost := map[string][]string{}
	commentIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		commentsByPost[c.PostID] = append(commentsByPost[c.PostID], c.ID)
		commentIDs = append(commentIDs, c.ID)
	}
	likes, err := l.repos.Likes.GetLikerIDs(postIDs)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	commentLikes, err := l.repos.CommentLikes.GetLikerIDs(commentIDs)
	if err != nil {
		return nil, fmt.Errorf("load comment likes: %w", err)
	}

	var subIDs, attIDs []string
	userIDs := []string{}
	for i := range posts {
		posts[i].Comments = commentsByPost[posts[i].ID]
		posts[i].Likes = likes[posts[i].ID]
		subIDs = append(subIDs, posts[i].PostedTo...)
		attIDs = append(attIDs, posts[i].Attachments...)
		userIDs = append(userIDs, posts[i].CreatedBy)
		userIDs = append(userIDs, posts[i].Likes...)
	}
	for _, c := range slices.Concat(comments, eventComments) {
		userIDs = append(userIDs, c.CreatedBy)
	}
	for _, ids := range commentLikes {
		userIDs = append(userIDs, ids...)
	}
	for _, ev := range req.events {
		userIDs = append(userIDs, ev.UserIDs()...)
	}

	subs, err := l.repos.Subscriptions.GetSubscriptionsByIDs(uniq(subIDs))
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	for _, s := range subs {
		userIDs = append(userIDs, s.UserID)
	}

	following := req.following
	if viewer.Authenticated() && !req.followingLoaded {
		if following, err = l.repos.Subscriptions.GetFollowingIDs(viewer.ID); err != nil {
			return nil, fmt.Errorf("load following: %w", err)
		}
	}
	userIDs = append(userIDs, following...)

	users, err := l.repos.Users.GetUsersByIDs(uniq(userIDs))
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	atts, err := l.repos.Attachments.GetAttachmentsByIDs(uniq(attIDs))
	if err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}

	b.Users(users...).
		Subscriptions(subs...).
		Posts(posts...).
		Comments(comments...).
		Comments(eventComments...).
		Attachments(atts...).
		Following(following...)
	for id, likers := range commentLikes {
		b.CommentLikes(id, likers...)
	}

	if err := l.addUsernames(b, req.usernames); err != nil {
		return nil, err
	}
	if !viewer.Authenticated() {
		for _, p := range posts {
			b.ViewState(p.ID, viewstate.DefaultPostState(len(p.Comments), len(p.Likes)))
		}
		return b.Build(), nil
	}

	if err := l.addViewerData(b, viewer); err != nil {
		return nil, err
	}
	if err := l.addPostStates(ctx, b, viewer, posts); err != nil {
		return nil, err
	}
	h, err := l.states.Highlight(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	return b.Highlight(h).Build(), nil
}

// addUsernames resolves users asked for by name and whether they accept
// directs from anyone
func (l *Loader) addUsernames(b *snapshot.Builder, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}
	found, err := l.repos.Users.GetUsersByUsernames(usernames)
	if err != nil {
		return fmt.Errorf("load users by name: %w", err)
	}
	b.Users(found...)

	ids := make([]string, len(found))
	byID := make(map[string]string, len(found))
	for i, u := range found {
		ids[i] = u.ID
		byID[u.ID] = u.Username
	}
	settings, err := l.repos.Users.GetSettingsByUserIDs(ids)
	if err != nil {
		return fmt.Errorf("load directs settings: %w", err)
	}
	accepts := map[string]bool{}
	for _, s := range settings {
		accepts[byID[s.UserID]] = s.AcceptDirectsFromAll
	}
	for _, u := range found {
		b.DirectsReceiver(u.Username, accepts[u.Username])
	}
	for _, name := range usernames {
		if !slices.ContainsFunc(found, func(u models.User) bool { return u.Username == name }) {
			b.UsersNotFound(name)
		}
	}
	return nil
}

func (l *Loader) addViewerData(b *snapshot.Builder, viewer models.Viewer) error {
	managed, err := l.repos.Users.GetManagedGroups(viewer.ID)
	if err != nil {
		return fmt.Errorf("load managed groups: %w", err)
	}
	groupIDs := make([]string, len(managed))
	for i, g := range managed {
		groupIDs[i] = g.ID
	}
	requests, err := l.repos.Requests.GetPendingGroupSenders(groupIDs)
	if err != nil {
		return fmt.Errorf("load group requests: %w", err)
	}
	for i := range managed {
		managed[i].Requests = requests[managed[i].ID]
	}

	userRequests, err := l.repos.Requests.GetPendingSenders(viewer.ID)
	if err != nil {
		return fmt.Errorf("load subscription requests: %w", err)
	}
	hidden, err := l.repos.Marks.GetHiddenNames(viewer.ID)
	if err != nil {
		return fmt.Errorf("load hidden names: %w", err)
	}

	b.ManagedGroups(managed...).UserRequests(userRequests...).HiddenNames(hidden...)
	return nil
}

// addPostStates merges stored UI state with the folded default and the
// saved and hidden marks
func (l *Loader) addPostStates(ctx context.Context, b *snapshot.Builder, viewer models.Viewer, posts []models.Post) error {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	stored, err := l.states.PostStates(ctx, viewer.ID, ids)
	if err != nil {
		return err
	}
	saved, err := l.repos.Marks.GetSavedPostIDs(viewer.ID, ids)
	if err != nil {
		return fmt.Errorf("load saved posts: %w", err)
	}
	hidden, err := l.repos.Marks.GetHiddenPostIDs(viewer.ID, ids)
	if err != nil {
		return fmt.Errorf("load hidden posts: %w", err)
	}

	for _, p := range posts {
		st, ok := stored[p.ID]
		if !ok {
			st = viewstate.DefaultPostState(len(p.Comments), len(p.Likes))
		}
		st.IsSaved = saved[p.ID]
		st.IsHidden = hidden[p.ID]
		b.ViewState(p.ID, st)
	}
	return nil
}

// visible reports whether the viewer may read a post of the snapshot.
// Private posts are readable by their author, by the owner of a feed they
// were sent to, and by subscribers or admins of a non-Directs one.
func visible(snap *snapshot.Snapshot, postID string) bool {
	post, ok := snap.Post(postID)
	if !ok {
		return false
	}
	viewer := snap.Viewer()

	p := privacy.Classify(post.CreatedBy, postview.Recipients(post, snap))
	switch {
	case !p.IsProtected:
		return true
	case !viewer.Authenticated():
		return false
	case !p.IsPrivate, post.CreatedBy == viewer.ID:
		return true
	}

	for _, subID := range post.PostedTo {
		sub, ok := snap.Subscription(subID)
		if !ok {
			continue
		}
		if sub.UserID == viewer.ID {
			return true
		}
		if !sub.IsDirects() && (snap.IsFollowing(sub.UserID) || snap.IsManaged(sub.UserID)) {
			return true
		}
	}
	return false
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
