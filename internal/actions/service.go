package actions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/anonto42/nano-midea/feedview/internal/metrics"
	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/postview"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
	"github.com/anonto42/nano-midea/feedview/validators"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrUnauthenticated  = errors.New("sign in required")
	ErrNotFound         = errors.New("target not found")
	ErrNotAllowed       = errors.New("action not allowed in the current state")
	ErrDispatchRejected = errors.New("command could not be dispatched")
)

// InvalidError lists the problems of a malformed command
type InvalidError struct {
	Problems []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid command: %v", e.Problems)
}

// StateStore is the UI state storage; viewstate.RedisStore implements it
type StateStore interface {
	UpdatePostState(ctx context.Context, viewerID, postID string, initial models.PostViewState, fn func(*models.PostViewState) error) (models.PostViewState, error)
	SetHighlight(ctx context.Context, viewerID string, h models.CommentHighlight) error
	ClearHighlight(ctx context.Context, viewerID string) error
}

// Dispatcher hands commands to whatever performs the server call
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) error
}

// StructValidator is satisfied by validators.Validator
type StructValidator interface {
	Validate(i any) error
}

// Result describes what executing a command did
type Result struct {
	CommandID  string                   `json:"commandId,omitempty"`
	Dispatched bool                     `json:"dispatched"`
	PostState  *models.PostViewState    `json:"postState,omitempty"`
	Highlight  *models.CommentHighlight `json:"highlight,omitempty"`
}

// Service validates commands against the viewer's snapshot
type Service struct {
	store      StateStore
	dispatcher Dispatcher
	projector  *postview.Projector
	validate   StructValidator
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(store StateStore, dispatcher Dispatcher, projector *postview.Projector, validate StructValidator, m *metrics.Metrics) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		projector:  projector,
		validate:   validate,
		metrics:    m,
		now:        time.Now,
	}
}

// Execute runs cmd for the snapshot's viewer
func (s *Service) Execute(ctx context.Context, snap *snapshot.Snapshot, cmd Command) (Result, error) {
	res, err := s.execute(ctx, snap, cmd)
	s.metrics.Command(string(cmd.Type), outcome(res, err))
	return res, err
}

func outcome(res Result, err error) string {
	var invalid *InvalidError
	switch {
	case err == nil && res.Dispatched:
		return "dispatched"
	case err == nil:
		return "applied"
	case errors.As(err, &invalid), errors.Is(err, ErrUnknownCommand):
		return "invalid"
	case errors.Is(err, ErrNotAllowed), errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthenticated):
		return "rejected"
	default:
		return "failed"
	}
}

func (s *Service) execute(ctx context.Context, snap *snapshot.Snapshot, cmd Command) (Result, error) {
	r, ok := rules[cmd.Type]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	viewer := snap.Viewer()
	if !viewer.Authenticated() {
		return Result{}, ErrUnauthenticated
	}

	problems := validators.Problems(s.validate.Validate(cmd))
	problems = append(problems, cmd.missing(r.needs)...)
	if cmd.Type == CreateGroup {
		if cmd.Group == nil {
			problems = append(problems, "group: required")
		}
	}
	if cmd.Type == SaveEdit && len(cmd.Destinations) == 0 {
		problems = append(problems, "destinations: min=1")
	}
	if len(problems) > 0 {
		return Result{}, &InvalidError{Problems: problems}
	}

	cmd.ViewerID = viewer.ID

	var view *postview.PostView
	if r.needs&needPost != 0 {
		if view, ok = s.projector.Project(snap, cmd.PostID); !ok {
			return Result{}, fmt.Errorf("%w: post %s", ErrNotFound, cmd.PostID)
		}
	}
	if err := allowed(snap, view, cmd); err != nil {
		return Result{}, err
	}

	if r.ephemeral {
		return s.apply(ctx, snap, cmd)
	}
	return s.dispatch(ctx, snap, cmd)
}

// allowed checks cmd against what the viewer currently sees
func allowed(snap *snapshot.Snapshot, view *postview.PostView, cmd Command) error {
	viewer := snap.Viewer()
	deny := func(reason string) error {
		return fmt.Errorf("%w: %s", ErrNotAllowed, reason)
	}

	switch cmd.Type {
	case Like:
		if !view.CanLike || view.ViewerLiked || view.IsLiking {
			return deny("post cannot be liked")
		}
	case Unlike:
		if !view.CanLike || !view.ViewerLiked || view.IsLiking {
			return deny("post is not liked")
		}
	case Save, Unsave:
		if view.IsSaved == (cmd.Type == Save) {
			return deny("post save state unchanged")
		}
	case Hide, Unhide:
		if view.IsHidden == (cmd.Type == Hide) {
			return deny("post hide state unchanged")
		}
	case SaveEdit:
		if !view.IsEditable || view.IsSaving {
			return deny("post cannot be saved now")
		}
	case ToggleEditing, CancelEdit, EnableComments, DisableComments:
		if !view.IsEditable {
			return deny("only the author can do this")
		}
	case DeletePost:
		if !view.HasMoreMenu {
			return deny("post cannot be deleted")
		}
	case ToggleModeratingComments:
		if !view.IsModeratable {
			return deny("comments cannot be moderated")
		}
	case ToggleCommenting:
		if !view.CanComment {
			return deny("commenting is unavailable")
		}
	case DeleteComment:
		c, ok := snap.Comment(cmd.CommentID)
		if !ok || c.PostID != cmd.PostID {
			return fmt.Errorf("%w: comment %s", ErrNotFound, cmd.CommentID)
		}
		if c.CreatedBy != viewer.ID && !view.IsModeratable {
			return deny("comment cannot be deleted")
		}
	case Subscribe, Unsubscribe, SendSubscriptionRequest, Ban, Unban:
		if cmd.Username == viewer.Username {
			return deny("cannot target yourself")
		}
	case AcceptGroupRequest, RejectGroupRequest:
		g, ok := snap.UserByName(cmd.GroupName)
		if !ok || !g.IsGroup() {
			return fmt.Errorf("%w: group %s", ErrNotFound, cmd.GroupName)
		}
		if !snap.IsManaged(g.ID) {
			return deny("group is not administered by you")
		}
	}
	return nil
}

func (s *Service) apply(ctx context.Context, snap *snapshot.Snapshot, cmd Command) (Result, error) {
	viewerID := snap.Viewer().ID

	switch cmd.Type {
	case HighlightComments:
		h := models.CommentHighlight{PostID: cmd.PostID, Author: cmd.Author, Arrows: cmd.Arrows, BaseCommentID: cmd.BaseCommentID}
		if err := s.store.SetHighlight(ctx, viewerID, h); err != nil {
			return Result{}, err
		}
		return Result{Highlight: &h}, nil
	case ClearHighlight:
		if err := s.store.ClearHighlight(ctx, viewerID); err != nil {
			return Result{}, err
		}
		return Result{}, nil
	}

	st, err := s.updatePost(ctx, snap, cmd.PostID, func(st *models.PostViewState) error {
		switch cmd.Type {
		case ShowMoreComments:
			st.OmittedComments = 0
		case ShowMoreLikes:
			st.OmittedLikes = 0
		case ToggleEditing:
			st.IsEditing = !st.IsEditing
		case CancelEdit:
			st.IsEditing = false
			st.IsSaving = false
		case ToggleCommenting:
			st.IsCommenting = !st.IsCommenting
		case ToggleModeratingComments:
			st.IsModeratingComments = !st.IsModeratingComments
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{PostState: &st}, nil
}

// pending marks the in-flight flag of commands that have one, remembering
// the post as it was so a later snapshot can tell when the command landed
func pending(t Type, post models.Post, viewerID string) func(*models.PostViewState, bool) {
	switch t {
	case SaveEdit:
		return func(st *models.PostViewState, on bool) {
			st.IsSaving = on
			st.SavingFrom = post.UpdatedAt
		}
	case Like, Unlike:
		return func(st *models.PostViewState, on bool) {
			st.IsLiking = on
			st.LikeError = ""
			st.LikedWhenSent = slices.Contains(post.Likes, viewerID)
		}
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, snap *snapshot.Snapshot, cmd Command) (Result, error) {
	cmd.ID = uuid.NewString()
	cmd.IssuedAt = s.now()
	res := Result{CommandID: cmd.ID}

	post, _ := snap.Post(cmd.PostID)
	mark := pending(cmd.Type, post, cmd.ViewerID)
	if mark != nil {
		st, err := s.updatePost(ctx, snap, cmd.PostID, func(st *models.PostViewState) error {
			mark(st, true)
			return nil
		})
		if err != nil {
			return Result{}, err
		}
		res.PostState = &st
	}

	if err := s.dispatcher.Dispatch(ctx, cmd); err != nil {
		if mark != nil {
			// clear the flag so the viewer can retry
			if _, rerr := s.updatePost(ctx, snap, cmd.PostID, func(st *models.PostViewState) error {
				mark(st, false)
				return nil
			}); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}
		return Result{}, fmt.Errorf("%w: %w", ErrDispatchRejected, err)
	}
	res.Dispatched = true
	return res, nil
}

// updatePost applies fn to the stored state of a post after settling the
// in-flight marks the snapshot shows as done
func (s *Service) updatePost(ctx context.Context, snap *snapshot.Snapshot, postID string, fn func(*models.PostViewState) error) (models.PostViewState, error) {
	viewerID := snap.Viewer().ID
	post, _ := snap.Post(postID)
	return s.store.UpdatePostState(ctx, viewerID, postID, snap.ViewState(postID), func(st *models.PostViewState) error {
		*st = st.Settled(post, viewerID)
		return fn(st)
	})
}
