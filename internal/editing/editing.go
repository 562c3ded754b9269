// Package editing checks post edit drafts and group creation forms before
// they are submitted.
package editing

import (
	"errors"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/postview"
	"github.com/anonto42/nano-midea/feedview/internal/privacy"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
	"github.com/anonto42/nano-midea/feedview/validators"
)

// ErrPostNotFound is returned when the edited post is not in the snapshot
var ErrPostNotFound = errors.New("post not found")

// StructValidator is satisfied by validators.Validator and echo.Validator
type StructValidator interface {
	Validate(i any) error
}

// Draft is the client's pending edit of a post
type Draft struct {
	Text               string   `json:"text" validate:"notblank"`
	Destinations       []string `json:"destinations" validate:"min=1"`
	Attachments        []string `json:"attachments"`
	Order              []string `json:"order,omitempty"`
	AttachmentsLoading bool     `json:"attachmentsLoading"`
}

// Check is the verdict on a draft
type Check struct {
	CanSubmit         bool            `json:"canSubmit"`
	Problems          []string        `json:"problems,omitempty"`
	EmptyDestinations bool            `json:"emptyDestinations"`
	Privacy           privacy.Privacy `json:"privacy"`
	PrivacyWarning    string          `json:"privacyWarning,omitempty"`
	Attachments       []string        `json:"attachments"`
	DropzoneDisabled  bool            `json:"dropzoneDisabled"`
}

// Editor checks drafts against a snapshot
type Editor struct {
	projector      *postview.Projector
	validate       StructValidator
	maxAttachments int
}

func NewEditor(projector *postview.Projector, validate StructValidator, maxAttachments int) *Editor {
	return &Editor{projector: projector, validate: validate, maxAttachments: maxAttachments}
}

// Check evaluates a draft of postID. Submission is allowed when the text is
// not blank, destinations are chosen, no upload is in flight and the post is
// not being saved already.
func (e *Editor) Check(snap *snapshot.Snapshot, postID string, d Draft) (Check, error) {
	view, ok := e.projector.Project(snap, postID)
	if !ok {
		return Check{}, ErrPostNotFound
	}

	res := Check{EmptyDestinations: len(d.Destinations) == 0}

	atts := NewAttachments(e.maxAttachments)
	for _, id := range d.Attachments {
		if err := atts.Add(id); err != nil {
			res.Problems = append(res.Problems, "attachments: "+err.Error())
			break
		}
	}
	if d.Order != nil {
		atts.Reorder(d.Order)
	}
	res.Attachments = atts.IDs()
	res.DropzoneDisabled = atts.Full()

	res.Problems = append(res.Problems, validators.Problems(e.validate.Validate(d))...)
	res.CanSubmit = len(res.Problems) == 0 && !d.AttachmentsLoading && !view.IsSaving

	res.Privacy = privacy.Destinations(d.Destinations, snap)
	if !view.IsDirect {
		res.PrivacyWarning = privacy.Warning(view.Privacy, res.Privacy)
	}
	return res, nil
}

// FormStatus is the state of a group creation request
type FormStatus string

const (
	FormIdle    FormStatus = ""
	FormLoading FormStatus = "loading"
	FormSuccess FormStatus = "success"
	FormError   FormStatus = "error"
)

// CanSubmitGroup reports whether a new group creation may start
func CanSubmitGroup(status FormStatus) bool {
	return status != FormLoading
}

// CheckGroup validates a group creation form
func (e *Editor) CheckGroup(req models.CreateGroupRequest) []string {
	return validators.Problems(e.validate.Validate(req))
}
