package editing

import (
	"errors"
	"slices"
)

// ErrTooManyAttachments is returned when adding past the attachment limit
var ErrTooManyAttachments = errors.New("the maximum number of attached files has been reached")

// Attachments is the ordered attachment list of a post being edited
type Attachments struct {
	max int
	ids []string
}

// NewAttachments starts from the post's current attachments. The initial
// list may already exceed max; only additions are capped.
func NewAttachments(max int, ids ...string) *Attachments {
	a := &Attachments{max: max}
	for _, id := range ids {
		if !slices.Contains(a.ids, id) {
			a.ids = append(a.ids, id)
		}
	}
	return a
}

// Add appends an uploaded attachment
func (a *Attachments) Add(id string) error {
	if a.Full() {
		return ErrTooManyAttachments
	}
	if !slices.Contains(a.ids, id) {
		a.ids = append(a.ids, id)
	}
	return nil
}

// Remove drops an attachment; unknown ids are ignored
func (a *Attachments) Remove(id string) {
	a.ids = slices.DeleteFunc(a.ids, func(x string) bool { return x == id })
}

// Reorder moves the given ids to the front in that order. Attachments not
// mentioned keep their relative order after them; unknown ids are ignored.
func (a *Attachments) Reorder(order []string) {
	next := make([]string, 0, len(a.ids))
	for _, id := range append(slices.Clone(order), a.ids...) {
		if slices.Contains(a.ids, id) && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	a.ids = next
}

// Full reports whether no more attachments can be added
func (a *Attachments) Full() bool {
	return a.max > 0 && len(a.ids) >= a.max
}

// IDs returns the current order
func (a *Attachments) IDs() []string {
	return slices.Clone(a.ids)
}
