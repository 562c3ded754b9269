// Package privacy computes whether a post, or a set of destinations a post
// is about to be sent to, is private or protected.
package privacy

import (
	"fmt"
	"slices"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/snapshot"
)

// Privacy flags of a post. Every private post is also protected.
type Privacy struct {
	IsPrivate   bool `json:"isPrivate"`
	IsProtected bool `json:"isProtected"`
}

// Level names the privacy for humans: private, protected or public
func (p Privacy) Level() string {
	switch {
	case p.IsPrivate:
		return "private"
	case p.IsProtected:
		return "protected"
	default:
		return "public"
	}
}

// Classify computes the privacy of a post by authorID sent to recipients.
// Only the author's own feed and groups count; direct recipients do not.
// With no such recipient the post is private and protected.
func Classify(authorID string, recipients []models.User) Privacy {
	qualifying := func(r models.User) bool {
		return r.ID == authorID || r.IsGroup()
	}
	isPrivate := !slices.ContainsFunc(recipients, func(r models.User) bool {
		return qualifying(r) && r.IsPrivate == models.FlagOff
	})
	isProtected := isPrivate || !slices.ContainsFunc(recipients, func(r models.User) bool {
		return qualifying(r) && r.IsProtected == models.FlagOff
	})
	return Privacy{IsPrivate: isPrivate, IsProtected: isProtected}
}

// Destinations computes the privacy of a non-direct post sent to destNames.
// Candidate destinations are the viewer's own feed and every group of the snapshot.
func Destinations(destNames []string, snap *snapshot.Snapshot) Privacy {
	dests := append([]models.User{snap.Viewer().User}, snap.Groups()...)
	p := Privacy{IsPrivate: true, IsProtected: true}
	for _, d := range dests {
		if !slices.Contains(destNames, d.Username) {
			continue
		}
		p.IsPrivate = p.IsPrivate && d.IsPrivate == models.FlagOn
		p.IsProtected = p.IsProtected && d.IsProtected == models.FlagOn
	}
	return p
}

// Warning describes a privacy downgrade from current to next, or returns ""
// when next is at least as restrictive.
func Warning(current, next Privacy) string {
	if (current.IsPrivate && !next.IsPrivate) || (current.IsProtected && !next.IsProtected) {
		return fmt.Sprintf("This action will make this %s post %s.", current.Level(), next.Level())
	}
	return ""
}
