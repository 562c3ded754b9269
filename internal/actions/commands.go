// Package actions accepts presentation commands. UI-only commands change
// the viewer's UI state directly; everything else is checked against the
// viewer's snapshot and handed to a Dispatcher.
package actions

import (
	"time"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// Type names a command
type Type string

// Commands forwarded to the dispatcher
const (
	Like                    Type = "like"
	Unlike                  Type = "unlike"
	Save                    Type = "save"
	Unsave                  Type = "unsave"
	Hide                    Type = "hide"
	Unhide                  Type = "unhide"
	HideByName              Type = "hide_by_name"
	UnhideByName            Type = "unhide_by_name"
	SaveEdit                Type = "save_edit"
	DeletePost              Type = "delete_post"
	EnableComments          Type = "enable_comments"
	DisableComments         Type = "disable_comments"
	DeleteComment           Type = "delete_comment"
	Subscribe               Type = "subscribe"
	Unsubscribe             Type = "unsubscribe"
	SendSubscriptionRequest Type = "send_subscription_request"
	Ban                     Type = "ban"
	Unban                   Type = "unban"
	AcceptGroupRequest      Type = "accept_group_request"
	RejectGroupRequest      Type = "reject_group_request"
	CreateGroup             Type = "create_group"
)

// Commands applied to the UI state store
const (
	ShowMoreComments         Type = "show_more_comments"
	ShowMoreLikes            Type = "show_more_likes"
	ToggleEditing            Type = "toggle_editing"
	CancelEdit               Type = "cancel_edit"
	ToggleCommenting         Type = "toggle_commenting"
	ToggleModeratingComments Type = "toggle_moderating_comments"
	HighlightComments        Type = "highlight_comments"
	ClearHighlight           Type = "clear_highlight"
)

// Command is a request from the presentation layer. Which fields are
// required depends on Type.
type Command struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type" validate:"required"`
	ViewerID  string    `json:"viewerId"`
	IssuedAt  time.Time `json:"issuedAt"`
	PostID    string    `json:"postId,omitempty" validate:"omitempty,max=64"`
	CommentID string    `json:"commentId,omitempty" validate:"omitempty,max=64"`
	Username  string    `json:"username,omitempty" validate:"omitempty,max=35"`
	GroupName string    `json:"groupName,omitempty" validate:"omitempty,max=35"`

	Body         string   `json:"body,omitempty"`
	Attachments  []string `json:"attachments,omitempty" validate:"omitempty,dive,required"`
	Destinations []string `json:"destinations,omitempty" validate:"omitempty,dive,required"`

	// highlight_comments
	Author        string `json:"author,omitempty"`
	BaseCommentID string `json:"baseCommentId,omitempty"`
	Arrows        int    `json:"arrows,omitempty" validate:"gte=0"`

	Group *models.CreateGroupRequest `json:"group,omitempty"`
}

// need lists the fields a command type requires
type need uint8

const (
	needPost need = 1 << iota
	needComment
	needUsername
	needGroup
	needBody
)

type rule struct {
	needs     need
	ephemeral bool
}

var rules = map[Type]rule{
	Like:                    {needs: needPost},
	Unlike:                  {needs: needPost},
	Save:                    {needs: needPost},
	Unsave:                  {needs: needPost},
	Hide:                    {needs: needPost},
	Unhide:                  {needs: needPost},
	HideByName:              {needs: needUsername},
	UnhideByName:            {needs: needUsername},
	SaveEdit:                {needs: needPost | needBody},
	DeletePost:              {needs: needPost},
	EnableComments:          {needs: needPost},
	DisableComments:         {needs: needPost},
	DeleteComment:           {needs: needPost | needComment},
	Subscribe:               {needs: needUsername},
	Unsubscribe:             {needs: needUsername},
	SendSubscriptionRequest: {needs: needUsername},
	Ban:                     {needs: needUsername},
	Unban:                   {needs: needUsername},
	AcceptGroupRequest:      {needs: needGroup | needUsername},
	RejectGroupRequest:      {needs: needGroup | needUsername},
	CreateGroup:             {},

	ShowMoreComments:         {needs: needPost, ephemeral: true},
	ShowMoreLikes:            {needs: needPost, ephemeral: true},
	ToggleEditing:            {needs: needPost, ephemeral: true},
	CancelEdit:               {needs: needPost, ephemeral: true},
	ToggleCommenting:         {needs: needPost, ephemeral: true},
	ToggleModeratingComments: {needs: needPost, ephemeral: true},
	HighlightComments:        {needs: needPost, ephemeral: true},
	ClearHighlight:           {ephemeral: true},
}

// Known reports whether t is a command type
func Known(t Type) bool {
	_, ok := rules[t]
	return ok
}

// Ephemeral reports whether t only changes UI state
func Ephemeral(t Type) bool {
	return rules[t].ephemeral
}

func (c Command) missing(n need) []string {
	var out []string
	check := func(flag need, field, value string) {
		if n&flag != 0 && value == "" {
			out = append(out, field+": required")
		}
	}
	check(needPost, "postId", c.PostID)
	check(needComment, "commentId", c.CommentID)
	check(needUsername, "username", c.Username)
	check(needGroup, "groupName", c.GroupName)
	check(needBody, "body", c.Body)
	return out
}
