package models

import "time"

// SubscriptionRequest is a request to subscribe to a private feed.
// When GroupID is set it is a request to join that group.
type SubscriptionRequest struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   string    `json:"senderId" gorm:"index"`
	ReceiverID string    `json:"receiverId" gorm:"index"`
	GroupID    string    `json:"groupId,omitempty" gorm:"index"`
	Status     string    `json:"status" gorm:"type:varchar(20);default:'pending'"` // pending, accepted, rejected
	CreatedAt  time.Time `json:"createdAt"`
}

// GroupAdmin marks a user as an administrator of a group
type GroupAdmin struct {
	GroupID string `json:"groupId" gorm:"primaryKey;type:varchar(36)"`
	UserID  string `json:"userId" gorm:"primaryKey;type:varchar(36)"`
}

// CreateGroupRequest defines the request body for creating a group
type CreateGroupRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=35,alphanum"`
	ScreenName   string `json:"screenName" validate:"required,min=3,max=100"`
	Description  string `json:"description" validate:"descmax"`
	IsPrivate    string `json:"isPrivate" validate:"oneof=0 1"`
	IsProtected  string `json:"isProtected" validate:"oneof=0 1"`
	IsRestricted string `json:"isRestricted" validate:"oneof=0 1"`
}

// NewCreateGroupRequest returns a form with every privacy flag off
func NewCreateGroupRequest() CreateGroupRequest {
	return CreateGroupRequest{IsPrivate: FlagOff, IsProtected: FlagOff, IsRestricted: FlagOff}
}
