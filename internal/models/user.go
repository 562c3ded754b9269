package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// UserType distinguishes personal feeds from group feeds
type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeGroup UserType = "group"
)

// Privacy flags are kept as "0"/"1" strings, the way the API reports them
const (
	FlagOff = "0"
	FlagOn  = "1"
)

// UnknownUsername is substituted for authors missing from a snapshot
const UnknownUsername = "-unknown-"

// User is the owner of a feed: either a person or a group
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:35"`
	ScreenName   string    `json:"screenName" gorm:"size:100"`
	Type         UserType  `json:"type" gorm:"size:10;index"`
	IsPrivate    string    `json:"isPrivate" gorm:"size:1;default:'0'"`
	IsProtected  string    `json:"isProtected" gorm:"size:1;default:'0'"`
	IsRestricted string    `json:"isRestricted" gorm:"size:1;default:'0'"`
	Description  string    `json:"description"`
	FirebaseUID  string    `json:"-" gorm:"index"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Requests holds pending join requests; only filled for groups the viewer administers
	Requests []User `json:"requests,omitempty" gorm:"-"`
}

// IsGroup reports whether the user is a group feed
func (u User) IsGroup() bool {
	return u.Type == UserTypeGroup
}

// LastActivity is UpdatedAt, or CreatedAt when the user was never updated
func (u User) LastActivity() time.Time {
	if u.UpdatedAt.IsZero() {
		return u.CreatedAt
	}
	return u.UpdatedAt
}

// UserCompact is the minimal user shape embedded into other view records
type UserCompact struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	ScreenName string   `json:"screenName"`
	Type       UserType `json:"type,omitempty"`
}

// ToCompact strips a user down to its display fields
func (u User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, ScreenName: u.ScreenName, Type: u.Type}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// CreateLocalUserRequest registers a user who signs in with a password
type CreateLocalUserRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=35,alphanum"`
	ScreenName string `json:"screenName" validate:"required,min=3,max=100"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
}

// SignInRequest is a username and password sign in
type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest registers a Firebase account the first time it signs in
type FirebaseLoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=35,alphanum"`
}
