package models

import "time"

// SavedPost represents a bookmarked/saved post by a user
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"index;uniqueIndex:idx_user_post_save"`
	PostID    string    `json:"postId" gorm:"index;uniqueIndex:idx_user_post_save"`
	CreatedAt time.Time `json:"createdAt"`
}

// HiddenName is a user or group name whose posts the viewer has hidden
type HiddenName struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   string `json:"userId" gorm:"index;uniqueIndex:idx_user_hidden_name"`
	Username string `json:"username" gorm:"uniqueIndex:idx_user_hidden_name"`
}

// HiddenPost is a post the user removed from their feeds
type HiddenPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"index;uniqueIndex:idx_user_post_hide"`
	PostID    string    `json:"postId" gorm:"uniqueIndex:idx_user_post_hide"`
	CreatedAt time.Time `json:"createdAt"`
}
