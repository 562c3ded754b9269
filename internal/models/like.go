package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"postId" gorm:"index;uniqueIndex:idx_post_user_like"` // MongoDB post id
	UserID    string    `json:"userId" gorm:"index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
