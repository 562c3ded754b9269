package models

import "time"

// Follow is a subscription of one user to another user's feed
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  string    `json:"followerId" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID string    `json:"followingId" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Subscription is a feed of a user that posts can be addressed to
type Subscription struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string `json:"user" gorm:"index"`
	Name   string `json:"name" gorm:"size:20"` // Posts, Directs, ...
}

// DirectsFeed is the subscription name of direct-message feeds
const DirectsFeed = "Directs"

// IsDirects reports whether the subscription is a direct-message feed
func (s Subscription) IsDirects() bool {
	return s.Name == DirectsFeed
}
