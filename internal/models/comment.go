package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `json:"postId" gorm:"index"`    // ID of the post the comment belongs to (MongoDB id)
	CreatedBy string    `json:"createdBy" gorm:"index"` // ID of the user who made the comment
	Body      string    `json:"body"`
	HideType  int       `json:"hideType" gorm:"default:0"` // non-zero for hidden/deleted placeholders
	CreatedAt time.Time `json:"createdAt" gorm:"index"`

	Likes int `json:"likes" gorm:"-"`
}

// IsHidden reports whether the comment carries a hide marker
func (c Comment) IsHidden() bool {
	return c.HideType != 0
}
