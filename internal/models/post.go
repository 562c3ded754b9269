package models

import "time"

// Post represents a feed post stored in MongoDB.
// Comments and Likes live in PostgreSQL and are attached when a snapshot is loaded.
type Post struct {
	ID               string    `json:"id" bson:"_id"`
	CreatedBy        string    `json:"createdBy" bson:"created_by"`
	Body             string    `json:"body" bson:"body"`
	PostedTo         []string  `json:"postedTo" bson:"posted_to"`
	Attachments      []string  `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CommentsDisabled bool      `json:"commentsDisabled" bson:"comments_disabled"`
	CreatedAt        time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updated_at"`

	Comments []string `json:"comments" bson:"-"`
	Likes    []string `json:"likes" bson:"-"`
}

// Attachment is a media file attached to a post
type Attachment struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MediaType    string    `json:"mediaType" gorm:"size:10"` // image, video, audio, general
	FileName     string    `json:"fileName"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CreatedBy    string    `json:"createdBy" gorm:"index"`
	CreatedAt    time.Time `json:"createdAt"`
}
