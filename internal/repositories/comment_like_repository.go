package repositories

import (
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// CommentLikeRepository defines the interface for comment like operations
type CommentLikeRepository interface {
	CreateCommentLike(like *models.CommentLike) error
	GetLikerIDs(commentIDs []string) (map[string][]string, error)
}

type postgresCommentLikeRepository struct {
	db *gorm.DB
}

func NewPostgresCommentLikeRepository(db *gorm.DB) CommentLikeRepository {
	return &postgresCommentLikeRepository{db: db}
}

func (r *postgresCommentLikeRepository) CreateCommentLike(like *models.CommentLike) error {
	return r.db.Create(like).Error
}

// GetLikerIDs maps each comment to the ids of users who liked it, newest first
func (r *postgresCommentLikeRepository) GetLikerIDs(commentIDs []string) (map[string][]string, error) {
	out := make(map[string][]string)
	if len(commentIDs) == 0 {
		return out, nil
	}
	var likes []models.CommentLike
	if err := r.db.Where("comment_id IN ?", commentIDs).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	for _, l := range likes {
		out[l.CommentID] = append(out[l.CommentID], l.UserID)
	}
	return out, nil
}
