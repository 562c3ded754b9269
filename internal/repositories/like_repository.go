package repositories

import (
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// LikeRepository defines the interface for post like operations
type LikeRepository interface {
	CreateLike(like *models.Like) error
	GetLikerIDs(postIDs []string) (map[string][]string, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a new like in PostgreSQL
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// GetLikerIDs maps each post to the ids of users who liked it, newest first
func (r *PostgresLikeRepository) GetLikerIDs(postIDs []string) (map[string][]string, error) {
	out := make(map[string][]string)
	if len(postIDs) == 0 {
		return out, nil
	}
	var likes []models.Like
	if err := r.db.Where("post_id IN ?", postIDs).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	for _, l := range likes {
		out[l.PostID] = append(out[l.PostID], l.UserID)
	}
	return out, nil
}
