package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentsByPostIDs(postIDs []string) ([]models.Comment, error)
	GetCommentsByIDs(ids []string) ([]models.Comment, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	return r.db.Create(comment).Error
}

// GetCommentsByPostIDs retrieves the comments of several posts, oldest first
func (r *PostgresCommentRepository) GetCommentsByPostIDs(postIDs []string) ([]models.Comment, error) {
	var comments []models.Comment
	if len(postIDs) == 0 {
		return comments, nil
	}
	if err := r.db.Where("post_id IN ?", postIDs).Order("created_at, id").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// GetCommentsByIDs retrieves comments by id; unknown ids are skipped
func (r *PostgresCommentRepository) GetCommentsByIDs(ids []string) ([]models.Comment, error) {
	var comments []models.Comment
	if len(ids) == 0 {
		return comments, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
