package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// AttachmentRepository defines the interface for attachment metadata
type AttachmentRepository interface {
	CreateAttachment(att *models.Attachment) error
	GetAttachmentsByIDs(ids []string) ([]models.Attachment, error)
}

// PostgresAttachmentRepository implements AttachmentRepository for PostgreSQL
type PostgresAttachmentRepository struct {
	db *gorm.DB
}

func NewPostgresAttachmentRepository(db *gorm.DB) *PostgresAttachmentRepository {
	return &PostgresAttachmentRepository{db: db}
}

func (r *PostgresAttachmentRepository) CreateAttachment(att *models.Attachment) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	return r.db.Create(att).Error
}

func (r *PostgresAttachmentRepository) GetAttachmentsByIDs(ids []string) ([]models.Attachment, error) {
	var atts []models.Attachment
	if len(ids) == 0 {
		return atts, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&atts).Error
	return atts, err
}
