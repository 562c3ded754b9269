package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// NotificationRepository defines the interface for notification event operations
type NotificationRepository interface {
	CreateEvent(event *models.NotificationEvent) error
	GetByRecipientID(recipientID string, eventTypes []string, page, limit int) ([]models.NotificationEvent, int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateEvent(event *models.NotificationEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return r.db.Create(event).Error
}

// GetByRecipientID pages through the events of recipientID, newest first.
// eventTypes narrows the result when not empty.
func (r *postgresNotificationRepository) GetByRecipientID(recipientID string, eventTypes []string, page, limit int) ([]models.NotificationEvent, int64, error) {
	var events []models.NotificationEvent
	var total int64

	q := r.db.Model(&models.NotificationEvent{}).Where("recipient_id = ?", recipientID)
	if len(eventTypes) > 0 {
		q = q.Where("event_type IN ?", eventTypes)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("date DESC").Offset(offset).Limit(limit).Find(&events).Error
	return events, total, err
}
