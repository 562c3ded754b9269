package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// Request statuses
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
)

// SubscriptionRequestRepository defines the interface for subscription and
// group join requests
type SubscriptionRequestRepository interface {
	SendRequest(req *models.SubscriptionRequest) error
	GetPendingSenders(receiverID string) ([]models.User, error)
	GetPendingGroupSenders(groupIDs []string) (map[string][]models.User, error)
}

// PostgresSubscriptionRequestRepository implements SubscriptionRequestRepository for PostgreSQL
type PostgresSubscriptionRequestRepository struct {
	db *gorm.DB
}

// NewPostgresSubscriptionRequestRepository creates a new PostgresSubscriptionRequestRepository
func NewPostgresSubscriptionRequestRepository(db *gorm.DB) *PostgresSubscriptionRequestRepository {
	return &PostgresSubscriptionRequestRepository{db: db}
}

// SendRequest creates a new pending request
func (r *PostgresSubscriptionRequestRepository) SendRequest(req *models.SubscriptionRequest) error {
	var existing models.SubscriptionRequest
	err := r.db.Where("sender_id = ? AND receiver_id = ? AND group_id = ?", req.SenderID, req.ReceiverID, req.GroupID).
		First(&existing).Error
	switch {
	case err == nil && existing.Status == RequestPending:
		return fmt.Errorf("a pending request already exists")
	case err == nil && existing.Status == RequestAccepted:
		return fmt.Errorf("request was already accepted")
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	req.Status = RequestPending
	return r.db.Create(req).Error
}

// GetPendingSenders retrieves users waiting for receiverID to accept their
// subscription request
func (r *PostgresSubscriptionRequestRepository) GetPendingSenders(receiverID string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("subscription_requests").Select("sender_id").
			Where("receiver_id = ? AND group_id = '' AND status = ?", receiverID, RequestPending),
	).Order("username").Find(&users).Error
	return users, err
}

// GetPendingGroupSenders retrieves the users waiting to join each group
func (r *PostgresSubscriptionRequestRepository) GetPendingGroupSenders(groupIDs []string) (map[string][]models.User, error) {
	out := make(map[string][]models.User, len(groupIDs))
	if len(groupIDs) == 0 {
		return out, nil
	}

	var requests []models.SubscriptionRequest
	if err := r.db.Where("group_id IN ? AND status = ?", groupIDs, RequestPending).
		Order("created_at").Find(&requests).Error; err != nil {
		return nil, err
	}
	senderIDs := make([]string, 0, len(requests))
	for _, req := range requests {
		senderIDs = append(senderIDs, req.SenderID)
	}
	var senders []models.User
	if len(senderIDs) > 0 {
		if err := r.db.Where("id IN ?", senderIDs).Find(&senders).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[string]models.User, len(senders))
	for _, u := range senders {
		byID[u.ID] = u
	}
	for _, req := range requests {
		if u, ok := byID[req.SenderID]; ok {
			out[req.GroupID] = append(out[req.GroupID], u)
		}
	}
	return out, nil
}
