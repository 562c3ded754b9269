package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// FeedNames are the subscriptions every user and group owns
var FeedNames = []string{"Posts", "Comments", "Likes", models.DirectsFeed}

// SubscriptionRepository defines the interface for feeds and follows
type SubscriptionRepository interface {
	CreateFeeds(userID string) ([]models.Subscription, error)
	GetSubscriptionsByIDs(ids []string) ([]models.Subscription, error)
	GetFeedIDs(userIDs []string, names ...string) ([]string, error)
	CreateFollow(follow *models.Follow) error
	GetSubscribers(userID string) ([]models.User, error)
	GetFollowingIDs(userID string) ([]string, error)
}

// PostgresSubscriptionRepository implements SubscriptionRepository for PostgreSQL
type PostgresSubscriptionRepository struct {
	db *gorm.DB
}

// NewPostgresSubscriptionRepository creates a new PostgresSubscriptionRepository
func NewPostgresSubscriptionRepository(db *gorm.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// CreateFeeds creates the standard feeds of a new user
func (r *PostgresSubscriptionRepository) CreateFeeds(userID string) ([]models.Subscription, error) {
	subs := make([]models.Subscription, len(FeedNames))
	for i, name := range FeedNames {
		subs[i] = models.Subscription{ID: uuid.NewString(), UserID: userID, Name: name}
	}
	if err := r.db.Create(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *PostgresSubscriptionRepository) GetSubscriptionsByIDs(ids []string) ([]models.Subscription, error) {
	var subs []models.Subscription
	if len(ids) == 0 {
		return subs, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&subs).Error
	return subs, err
}

// GetFeedIDs retrieves the ids of the feeds called names owned by userIDs
func (r *PostgresSubscriptionRepository) GetFeedIDs(userIDs []string, names ...string) ([]string, error) {
	var ids []string
	if len(userIDs) == 0 || len(names) == 0 {
		return ids, nil
	}
	err := r.db.Model(&models.Subscription{}).Where("user_id IN ? AND name IN ?", userIDs, names).Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresSubscriptionRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

// GetSubscribers retrieves the users subscribed to userID
func (r *PostgresSubscriptionRepository) GetSubscribers(userID string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("follows").Select("follower_id").Where("following_id = ?", userID),
	).Order("username").Find(&users).Error
	return users, err
}

// GetFollowingIDs retrieves the ids of users and groups userID is subscribed to
func (r *PostgresSubscriptionRepository) GetFollowingIDs(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}
