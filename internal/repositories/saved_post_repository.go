package repositories

import (
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// SavedPostRepository defines the interface for the per-user marks on posts:
// saved posts, hidden posts and hidden names
type SavedPostRepository interface {
	SavePost(savedPost *models.SavedPost) error
	HidePost(hidden *models.HiddenPost) error
	HideName(hidden *models.HiddenName) error
	GetSavedPostIDs(userID string, postIDs []string) (map[string]bool, error)
	GetHiddenPostIDs(userID string, postIDs []string) (map[string]bool, error)
	GetHiddenNames(userID string) ([]string, error)
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

func (r *PostgresSavedPostRepository) SavePost(savedPost *models.SavedPost) error {
	return r.db.Create(savedPost).Error
}

func (r *PostgresSavedPostRepository) HidePost(hidden *models.HiddenPost) error {
	return r.db.Create(hidden).Error
}

func (r *PostgresSavedPostRepository) HideName(hidden *models.HiddenName) error {
	return r.db.Create(hidden).Error
}

func (r *PostgresSavedPostRepository) GetSavedPostIDs(userID string, postIDs []string) (map[string]bool, error) {
	return r.markedPostIDs(&models.SavedPost{}, userID, postIDs)
}

func (r *PostgresSavedPostRepository) GetHiddenPostIDs(userID string, postIDs []string) (map[string]bool, error) {
	return r.markedPostIDs(&models.HiddenPost{}, userID, postIDs)
}

func (r *PostgresSavedPostRepository) markedPostIDs(model any, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 || userID == "" {
		return result, nil
	}
	var ids []string
	if err := r.db.Model(model).Where("user_id = ? AND post_id IN ?", userID, postIDs).Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// GetHiddenNames retrieves the user and group names whose posts userID hid
func (r *PostgresSavedPostRepository) GetHiddenNames(userID string) ([]string, error) {
	var names []string
	err := r.db.Model(&models.HiddenName{}).Where("user_id = ?", userID).Order("username").Pluck("username", &names).Error
	return names, err
}
