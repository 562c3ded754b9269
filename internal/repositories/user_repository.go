package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// UserRepository defines the interface for user and group data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
	GetUsersByIDs(ids []string) ([]models.User, error)
	GetUsersByUsernames(usernames []string) ([]models.User, error)
	GetManagedGroups(userID string) ([]models.User, error)
	AddGroupAdmin(groupID, userID string) error
	GetViewerSettings(userID string) (*models.ViewerSettings, error)
	GetSettingsByUserIDs(ids []string) ([]models.ViewerSettings, error)
	SaveViewerSettings(settings *models.ViewerSettings) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user or group in PostgreSQL
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Type == "" {
		user.Type = models.UserTypeUser
	}
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user or group by its username
func (r *PostgresUserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users with the given ids; unknown ids are skipped
func (r *PostgresUserRepository) GetUsersByIDs(ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUsersByUsernames retrieves the users with the given usernames
func (r *PostgresUserRepository) GetUsersByUsernames(usernames []string) ([]models.User, error) {
	var users []models.User
	if len(usernames) == 0 {
		return users, nil
	}
	if err := r.db.Where("username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetManagedGroups retrieves the groups administered by userID
func (r *PostgresUserRepository) GetManagedGroups(userID string) ([]models.User, error) {
	var groups []models.User
	err := r.db.Where("id IN (?) AND type = ?",
		r.db.Table("group_admins").Select("group_id").Where("user_id = ?", userID),
		models.UserTypeGroup,
	).Order("username").Find(&groups).Error
	return groups, err
}

// AddGroupAdmin makes userID an administrator of groupID
func (r *PostgresUserRepository) AddGroupAdmin(groupID, userID string) error {
	return r.db.Create(&models.GroupAdmin{GroupID: groupID, UserID: userID}).Error
}

// GetViewerSettings retrieves the settings of userID. A user who never saved
// any gets empty settings, which decode to the default preferences.
func (r *PostgresUserRepository) GetViewerSettings(userID string) (*models.ViewerSettings, error) {
	var settings models.ViewerSettings
	err := r.db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.ViewerSettings{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetSettingsByUserIDs retrieves the stored settings of several users
func (r *PostgresUserRepository) GetSettingsByUserIDs(ids []string) ([]models.ViewerSettings, error) {
	var settings []models.ViewerSettings
	if len(ids) == 0 {
		return settings, nil
	}
	if err := r.db.Where("user_id IN ?", ids).Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveViewerSettings creates or replaces the settings of a user
func (r *PostgresUserRepository) SaveViewerSettings(settings *models.ViewerSettings) error {
	return r.db.Save(settings).Error
}
