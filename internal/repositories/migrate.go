package repositories

import (
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// Migrate creates or updates the PostgreSQL tables of every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ViewerSettings{},
		&models.Subscription{},
		&models.Follow{},
		&models.SubscriptionRequest{},
		&models.GroupAdmin{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Like{},
		&models.Attachment{},
		&models.SavedPost{},
		&models.HiddenPost{},
		&models.HiddenName{},
		&models.NotificationEvent{},
	)
}
