package repositories

import (
	"context"

	"github.com/nekidaem/blogfeed/internal/models"
	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	Reader[models.Subscription]
	Writer[models.Subscription]
	Remover[models.Subscription]
	UserScoped[models.Subscription]
	Get(ctx context.Context, userID, blogID uint) (*models.Subscription, error)
}

type PostgresSubscriptionRepository struct {
	userLinkRepository[models.Subscription]
}

func NewPostgresSubscriptionRepository(db *gorm.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{userLinkRepository[models.Subscription]{
		gormRepository: gormRepository[models.Subscription]{db: db},
		targetColumn:   "blog_id",
	}}
}
