package repositories

import (
	"context"

	"github.com/nekidaem/blogfeed/internal/models"
	"gorm.io/gorm"
)

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Reader[models.Blog]
	Writer[models.Blog]
	Remover[models.Blog]
	GetByUserID(ctx context.Context, userID uint) ([]models.Blog, error)
}

// PostgresBlogRepository implements BlogRepository for PostgreSQL.
// Removing a blog cascades to its posts and subscriptions in the schema.
type PostgresBlogRepository struct {
	gormRepository[models.Blog]
}

func NewPostgresBlogRepository(db *gorm.DB) *PostgresBlogRepository {
	return &PostgresBlogRepository{gormRepository[models.Blog]{db: db}}
}

func (r *PostgresBlogRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(orderNewestFirst).
		Find(&blogs).Error
	return blogs, err
}
