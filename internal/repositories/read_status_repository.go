package repositories

import (
	"context"

	"github.com/nekidaem/blogfeed/internal/models"
	"gorm.io/gorm"
)

// ReadStatusRepository defines the interface for read status operations
type ReadStatusRepository interface {
	Reader[models.ReadStatus]
	Writer[models.ReadStatus]
	Remover[models.ReadStatus]
	UserScoped[models.ReadStatus]
	Get(ctx context.Context, userID, postID uint) (*models.ReadStatus, error)
}

type PostgresReadStatusRepository struct {
	userLinkRepository[models.ReadStatus]
}

func NewPostgresReadStatusRepository(db *gorm.DB) *PostgresReadStatusRepository {
	return &PostgresReadStatusRepository{userLinkRepository[models.ReadStatus]{
		gormRepository: gormRepository[models.ReadStatus]{db: db},
		targetColumn:   "post_id",
	}}
}
