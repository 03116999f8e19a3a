package repositories

import (
	"context"
	"fmt"

	"github.com/nekidaem/blogfeed/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Reader[models.User]
	Writer[models.User]
	Remover[models.User]
	GetByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error)
	CreateWithBlog(ctx context.Context, user *models.User, blog *models.Blog) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	gormRepository[models.User]
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{gormRepository[models.User]{db: db}}
}

// GetByUsernameOrEmail returns every user whose username or email matches.
func (r *PostgresUserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		Find(&users).Error
	return users, err
}

// CreateWithBlog inserts the user and its first blog in one transaction.
// blog.UserID is set to the new user's id.
func (r *PostgresUserRepository) CreateWithBlog(ctx context.Context, user *models.User, blog *models.Blog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		blog.UserID = &user.ID
		if err := tx.Create(blog).Error; err != nil {
			return fmt.Errorf("create blog for user %d: %w", user.ID, err)
		}
		return nil
	})
}
