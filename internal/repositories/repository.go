package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// orderNewestFirst is applied to every multi-row query. The id breaks ties
// between rows created within the same timestamp.
const orderNewestFirst = "created_at DESC, id DESC"

// Reader is the read side shared by every repository.
type Reader[T any] interface {
	GetByID(ctx context.Context, id uint) (*T, error)
	GetMulti(ctx context.Context, skip, limit int) ([]T, error)
	Count(ctx context.Context) (int64, error)
}

// Writer inserts new rows, filling the generated id and creation time.
type Writer[T any] interface {
	Create(ctx context.Context, obj *T) error
}

// Remover deletes a row previously fetched by the caller.
type Remover[T any] interface {
	Remove(ctx context.Context, obj *T) error
}

// UserScoped lists the rows that belong to one user.
type UserScoped[T any] interface {
	GetMultiForUser(ctx context.Context, userID uint) ([]T, error)
}

// gormRepository implements Reader, Writer and Remover for any gorm model.
type gormRepository[T any] struct {
	db *gorm.DB
}

func (r *gormRepository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var obj T
	if err := r.db.WithContext(ctx).First(&obj, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &obj, nil
}

func (r *gormRepository[T]) GetMulti(ctx context.Context, skip, limit int) ([]T, error) {
	var objs []T
	err := r.db.WithContext(ctx).
		Order(orderNewestFirst).
		Offset(skip).Limit(limit).
		Find(&objs).Error
	return objs, err
}

func (r *gormRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&count).Error
	return count, err
}

// Create runs inside gorm's default transaction, so a failed insert leaves no row.
func (r *gormRepository[T]) Create(ctx context.Context, obj *T) error {
	return r.db.WithContext(ctx).Create(obj).Error
}

func (r *gormRepository[T]) Remove(ctx context.Context, obj *T) error {
	res := r.db.WithContext(ctx).Delete(obj)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// userLinkRepository backs the join entities keyed by (user_id, <target>_id).
type userLinkRepository[T any] struct {
	gormRepository[T]
	targetColumn string
}

func (r *userLinkRepository[T]) Get(ctx context.Context, userID, targetID uint) (*T, error) {
	var obj T
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(fmt.Sprintf("%s = ?", r.targetColumn), targetID).
		First(&obj).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &obj, nil
}

func (r *userLinkRepository[T]) GetMultiForUser(ctx context.Context, userID uint) ([]T, error) {
	var objs []T
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(orderNewestFirst).
		Find(&objs).Error
	return objs, err
}
