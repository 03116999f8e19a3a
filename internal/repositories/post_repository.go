package repositories

import (
	"context"

	"github.com/nekidaem/blogfeed/internal/models"
	"gorm.io/gorm"
)

// FeedFilter selects which part of a user's feed to return.
type FeedFilter int

const (
	FeedAll FeedFilter = iota
	FeedUnread
	FeedRead
)

func (f FeedFilter) String() string {
	switch f {
	case FeedUnread:
		return "unread"
	case FeedRead:
		return "read"
	default:
		return "all"
	}
}

// ResolveFeedFilter combines the unread/read request flags. When neither is
// set the result is known to be empty and ok is false; callers must not query.
func ResolveFeedFilter(unread, read bool) (filter FeedFilter, ok bool) {
	switch {
	case unread && read:
		return FeedAll, true
	case unread:
		return FeedUnread, true
	case read:
		return FeedRead, true
	default:
		return FeedAll, false
	}
}

// PostRepository defines the interface for post and feed queries
type PostRepository interface {
	Reader[models.Post]
	Writer[models.Post]
	Remover[models.Post]
	GetMultiForBlog(ctx context.Context, blogID uint, skip, limit int) ([]models.Post, error)
	CountForBlog(ctx context.Context, blogID uint) (int64, error)
	GetMultiForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error)
	GetMultiUnreadForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error)
	GetMultiReadForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error)
	GetReadPostIDs(ctx context.Context, userID uint) ([]uint, error)
	GetUserFeed(ctx context.Context, userID uint, filter FeedFilter, skip, limit int) ([]models.Post, error)
	CountUserFeed(ctx context.Context, userID uint, filter FeedFilter) (int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	gormRepository[models.Post]
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{gormRepository[models.Post]{db: db}}
}

// GetMultiForBlog returns the posts of one blog, newest first.
func (r *PostgresPostRepository) GetMultiForBlog(ctx context.Context, blogID uint, skip, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("blog_id = ?", blogID).
		Order(orderNewestFirst).
		Offset(skip).Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) CountForBlog(ctx context.Context, blogID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("blog_id = ?", blogID).Count(&count).Error
	return count, err
}

// GetMultiForUserFeed returns posts of every blog the user is subscribed to.
func (r *PostgresPostRepository) GetMultiForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error) {
	return r.GetUserFeed(ctx, userID, FeedAll, skip, limit)
}

// GetMultiUnreadForUserFeed returns feed posts without a read status for the user.
func (r *PostgresPostRepository) GetMultiUnreadForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error) {
	return r.GetUserFeed(ctx, userID, FeedUnread, skip, limit)
}

// GetMultiReadForUserFeed returns feed posts the user has marked as read.
func (r *PostgresPostRepository) GetMultiReadForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error) {
	return r.GetUserFeed(ctx, userID, FeedRead, skip, limit)
}

// GetReadPostIDs returns the ids of all posts the user has read.
func (r *PostgresPostRepository) GetReadPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.readPostIDs(ctx, userID).Pluck("post_id", &ids).Error
	return ids, err
}

func (r *PostgresPostRepository) GetUserFeed(ctx context.Context, userID uint, filter FeedFilter, skip, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed(ctx, userID, filter).
		Select("posts.*").
		Order("posts.created_at DESC, posts.id DESC").
		Offset(skip).Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) CountUserFeed(ctx context.Context, userID uint, filter FeedFilter) (int64, error) {
	var count int64
	err := r.feed(ctx, userID, filter).Count(&count).Error
	return count, err
}

// feed joins posts with the user's subscriptions. The read set is applied as a
// subquery so an empty set still behaves as set exclusion/inclusion.
func (r *PostgresPostRepository) feed(ctx context.Context, userID uint, filter FeedFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN subscriptions ON subscriptions.blog_id = posts.blog_id").
		Where("subscriptions.user_id = ?", userID)

	switch filter {
	case FeedUnread:
		q = q.Where("posts.id NOT IN (?)", r.readPostIDs(ctx, userID))
	case FeedRead:
		q = q.Where("posts.id IN (?)", r.readPostIDs(ctx, userID))
	}
	return q
}

func (r *PostgresPostRepository) readPostIDs(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.ReadStatus{}).
		Select("post_id").
		Where("user_id = ?", userID)
}
