// Package memory implements the repository interfaces over in-process maps.
// It mirrors the PostgreSQL schema rules (unique keys, cascades, SET NULL on
// blog owners) so handlers and the digest can be exercised without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories"
)

// Store holds every table. All repositories returned by a Store share it.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextID        uint
	users         map[uint]models.User
	blogs         map[uint]models.Blog
	posts         map[uint]models.Post
	subscriptions map[uint]models.Subscription
	readStatuses  map[uint]models.ReadStatus
}

// NewStore returns an empty store stamping rows with time.Now.
func NewStore() *Store {
	return &Store{
		now:           func() time.Time { return time.Now().UTC() },
		users:         map[uint]models.User{},
		blogs:         map[uint]models.Blog{},
		posts:         map[uint]models.Post{},
		subscriptions: map[uint]models.Subscription{},
		readStatuses:  map[uint]models.ReadStatus{},
	}
}

// WithClock replaces the timestamp source; used by tests that need equal timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s} }
func (s *Store) Blogs() *BlogRepository                 { return &BlogRepository{s} }
func (s *Store) Posts() *PostRepository                 { return &PostRepository{s} }
func (s *Store) Subscriptions() *SubscriptionRepository { return &SubscriptionRepository{s} }
func (s *Store) ReadStatuses() *ReadStatusRepository    { return &ReadStatusRepository{s} }

// stamp assigns the next id and creation time. Callers hold the write lock.
func (s *Store) stamp() (uint, time.Time) {
	s.nextID++
	return s.nextID, s.now()
}

func newestFirst[T any](rows []T, key func(T) (time.Time, uint)) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, idi := key(rows[i])
		tj, idj := key(rows[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

func page[T any](rows []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if limit >= 0 && skip+limit < end {
		end = skip + limit
	}
	return rows[skip:end]
}

func values[T any](m map[uint]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func userKey(u models.User) (time.Time, uint)                 { return u.CreatedAt, u.ID }
func blogKey(b models.Blog) (time.Time, uint)                 { return b.CreatedAt, b.ID }
func postKey(p models.Post) (time.Time, uint)                 { return p.CreatedAt, p.ID }
func subscriptionKey(s models.Subscription) (time.Time, uint) { return s.CreatedAt, s.ID }
func readStatusKey(r models.ReadStatus) (time.Time, uint)     { return r.CreatedAt, r.ID }

// deleteBlogLocked removes a blog and cascades to posts and subscriptions.
func (s *Store) deleteBlogLocked(id uint) {
	delete(s.blogs, id)
	for pid, p := range s.posts {
		if p.BlogID == id {
			s.deletePostLocked(pid)
		}
	}
	for sid, sub := range s.subscriptions {
		if sub.BlogID == id {
			delete(s.subscriptions, sid)
		}
	}
}

// deletePostLocked removes a post and cascades to its read statuses.
func (s *Store) deletePostLocked(id uint) {
	delete(s.posts, id)
	for rid, rs := range s.readStatuses {
		if rs.PostID == id {
			delete(s.readStatuses, rid)
		}
	}
}

// deleteUserLocked orphans the user's blogs and cascades to subscriptions and read statuses.
func (s *Store) deleteUserLocked(id uint) {
	delete(s.users, id)
	for bid, b := range s.blogs {
		if b.OwnedBy(id) {
			b.UserID = nil
			s.blogs[bid] = b
		}
	}
	for sid, sub := range s.subscriptions {
		if sub.UserID == id {
			delete(s.subscriptions, sid)
		}
	}
	for rid, rs := range s.readStatuses {
		if rs.UserID == id {
			delete(s.readStatuses, rid)
		}
	}
}

// UserRepository is the in-memory repositories.UserRepository.
type UserRepository struct{ s *Store }

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetMulti(_ context.Context, skip, limit int) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := values(r.s.users)
	newestFirst(rows, userKey)
	return page(rows, skip, limit), nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

func (r *UserRepository) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.createLocked(u)
}

func (r *UserRepository) createLocked(u *models.User) error {
	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("duplicate key value violates unique constraint on users")
		}
	}
	u.ID, u.CreatedAt = r.s.stamp()
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Remove(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.deleteUserLocked(u.ID)
	return nil
}

func (r *UserRepository) GetByUsernameOrEmail(_ context.Context, username, email string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.User
	for _, u := range r.s.users {
		if u.Username == username || u.Email == email {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepository) CreateWithBlog(_ context.Context, u *models.User, b *models.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.createLocked(u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	owner := u.ID
	b.UserID = &owner
	b.ID, b.CreatedAt = r.s.stamp()
	r.s.blogs[b.ID] = *b
	return nil
}

// BlogRepository is the in-memory repositories.BlogRepository.
type BlogRepository struct{ s *Store }

var _ repositories.BlogRepository = (*BlogRepository)(nil)

func (r *BlogRepository) GetByID(_ context.Context, id uint) (*models.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.blogs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &b, nil
}

func (r *BlogRepository) GetMulti(_ context.Context, skip, limit int) ([]models.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := values(r.s.blogs)
	newestFirst(rows, blogKey)
	return page(rows, skip, limit), nil
}

func (r *BlogRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.blogs)), nil
}

func (r *BlogRepository) Create(_ context.Context, b *models.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.UserID != nil {
		if _, ok := r.s.users[*b.UserID]; !ok {
			return fmt.Errorf("insert on blogs violates foreign key constraint on user_id")
		}
	}
	b.ID, b.CreatedAt = r.s.stamp()
	r.s.blogs[b.ID] = *b
	return nil
}

func (r *BlogRepository) Remove(_ context.Context, b *models.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blogs[b.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.deleteBlogLocked(b.ID)
	return nil
}

func (r *BlogRepository) GetByUserID(_ context.Context, userID uint) ([]models.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Blog
	for _, b := range r.s.blogs {
		if b.OwnedBy(userID) {
			out = append(out, b)
		}
	}
	newestFirst(out, blogKey)
	return out, nil
}

// PostRepository is the in-memory repositories.PostRepository.
type PostRepository struct{ s *Store }

var _ repositories.PostRepository = (*PostRepository)(nil)

func (r *PostRepository) GetByID(_ context.Context, id uint) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *PostRepository) GetMulti(_ context.Context, skip, limit int) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := values(r.s.posts)
	newestFirst(rows, postKey)
	return page(rows, skip, limit), nil
}

func (r *PostRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.posts)), nil
}

func (r *PostRepository) Create(_ context.Context, p *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blogs[p.BlogID]; !ok {
		return fmt.Errorf("insert on posts violates foreign key constraint on blog_id")
	}
	p.ID, p.CreatedAt = r.s.stamp()
	r.s.posts[p.ID] = *p
	return nil
}

func (r *PostRepository) Remove(_ context.Context, p *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.deletePostLocked(p.ID)
	return nil
}

func (r *PostRepository) GetMultiForBlog(_ context.Context, blogID uint, skip, limit int) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.forBlogLocked(blogID)
	return page(rows, skip, limit), nil
}

func (r *PostRepository) CountForBlog(_ context.Context, blogID uint) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.forBlogLocked(blogID))), nil
}

func (r *PostRepository) forBlogLocked(blogID uint) []models.Post {
	var out []models.Post
	for _, p := range r.s.posts {
		if p.BlogID == blogID {
			out = append(out, p)
		}
	}
	newestFirst(out, postKey)
	return out
}

func (r *PostRepository) GetMultiForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error) {
	return r.GetUserFeed(ctx, userID, repositories.FeedAll, skip, limit)
}

func (r *PostRepository) GetMultiUnreadForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error) {
	return r.GetUserFeed(ctx, userID, repositories.FeedUnread, skip, limit)
}

func (r *PostRepository) GetMultiReadForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error) {
	return r.GetUserFeed(ctx, userID, repositories.FeedRead, skip, limit)
}

func (r *PostRepository) GetReadPostIDs(_ context.Context, userID uint) ([]uint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []uint
	for id := range r.readSetLocked(userID) {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *PostRepository) GetUserFeed(_ context.Context, userID uint, filter repositories.FeedFilter, skip, limit int) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.feedLocked(userID, filter), skip, limit), nil
}

func (r *PostRepository) CountUserFeed(_ context.Context, userID uint, filter repositories.FeedFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.feedLocked(userID, filter))), nil
}

func (r *PostRepository) readSetLocked(userID uint) map[uint]struct{} {
	set := map[uint]struct{}{}
	for _, rs := range r.s.readStatuses {
		if rs.UserID == userID {
			set[rs.PostID] = struct{}{}
		}
	}
	return set
}

func (r *PostRepository) feedLocked(userID uint, filter repositories.FeedFilter) []models.Post {
	subscribed := map[uint]struct{}{}
	for _, sub := range r.s.subscriptions {
		if sub.UserID == userID {
			subscribed[sub.BlogID] = struct{}{}
		}
	}
	read := r.readSetLocked(userID)

	var out []models.Post
	for _, p := range r.s.posts {
		if _, ok := subscribed[p.BlogID]; !ok {
			continue
		}
		_, isRead := read[p.ID]
		switch {
		case filter == repositories.FeedUnread && isRead:
			continue
		case filter == repositories.FeedRead && !isRead:
			continue
		}
		out = append(out, p)
	}
	newestFirst(out, postKey)
	return out
}

// SubscriptionRepository is the in-memory repositories.SubscriptionRepository.
type SubscriptionRepository struct{ s *Store }

var _ repositories.SubscriptionRepository = (*SubscriptionRepository)(nil)

func (r *SubscriptionRepository) GetByID(_ context.Context, id uint) (*models.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.subscriptions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetMulti(_ context.Context, skip, limit int) ([]models.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := values(r.s.subscriptions)
	newestFirst(rows, subscriptionKey)
	return page(rows, skip, limit), nil
}

func (r *SubscriptionRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.subscriptions)), nil
}

func (r *SubscriptionRepository) Create(_ context.Context, sub *models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[sub.UserID]; !ok {
		return fmt.Errorf("insert on subscriptions violates foreign key constraint on user_id")
	}
	if _, ok := r.s.blogs[sub.BlogID]; !ok {
		return fmt.Errorf("insert on subscriptions violates foreign key constraint on blog_id")
	}
	for _, existing := range r.s.subscriptions {
		if existing.UserID == sub.UserID && existing.BlogID == sub.BlogID {
			return fmt.Errorf("duplicate key value violates unique constraint on subscriptions")
		}
	}
	sub.ID, sub.CreatedAt = r.s.stamp()
	r.s.subscriptions[sub.ID] = *sub
	return nil
}

func (r *SubscriptionRepository) Remove(_ context.Context, sub *models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subscriptions[sub.ID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.subscriptions, sub.ID)
	return nil
}

func (r *SubscriptionRepository) Get(_ context.Context, userID, blogID uint) (*models.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sub := range r.s.subscriptions {
		if sub.UserID == userID && sub.BlogID == blogID {
			return &sub, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *SubscriptionRepository) GetMultiForUser(_ context.Context, userID uint) ([]models.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Subscription{}
	for _, sub := range r.s.subscriptions {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	newestFirst(out, subscriptionKey)
	return out, nil
}

// ReadStatusRepository is the in-memory repositories.ReadStatusRepository.
type ReadStatusRepository struct{ s *Store }

var _ repositories.ReadStatusRepository = (*ReadStatusRepository)(nil)

func (r *ReadStatusRepository) GetByID(_ context.Context, id uint) (*models.ReadStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rs, ok := r.s.readStatuses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &rs, nil
}

func (r *ReadStatusRepository) GetMulti(_ context.Context, skip, limit int) ([]models.ReadStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := values(r.s.readStatuses)
	newestFirst(rows, readStatusKey)
	return page(rows, skip, limit), nil
}

func (r *ReadStatusRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.readStatuses)), nil
}

func (r *ReadStatusRepository) Create(_ context.Context, rs *models.ReadStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[rs.UserID]; !ok {
		return fmt.Errorf("insert on read_statuses violates foreign key constraint on user_id")
	}
	if _, ok := r.s.posts[rs.PostID]; !ok {
		return fmt.Errorf("insert on read_statuses violates foreign key constraint on post_id")
	}
	for _, existing := range r.s.readStatuses {
		if existing.UserID == rs.UserID && existing.PostID == rs.PostID {
			return fmt.Errorf("duplicate key value violates unique constraint on read_statuses")
		}
	}
	rs.ID, rs.CreatedAt = r.s.stamp()
	r.s.readStatuses[rs.ID] = *rs
	return nil
}

func (r *ReadStatusRepository) Remove(_ context.Context, rs *models.ReadStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.readStatuses[rs.ID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.readStatuses, rs.ID)
	return nil
}

func (r *ReadStatusRepository) Get(_ context.Context, userID, postID uint) (*models.ReadStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rs := range r.s.readStatuses {
		if rs.UserID == userID && rs.PostID == postID {
			return &rs, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *ReadStatusRepository) GetMultiForUser(_ context.Context, userID uint) ([]models.ReadStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.ReadStatus{}
	for _, rs := range r.s.readStatuses {
		if rs.UserID == userID {
			out = append(out, rs)
		}
	}
	newestFirst(out, readStatusKey)
	return out, nil
}
