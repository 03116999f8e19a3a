//go:build integration
// +build integration

package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nekidaem/blogfeed/internal/database"
	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type repos struct {
	dsn           string
	users         *repositories.PostgresUserRepository
	blogs         *repositories.PostgresBlogRepository
	posts         *repositories.PostgresPostRepository
	subscriptions *repositories.PostgresSubscriptionRepository
	readStatuses  *repositories.PostgresReadStatusRepository
}

// setupTestDB starts PostgreSQL, applies the migrations and returns the repositories.
func setupTestDB(t *testing.T) repos {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blogfeed"),
		postgres.WithUsername("blogfeed"),
		postgres.WithPassword("blogfeed"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(connStr))

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return repos{
		dsn:           connStr,
		users:         repositories.NewPostgresUserRepository(db),
		blogs:         repositories.NewPostgresBlogRepository(db),
		posts:         repositories.NewPostgresPostRepository(db),
		subscriptions: repositories.NewPostgresSubscriptionRepository(db),
		readStatuses:  repositories.NewPostgresReadStatusRepository(db),
	}
}

func createUser(t *testing.T, r repos, name string) (*models.User, *models.Blog) {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@x.com", FirstName: "F", LastName: "L"}
	b := &models.Blog{Title: models.FirstBlogTitle(name)}
	require.NoError(t, r.users.CreateWithBlog(context.Background(), u, b))
	return u, b
}

func ids(posts []models.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestPostgresRepositories(t *testing.T) {
	r := setupTestDB(t)
	ctx := context.Background()

	alice, aliceBlog := createUser(t, r, "alice")
	bob, _ := createUser(t, r, "bob")

	t.Run("first blog belongs to the new user", func(t *testing.T) {
		blogs, err := r.blogs.GetByUserID(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, blogs, 1)
		assert.Equal(t, "User's blog alice", blogs[0].Title)
	})

	t.Run("duplicate username is rejected by the schema and rolled back", func(t *testing.T) {
		before, err := r.blogs.Count(ctx)
		require.NoError(t, err)

		err = r.users.CreateWithBlog(ctx,
			&models.User{Username: "alice", Email: "new@x.com", FirstName: "F", LastName: "L"},
			&models.Blog{Title: "dup"})
		assert.Error(t, err)

		after, err := r.blogs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	var posts []models.Post
	for i := 0; i < 6; i++ {
		p := models.Post{BlogID: aliceBlog.ID, Title: "post"}
		require.NoError(t, r.posts.Create(ctx, &p))
		posts = append(posts, p)
	}
	require.NoError(t, r.subscriptions.Create(ctx, &models.Subscription{UserID: bob.ID, BlogID: aliceBlog.ID}))
	for _, p := range posts[:2] {
		require.NoError(t, r.readStatuses.Create(ctx, &models.ReadStatus{UserID: bob.ID, PostID: p.ID}))
	}

	t.Run("feed is the disjoint union of unread and read", func(t *testing.T) {
		all, err := r.posts.GetMultiForUserFeed(ctx, bob.ID, 0, 100)
		require.NoError(t, err)
		unread, err := r.posts.GetMultiUnreadForUserFeed(ctx, bob.ID, 0, 100)
		require.NoError(t, err)
		read, err := r.posts.GetMultiReadForUserFeed(ctx, bob.ID, 0, 100)
		require.NoError(t, err)

		assert.Len(t, all, 6)
		assert.ElementsMatch(t, ids(all), append(ids(unread), ids(read)...))
		assert.ElementsMatch(t, []uint{posts[0].ID, posts[1].ID}, ids(read))

		readIDs, err := r.posts.GetReadPostIDs(ctx, bob.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, ids(read), readIDs)
	})

	t.Run("a user without read marks sees everything as unread", func(t *testing.T) {
		carol, _ := createUser(t, r, "carol")
		require.NoError(t, r.subscriptions.Create(ctx, &models.Subscription{UserID: carol.ID, BlogID: aliceBlog.ID}))

		unread, err := r.posts.CountUserFeed(ctx, carol.ID, repositories.FeedUnread)
		require.NoError(t, err)
		assert.EqualValues(t, 6, unread)
		read, err := r.posts.CountUserFeed(ctx, carol.ID, repositories.FeedRead)
		require.NoError(t, err)
		assert.Zero(t, read)
	})

	t.Run("pages are contiguous", func(t *testing.T) {
		all, err := r.posts.GetMultiForBlog(ctx, aliceBlog.ID, 0, 100)
		require.NoError(t, err)
		first, err := r.posts.GetMultiForBlog(ctx, aliceBlog.ID, 0, 4)
		require.NoError(t, err)
		second, err := r.posts.GetMultiForBlog(ctx, aliceBlog.ID, 4, 4)
		require.NoError(t, err)
		assert.Equal(t, ids(all), append(ids(first), ids(second)...))
		assert.Equal(t, posts[5].ID, all[0].ID)
	})

	t.Run("duplicate subscription violates the unique key", func(t *testing.T) {
		assert.Error(t, r.subscriptions.Create(ctx, &models.Subscription{UserID: bob.ID, BlogID: aliceBlog.ID}))
	})

	t.Run("deleting the owner keeps the blog", func(t *testing.T) {
		dave, daveBlog := createUser(t, r, "dave")
		require.NoError(t, r.users.Remove(ctx, dave))

		blog, err := r.blogs.GetByID(ctx, daveBlog.ID)
		require.NoError(t, err)
		assert.Nil(t, blog.UserID)
	})

	t.Run("deleting a blog cascades to posts and subscriptions", func(t *testing.T) {
		require.NoError(t, r.blogs.Remove(ctx, aliceBlog))

		count, err := r.posts.CountForBlog(ctx, aliceBlog.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		subs, err := r.subscriptions.GetMultiForUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, subs)

		_, err = r.users.GetByID(ctx, alice.ID)
		assert.NoError(t, err)

		assert.ErrorIs(t, r.blogs.Remove(ctx, aliceBlog), repositories.ErrNotFound)
	})

	t.Run("rollback drops the schema and migrate restores it", func(t *testing.T) {
		require.NoError(t, database.Rollback(r.dsn))

		_, err := r.users.GetByID(ctx, alice.ID)
		require.Error(t, err)
		assert.False(t, errors.Is(err, repositories.ErrNotFound))

		require.NoError(t, database.Migrate(r.dsn))

		_, err = r.users.GetByID(ctx, alice.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
