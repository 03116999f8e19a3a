package memory

import (
	"context"
	"testing"
	"time"

	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []models.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestEqualTimestampsOrderByID(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore().WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	u := &models.User{Username: "alice", Email: "a@x.com"}
	b := &models.Blog{Title: "t"}
	require.NoError(t, store.Users().CreateWithBlog(ctx, u, b))

	var ids []uint
	for i := 0; i < 5; i++ {
		p := &models.Post{BlogID: b.ID, Title: "p"}
		require.NoError(t, store.Posts().Create(ctx, p))
		ids = append([]uint{p.ID}, ids...)
	}

	all, err := store.Posts().GetMultiForBlog(ctx, b.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, ids, postIDs(all))

	// Consecutive windows are disjoint and contiguous.
	first, _ := store.Posts().GetMultiForBlog(ctx, b.ID, 0, 2)
	second, _ := store.Posts().GetMultiForBlog(ctx, b.ID, 2, 2)
	third, _ := store.Posts().GetMultiForBlog(ctx, b.ID, 4, 2)
	assert.Equal(t, ids, append(append(postIDs(first), postIDs(second)...), postIDs(third)...))

	empty, err := store.Posts().GetMultiForBlog(ctx, b.ID, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUniqueAndForeignKeys(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	u := &models.User{Username: "alice", Email: "a@x.com"}
	b := &models.Blog{Title: "t"}
	require.NoError(t, store.Users().CreateWithBlog(ctx, u, b))

	assert.Error(t, store.Users().Create(ctx, &models.User{Username: "alice", Email: "other@x.com"}))
	assert.Error(t, store.Users().CreateWithBlog(ctx, &models.User{Username: "x", Email: "a@x.com"}, &models.Blog{Title: "t"}))
	count, _ := store.Blogs().Count(ctx)
	assert.EqualValues(t, 1, count)

	assert.Error(t, store.Posts().Create(ctx, &models.Post{BlogID: 999, Title: "p"}))
	assert.Error(t, store.Subscriptions().Create(ctx, &models.Subscription{UserID: 999, BlogID: b.ID}))
	assert.Error(t, store.ReadStatuses().Create(ctx, &models.ReadStatus{UserID: u.ID, PostID: 999}))

	require.NoError(t, store.Subscriptions().Create(ctx, &models.Subscription{UserID: u.ID, BlogID: b.ID}))
	assert.Error(t, store.Subscriptions().Create(ctx, &models.Subscription{UserID: u.ID, BlogID: b.ID}))

	_, err := store.Users().GetByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, store.Posts().Remove(ctx, &models.Post{ID: 999}), repositories.ErrNotFound)
}

func TestFeedFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "a@x.com"}
	aliceBlog := &models.Blog{Title: "a"}
	require.NoError(t, store.Users().CreateWithBlog(ctx, alice, aliceBlog))
	bob := &models.User{Username: "bob", Email: "b@x.com"}
	bobBlog := &models.Blog{Title: "b"}
	require.NoError(t, store.Users().CreateWithBlog(ctx, bob, bobBlog))

	var posts []*models.Post
	for i := 0; i < 4; i++ {
		p := &models.Post{BlogID: aliceBlog.ID, Title: "p"}
		require.NoError(t, store.Posts().Create(ctx, p))
		posts = append(posts, p)
	}
	// bob's own post is never in his feed
	require.NoError(t, store.Posts().Create(ctx, &models.Post{BlogID: bobBlog.ID, Title: "own"}))

	require.NoError(t, store.Subscriptions().Create(ctx, &models.Subscription{UserID: bob.ID, BlogID: aliceBlog.ID}))
	require.NoError(t, store.ReadStatuses().Create(ctx, &models.ReadStatus{UserID: bob.ID, PostID: posts[1].ID}))

	all, _ := store.Posts().GetMultiForUserFeed(ctx, bob.ID, 0, 10)
	unread, _ := store.Posts().GetMultiUnreadForUserFeed(ctx, bob.ID, 0, 10)
	read, _ := store.Posts().GetMultiReadForUserFeed(ctx, bob.ID, 0, 10)

	assert.Equal(t, []uint{posts[3].ID, posts[2].ID, posts[1].ID, posts[0].ID}, postIDs(all))
	assert.Equal(t, []uint{posts[3].ID, posts[2].ID, posts[0].ID}, postIDs(unread))
	assert.Equal(t, []uint{posts[1].ID}, postIDs(read))

	readIDs, _ := store.Posts().GetReadPostIDs(ctx, bob.ID)
	assert.Equal(t, []uint{posts[1].ID}, readIDs)

	n, _ := store.Posts().CountUserFeed(ctx, bob.ID, repositories.FeedUnread)
	assert.EqualValues(t, 3, n)

	// alice has no subscriptions and therefore an empty feed
	aliceFeed, _ := store.Posts().GetMultiForUserFeed(ctx, alice.ID, 0, 10)
	assert.Empty(t, aliceFeed)
}

func TestCascades(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "a@x.com"}
	aliceBlog := &models.Blog{Title: "a"}
	require.NoError(t, store.Users().CreateWithBlog(ctx, alice, aliceBlog))
	bob := &models.User{Username: "bob", Email: "b@x.com"}
	require.NoError(t, store.Users().CreateWithBlog(ctx, bob, &models.Blog{Title: "b"}))

	post := &models.Post{BlogID: aliceBlog.ID, Title: "p"}
	require.NoError(t, store.Posts().Create(ctx, post))
	require.NoError(t, store.Subscriptions().Create(ctx, &models.Subscription{UserID: bob.ID, BlogID: aliceBlog.ID}))
	require.NoError(t, store.ReadStatuses().Create(ctx, &models.ReadStatus{UserID: bob.ID, PostID: post.ID}))

	// Deleting bob removes his links only.
	require.NoError(t, store.Users().Remove(ctx, bob))
	subs, _ := store.Subscriptions().Count(ctx)
	reads, _ := store.ReadStatuses().Count(ctx)
	assert.Zero(t, subs)
	assert.Zero(t, reads)

	// Deleting alice orphans her blog.
	require.NoError(t, store.Users().Remove(ctx, alice))
	blog, err := store.Blogs().GetByID(ctx, aliceBlog.ID)
	require.NoError(t, err)
	assert.Nil(t, blog.UserID)

	// Deleting the blog removes its posts.
	require.NoError(t, store.Blogs().Remove(ctx, blog))
	_, err = store.Posts().GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
