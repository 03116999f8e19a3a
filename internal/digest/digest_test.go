package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	digests []Digest
	failFor map[uint]error
}

func (n *recordingNotifier) Notify(_ context.Context, d Digest) error {
	if err := n.failFor[d.UserID]; err != nil {
		return err
	}
	n.digests = append(n.digests, d)
	return nil
}

type panickingFeed struct {
	FeedSource
	panicFor uint
}

func (f panickingFeed) GetMultiForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error) {
	if userID == f.panicFor {
		panic("boom")
	}
	return f.FeedSource.GetMultiForUserFeed(ctx, userID, skip, limit)
}

type failingUsers struct{}

func (failingUsers) GetMulti(context.Context, int, int) ([]models.User, error) {
	return nil, errors.New("connection refused")
}

// seed creates users u0..u(n-1); every user except the last subscribes to u0's blog.
func seed(t *testing.T, store *memory.Store, n, posts int) []*models.User {
	t.Helper()
	ctx := context.Background()
	users := make([]*models.User, n)
	var firstBlog *models.Blog
	for i := range users {
		u := &models.User{Username: "u" + string(rune('a'+i)), Email: string(rune('a'+i)) + "@x.com"}
		b := &models.Blog{Title: models.FirstBlogTitle(u.Username)}
		require.NoError(t, store.Users().CreateWithBlog(ctx, u, b))
		users[i] = u
		if i == 0 {
			firstBlog = b
		}
	}
	for i := 0; i < posts; i++ {
		require.NoError(t, store.Posts().Create(ctx, &models.Post{BlogID: firstBlog.ID, Title: "post " + string(rune('0'+i))}))
	}
	for _, u := range users[1 : n-1] {
		require.NoError(t, store.Subscriptions().Create(ctx, &models.Subscription{UserID: u.ID, BlogID: firstBlog.ID}))
	}
	return users
}

func TestRunnerSendsNewestPostsPerUser(t *testing.T) {
	store := memory.NewStore()
	users := seed(t, store, 4, 7)
	notifier := &recordingNotifier{}

	report, err := NewRunner(store.Users(), store.Posts(), notifier, 5).WithBatchSize(2).Run(context.Background())
	require.NoError(t, err)

	// u0 owns the blog and nobody subscribes the last user, so both get the empty marker.
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 2, report.NoSubscriptions)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 4, report.Processed())

	require.Len(t, notifier.digests, 2)
	for _, d := range notifier.digests {
		assert.NotEqual(t, users[0].ID, d.UserID)
		assert.NotEqual(t, users[3].ID, d.UserID)
		assert.Equal(t, []string{"post 6", "post 5", "post 4", "post 3", "post 2"}, d.PostTitles)
		assert.False(t, d.GeneratedAt.IsZero())
	}
}

func TestRunnerIsolatesFailingUsers(t *testing.T) {
	store := memory.NewStore()
	users := seed(t, store, 5, 2)
	notifier := &recordingNotifier{failFor: map[uint]error{users[1].ID: errors.New("smtp down")}}
	feed := panickingFeed{FeedSource: store.Posts(), panicFor: users[2].ID}

	report, err := NewRunner(store.Users(), feed, notifier, 5).WithBatchSize(3).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Failed, 2)
	failed := map[uint]error{}
	for _, f := range report.Failed {
		failed[f.UserID] = f.Err
	}
	assert.ErrorContains(t, failed[users[1].ID], "smtp down")
	assert.ErrorContains(t, failed[users[2].ID], "panic: boom")

	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 2, report.NoSubscriptions)
	require.Len(t, notifier.digests, 1)
	assert.Equal(t, users[3].ID, notifier.digests[0].UserID)
}

func TestRunnerFailsWhenUsersCannotBeListed(t *testing.T) {
	_, err := NewRunner(failingUsers{}, nil, &recordingNotifier{}, 5).Run(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestRunnerWithNoUsers(t *testing.T) {
	store := memory.NewStore()
	report, err := NewRunner(store.Users(), store.Posts(), &recordingNotifier{}, 5).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Processed())
}

func TestBuild(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	u := models.User{ID: 7, Username: "alice", Email: "alice@x.com"}

	d := Build(u, []models.Post{{Title: "a"}, {Title: "b"}}, at)
	assert.Equal(t, Digest{UserID: 7, Username: "alice", Email: "alice@x.com", PostTitles: []string{"a", "b"}, GeneratedAt: at}, d)
	assert.False(t, d.Empty())

	assert.True(t, Build(u, nil, at).Empty())
}

func TestMultiNotifierDeliversToAll(t *testing.T) {
	first := &recordingNotifier{failFor: map[uint]error{1: errors.New("first failed")}}
	second := &recordingNotifier{}
	calls := 0
	m := MultiNotifier{first, second, LogNotifier{}, NotifierFunc(func(context.Context, Digest) error {
		calls++
		return nil
	})}

	err := m.Notify(context.Background(), Digest{UserID: 1, PostTitles: []string{"x"}})
	assert.ErrorContains(t, err, "first failed")
	assert.Len(t, second.digests, 1)
	assert.Equal(t, 1, calls)

	assert.NoError(t, m.Notify(context.Background(), Digest{UserID: 2, PostTitles: []string{"x"}}))
}
