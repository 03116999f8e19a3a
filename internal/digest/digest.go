// Package digest builds the daily per-user digest of the newest feed posts
// and hands it to the configured notifiers.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is how many users are loaded per query while iterating.
const DefaultBatchSize = 100

// Digest is what one user receives: the titles of the newest posts in their feed.
type Digest struct {
	UserID      uint      `bson:"user_id" json:"user_id"`
	Username    string    `bson:"username" json:"username"`
	Email       string    `bson:"email" json:"email"`
	PostTitles  []string  `bson:"post_titles" json:"post_titles"`
	GeneratedAt time.Time `bson:"generated_at" json:"generated_at"`
}

// Empty reports the "no subscriptions" case: nothing is delivered for it.
func (d Digest) Empty() bool {
	return len(d.PostTitles) == 0
}

// UserLister pages through all users.
type UserLister interface {
	GetMulti(ctx context.Context, skip, limit int) ([]models.User, error)
}

// FeedSource returns the newest posts of a user's feed regardless of read state.
type FeedSource interface {
	GetMultiForUserFeed(ctx context.Context, userID uint, skip, limit int) ([]models.Post, error)
}

// Failure records a user whose digest step failed.
type Failure struct {
	UserID uint
	Err    error
}

// Report summarizes one run.
type Report struct {
	Sent            int
	NoSubscriptions int
	Failed          []Failure
}

// Processed is the number of users visited.
func (r Report) Processed() int {
	return r.Sent + r.NoSubscriptions + len(r.Failed)
}

// Runner fans the digest out over every user.
type Runner struct {
	users         UserLister
	feed          FeedSource
	notifier      Notifier
	postsPerEmail int
	batchSize     int
	now           func() time.Time
}

// NewRunner creates a Runner that puts at most postsPerEmail titles in each digest.
func NewRunner(users UserLister, feed FeedSource, notifier Notifier, postsPerEmail int) *Runner {
	return &Runner{
		users:         users,
		feed:          feed,
		notifier:      notifier,
		postsPerEmail: postsPerEmail,
		batchSize:     DefaultBatchSize,
		now:           time.Now,
	}
}

// WithBatchSize overrides the user page size.
func (r *Runner) WithBatchSize(n int) *Runner {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Run builds and delivers a digest for every user. A failing user is recorded
// in the report and the run moves on; only a failure to list users aborts it.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var report Report
	started := r.now()

	for skip := 0; ; skip += r.batchSize {
		users, err := r.users.GetMulti(ctx, skip, r.batchSize)
		if err != nil {
			return report, fmt.Errorf("list users at offset %d: %w", skip, err)
		}
		for _, u := range users {
			sent, err := r.runUser(ctx, u)
			switch {
			case err != nil:
				report.Failed = append(report.Failed, Failure{UserID: u.ID, Err: err})
				log.Error().Err(err).Uint("user_id", u.ID).Msg("Digest failed")
			case sent:
				report.Sent++
			default:
				report.NoSubscriptions++
			}
		}
		if len(users) < r.batchSize {
			break
		}
	}

	log.Info().
		Int("processed", report.Processed()).
		Int("sent", report.Sent).
		Int("no_subscriptions", report.NoSubscriptions).
		Int("failed", len(report.Failed)).
		Dur("elapsed", r.now().Sub(started)).
		Msg("All digests processed")
	return report, nil
}

// runUser is the fault-isolated step for one user. A panic is turned into an error.
func (r *Runner) runUser(ctx context.Context, u models.User) (sent bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			sent, err = false, fmt.Errorf("panic: %v", rec)
		}
	}()

	posts, err := r.feed.GetMultiForUserFeed(ctx, u.ID, 0, r.postsPerEmail)
	if err != nil {
		return false, fmt.Errorf("load feed: %w", err)
	}

	d := Build(u, posts, r.now())
	if d.Empty() {
		log.Info().Uint("user_id", u.ID).Str("email", u.Email).Msg("User has no subscriptions, digest not sent")
		return false, nil
	}
	if err := r.notifier.Notify(ctx, d); err != nil {
		return false, fmt.Errorf("notify: %w", err)
	}
	return true, nil
}

// Build assembles the digest for a user from their newest feed posts.
func Build(u models.User, posts []models.Post, at time.Time) Digest {
	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	return Digest{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PostTitles:  titles,
		GeneratedAt: at,
	}
}
