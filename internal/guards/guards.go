// Package guards holds the preconditions checked before every mutation.
// Existence checks run before state checks: state checks read fields of
// entities that the existence checks have already loaded.
package guards

import (
	"context"
	"errors"
	"fmt"

	"github.com/nekidaem/blogfeed/internal/apperr"
	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories"
)

// Guard runs precondition checks against the repositories.
type Guard struct {
	users         repositories.UserRepository
	blogs         repositories.BlogRepository
	posts         repositories.PostRepository
	subscriptions repositories.SubscriptionRepository
	readStatuses  repositories.ReadStatusRepository
}

func New(
	users repositories.UserRepository,
	blogs repositories.BlogRepository,
	posts repositories.PostRepository,
	subscriptions repositories.SubscriptionRepository,
	readStatuses repositories.ReadStatusRepository,
) *Guard {
	return &Guard{
		users:         users,
		blogs:         blogs,
		posts:         posts,
		subscriptions: subscriptions,
		readStatuses:  readStatuses,
	}
}

// EnsureUsernameEmailFree fails with Conflict when any user already has the username or email.
func (g *Guard) EnsureUsernameEmailFree(ctx context.Context, username, email string) error {
	existing, err := g.users.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return fmt.Errorf("look up users by username or email: %w", err)
	}
	if len(existing) > 0 {
		return apperr.Conflict("User with this username or email already exists")
	}
	return nil
}

func (g *Guard) EnsureUserExists(ctx context.Context, userID uint) (*models.User, error) {
	user, err := g.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("User with ID %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return user, nil
}

func (g *Guard) EnsureBlogExists(ctx context.Context, blogID uint) (*models.Blog, error) {
	blog, err := g.blogs.GetByID(ctx, blogID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("Blog with ID %d not found", blogID)
	}
	if err != nil {
		return nil, fmt.Errorf("get blog %d: %w", blogID, err)
	}
	return blog, nil
}

func (g *Guard) EnsurePostExists(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := g.posts.GetByID(ctx, postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("Post with ID %d not found", postID)
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", postID, err)
	}
	return post, nil
}

// EnsureSubscriptionState rejects creating a subscription that exists (Conflict)
// and deleting one that does not (NotFound). The returned subscription is nil
// when none exists and intendedDelete is false.
func (g *Guard) EnsureSubscriptionState(ctx context.Context, userID, blogID uint, intendedDelete bool) (*models.Subscription, error) {
	sub, err := g.subscriptions.Get(ctx, userID, blogID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("get subscription of user %d to blog %d: %w", userID, blogID, err)
	}
	exists := err == nil
	switch {
	case exists && !intendedDelete:
		return nil, apperr.Conflict("User with ID %d is already subscribed to blog with ID %d", userID, blogID)
	case !exists && intendedDelete:
		return nil, apperr.NotFound("Subscription of user with ID %d to blog with ID %d not found", userID, blogID)
	}
	return sub, nil
}

// EnsureNotOwnBlog fails with Forbidden when userID owns the blog.
func (g *Guard) EnsureNotOwnBlog(ctx context.Context, userID, blogID uint) error {
	blog, err := g.EnsureBlogExists(ctx, blogID)
	if err != nil {
		return err
	}
	if blog.OwnedBy(userID) {
		return apperr.Forbidden("Blog with ID %d belongs to user with ID %d. Subscribing to your own blog is not allowed", blogID, userID)
	}
	return nil
}

// EnsureReadStatusState mirrors EnsureSubscriptionState for read marks.
func (g *Guard) EnsureReadStatusState(ctx context.Context, userID, postID uint, intendedDelete bool) (*models.ReadStatus, error) {
	rs, err := g.readStatuses.Get(ctx, userID, postID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("get read status of user %d for post %d: %w", userID, postID, err)
	}
	exists := err == nil
	switch {
	case exists && !intendedDelete:
		return nil, apperr.Conflict("User with ID %d has already read post with ID %d", userID, postID)
	case !exists && intendedDelete:
		return nil, apperr.NotFound("Read status of user with ID %d for post with ID %d not found", userID, postID)
	}
	return rs, nil
}
