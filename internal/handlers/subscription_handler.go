package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nekidaem/blogfeed/internal/guards"
	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories"
)

// SubscriptionHandler handles subscribe/unsubscribe HTTP requests
type SubscriptionHandler struct {
	subscriptionRepository repositories.SubscriptionRepository
	guard                  *guards.Guard
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subRepo repositories.SubscriptionRepository, guard *guards.Guard) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionRepository: subRepo, guard: guard}
}

// RegisterSubscriptionRoutes registers subscription routes
func (h *SubscriptionHandler) RegisterSubscriptionRoutes(g *echo.Group) {
	g.POST("/users/:user_id/subscriptions", h.Subscribe)
	g.DELETE("/users/:user_id/subscriptions/:blog_id", h.Unsubscribe)
	g.GET("/users/:user_id/subscriptions", h.GetSubscriptions)
}

// Subscribe subscribes a user to someone else's blog
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	var req models.CreateSubscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.guard.EnsureUserExists(ctx, userID); err != nil {
		return httpError(err)
	}
	if _, err := h.guard.EnsureBlogExists(ctx, req.BlogID); err != nil {
		return httpError(err)
	}
	if err := h.guard.EnsureNotOwnBlog(ctx, userID, req.BlogID); err != nil {
		return httpError(err)
	}
	if _, err := h.guard.EnsureSubscriptionState(ctx, userID, req.BlogID, false); err != nil {
		return httpError(err)
	}

	sub := &models.Subscription{UserID: userID, BlogID: req.BlogID}
	if err := h.subscriptionRepository.Create(ctx, sub); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sub)
}

// Unsubscribe removes a user's subscription to a blog
func (h *SubscriptionHandler) Unsubscribe(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	blogID, err := parseID(c, "blog_id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.guard.EnsureUserExists(ctx, userID); err != nil {
		return httpError(err)
	}
	if _, err := h.guard.EnsureBlogExists(ctx, blogID); err != nil {
		return httpError(err)
	}
	sub, err := h.guard.EnsureSubscriptionState(ctx, userID, blogID, true)
	if err != nil {
		return httpError(err)
	}
	if err := h.subscriptionRepository.Remove(ctx, sub); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSubscriptions lists a user's subscriptions, newest first
func (h *SubscriptionHandler) GetSubscriptions(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.guard.EnsureUserExists(ctx, userID); err != nil {
		return httpError(err)
	}
	subs, err := h.subscriptionRepository.GetMultiForUser(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return c.JSON(http.StatusOK, subs)
}
