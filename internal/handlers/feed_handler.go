package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nekidaem/blogfeed/internal/guards"
	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/pagination"
	"github.com/nekidaem/blogfeed/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	guard          *guards.Guard
	limits         pagination.Limits
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, guard *guards.Guard, limits pagination.Limits) *FeedHandler {
	return &FeedHandler{postRepository: postRepo, guard: guard, limits: limits}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/users/:user_id/feed", h.GetFeed)
}

// GetFeed returns a page of posts from the blogs the user is subscribed to.
// The unread and read flags (both default true) select which posts are included.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	unread, err := parseBoolQuery(c, "unread", true)
	if err != nil {
		return err
	}
	read, err := parseBoolQuery(c, "read", true)
	if err != nil {
		return err
	}
	params, err := pagination.ParseParams(c.QueryParam("page"), c.QueryParam("size"), h.limits)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.guard.EnsureUserExists(ctx, userID); err != nil {
		return httpError(err)
	}

	filter, ok := repositories.ResolveFeedFilter(unread, read)
	if !ok {
		return c.JSON(http.StatusOK, pagination.Empty[models.Post](params))
	}

	total, err := h.postRepository.CountUserFeed(ctx, userID, filter)
	if err != nil {
		return httpError(err)
	}
	posts, err := h.postRepository.GetUserFeed(ctx, userID, filter, params.Offset(), params.Size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.New(posts, total, params))
}
