package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nekidaem/blogfeed/internal/guards"
	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories"
)

// ReadStatusHandler handles marking posts as read/unread
type ReadStatusHandler struct {
	readStatusRepository repositories.ReadStatusRepository
	guard                *guards.Guard
}

// NewReadStatusHandler creates a new ReadStatusHandler
func NewReadStatusHandler(readStatusRepo repositories.ReadStatusRepository, guard *guards.Guard) *ReadStatusHandler {
	return &ReadStatusHandler{readStatusRepository: readStatusRepo, guard: guard}
}

// RegisterReadStatusRoutes registers read status routes
func (h *ReadStatusHandler) RegisterReadStatusRoutes(g *echo.Group) {
	g.POST("/users/:user_id/read-posts", h.MarkAsRead)
	g.DELETE("/users/:user_id/read-posts/:post_id", h.UnmarkAsRead)
	g.GET("/users/:user_id/read-posts", h.GetReadStatuses)
}

// MarkAsRead records that the user has read a post
func (h *ReadStatusHandler) MarkAsRead(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	var req models.CreateReadStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.guard.EnsureUserExists(ctx, userID); err != nil {
		return httpError(err)
	}
	if _, err := h.guard.EnsurePostExists(ctx, req.PostID); err != nil {
		return httpError(err)
	}
	if _, err := h.guard.EnsureReadStatusState(ctx, userID, req.PostID, false); err != nil {
		return httpError(err)
	}

	rs := &models.ReadStatus{UserID: userID, PostID: req.PostID}
	if err := h.readStatusRepository.Create(ctx, rs); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rs)
}

// UnmarkAsRead removes the read mark so the post shows as unread again
func (h *ReadStatusHandler) UnmarkAsRead(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.guard.EnsureUserExists(ctx, userID); err != nil {
		return httpError(err)
	}
	if _, err := h.guard.EnsurePostExists(ctx, postID); err != nil {
		return httpError(err)
	}
	rs, err := h.guard.EnsureReadStatusState(ctx, userID, postID, true)
	if err != nil {
		return httpError(err)
	}
	if err := h.readStatusRepository.Remove(ctx, rs); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReadStatusHandler) GetReadStatuses(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.guard.EnsureUserExists(ctx, userID); err != nil {
		return httpError(err)
	}
	statuses, err := h.readStatusRepository.GetMultiForUser(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	if statuses == nil {
		statuses = []models.ReadStatus{}
	}
	return c.JSON(http.StatusOK, statuses)
}
