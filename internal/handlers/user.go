package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nekidaem/blogfeed/internal/guards"
	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	guard          *guards.Guard
	listLimit      int
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, guard *guards.Guard, listLimit int) *UserHandler {
	return &UserHandler{userRepository: userRepo, guard: guard, listLimit: listLimit}
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/users", h.CreateUser)
	g.GET("/users", h.GetUsers)
	g.GET("/users/:user_id", h.GetUser)
	g.DELETE("/users/:user_id", h.DeleteUser)
}

// CreateUser creates a user together with the user's first blog
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.guard.EnsureUsernameEmailFree(ctx, req.Username, req.Email); err != nil {
		return httpError(err)
	}

	user := req.ToUser()
	blog := &models.Blog{Title: models.FirstBlogTitle(user.Username)}
	if err := h.userRepository.CreateWithBlog(ctx, user, blog); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// GetUsers lists users, newest first
func (h *UserHandler) GetUsers(c echo.Context) error {
	skip, limit, err := parseWindow(c, h.listLimit)
	if err != nil {
		return err
	}
	users, err := h.userRepository.GetMulti(c.Request().Context(), skip, limit)
	if err != nil {
		return httpError(err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	user, err := h.guard.EnsureUserExists(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes the user. Owned blogs stay, without an owner.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := h.guard.EnsureUserExists(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	if err := h.userRepository.Remove(ctx, user); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
