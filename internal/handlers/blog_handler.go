package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nekidaem/blogfeed/internal/guards"
	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/repositories"
)

// BlogHandler handles blog HTTP requests
type BlogHandler struct {
	blogRepository repositories.BlogRepository
	guard          *guards.Guard
	listLimit      int
}

func NewBlogHandler(blogRepo repositories.BlogRepository, guard *guards.Guard, listLimit int) *BlogHandler {
	return &BlogHandler{blogRepository: blogRepo, guard: guard, listLimit: listLimit}
}

// RegisterBlogRoutes registers blog routes
func (h *BlogHandler) RegisterBlogRoutes(g *echo.Group) {
	g.GET("/blogs", h.GetBlogs)
	g.GET("/blogs/:blog_id", h.GetBlog)
	g.DELETE("/blogs/:blog_id", h.DeleteBlog)
}

func (h *BlogHandler) GetBlogs(c echo.Context) error {
	skip, limit, err := parseWindow(c, h.listLimit)
	if err != nil {
		return err
	}
	blogs, err := h.blogRepository.GetMulti(c.Request().Context(), skip, limit)
	if err != nil {
		return httpError(err)
	}
	if blogs == nil {
		blogs = []models.Blog{}
	}
	return c.JSON(http.StatusOK, blogs)
}

func (h *BlogHandler) GetBlog(c echo.Context) error {
	blogID, err := parseID(c, "blog_id")
	if err != nil {
		return err
	}
	blog, err := h.guard.EnsureBlogExists(c.Request().Context(), blogID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, blog)
}

// DeleteBlog removes a blog along with its posts and subscriptions
func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	blogID, err := parseID(c, "blog_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	blog, err := h.guard.EnsureBlogExists(ctx, blogID)
	if err != nil {
		return httpError(err)
	}
	if err := h.blogRepository.Remove(ctx, blog); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
