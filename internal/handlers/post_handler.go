package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nekidaem/blogfeed/internal/guards"
	"github.com/nekidaem/blogfeed/internal/models"
	"github.com/nekidaem/blogfeed/internal/pagination"
	"github.com/nekidaem/blogfeed/internal/repositories"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postRepository repositories.PostRepository
	guard          *guards.Guard
	limits         pagination.Limits
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, guard *guards.Guard, limits pagination.Limits) *PostHandler {
	return &PostHandler{postRepository: postRepo, guard: guard, limits: limits}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/blogs/:blog_id/posts", h.CreatePost)
	g.GET("/blogs/:blog_id/posts", h.GetPostsForBlog)
	g.DELETE("/blogs/posts/:post_id", h.DeletePost)
}

// CreatePost adds a post to a blog
func (h *PostHandler) CreatePost(c echo.Context) error {
	blogID, err := parseID(c, "blog_id")
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.guard.EnsureBlogExists(ctx, blogID); err != nil {
		return httpError(err)
	}

	post := &models.Post{BlogID: blogID, Title: req.Title, Content: req.Content}
	if err := h.postRepository.Create(ctx, post); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPostsForBlog returns a page of the blog's posts, newest first
func (h *PostHandler) GetPostsForBlog(c echo.Context) error {
	blogID, err := parseID(c, "blog_id")
	if err != nil {
		return err
	}
	params, err := pagination.ParseParams(c.QueryParam("page"), c.QueryParam("size"), h.limits)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.guard.EnsureBlogExists(ctx, blogID); err != nil {
		return httpError(err)
	}

	total, err := h.postRepository.CountForBlog(ctx, blogID)
	if err != nil {
		return httpError(err)
	}
	posts, err := h.postRepository.GetMultiForBlog(ctx, blogID, params.Offset(), params.Size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.New(posts, total, params))
}

// DeletePost deletes a post and its read marks
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := h.guard.EnsurePostExists(ctx, postID)
	if err != nil {
		return httpError(err)
	}
	if err := h.postRepository.Remove(ctx, post); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
