package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/nekidaem/blogfeed/internal/guards"
	"github.com/nekidaem/blogfeed/internal/handlers"
	"github.com/nekidaem/blogfeed/internal/pagination"
	"github.com/nekidaem/blogfeed/internal/repositories"
	"github.com/nekidaem/blogfeed/pkg/config"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Repositories bundles the data access layer the handlers are built on.
type Repositories struct {
	Users         repositories.UserRepository
	Blogs         repositories.BlogRepository
	Posts         repositories.PostRepository
	Subscriptions repositories.SubscriptionRepository
	ReadStatuses  repositories.ReadStatusRepository
}

// NewPostgresRepositories builds the gorm-backed repositories.
func NewPostgresRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         repositories.NewPostgresUserRepository(db),
		Blogs:         repositories.NewPostgresBlogRepository(db),
		Posts:         repositories.NewPostgresPostRepository(db),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(db),
		ReadStatuses:  repositories.NewPostgresReadStatusRepository(db),
	}
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Pre(eMiddleware.RemoveTrailingSlash())
	config.SetupMiddleware(e)
	log.Debug().Msg("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, repos Repositories, limits config.LimitsConfig) {
	e.GET("/health", handlers.HealthCheck)

	guard := guards.New(repos.Users, repos.Blogs, repos.Posts, repos.Subscriptions, repos.ReadStatuses)
	pageLimits := pagination.Limits{DefaultSize: limits.PostsPerPage, MaxSize: limits.MaxPostsInFeed}

	api := e.Group("/api/v1")

	handlers.NewUserHandler(repos.Users, guard, limits.MaxPostsInFeed).RegisterUserRoutes(api)
	handlers.NewBlogHandler(repos.Blogs, guard, limits.MaxPostsInFeed).RegisterBlogRoutes(api)
	handlers.NewPostHandler(repos.Posts, guard, pageLimits).RegisterPostRoutes(api)
	handlers.NewSubscriptionHandler(repos.Subscriptions, guard).RegisterSubscriptionRoutes(api)
	handlers.NewReadStatusHandler(repos.ReadStatuses, guard).RegisterReadStatusRoutes(api)
	handlers.NewFeedHandler(repos.Posts, guard, pageLimits).RegisterFeedRoutes(api)

	log.Debug().Int("routes", len(e.Routes())).Msg("All routes configured.")
}
