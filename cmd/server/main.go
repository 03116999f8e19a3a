package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nekidaem/blogfeed/internal/database"
	"github.com/nekidaem/blogfeed/internal/router"
	"github.com/nekidaem/blogfeed/pkg/config"
	"github.com/nekidaem/blogfeed/pkg/logger"
	"github.com/nekidaem/blogfeed/validators"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.URL); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator(validators.Lengths{
		Title:    cfg.Limits.TitleMaxLength,
		Content:  cfg.Limits.ContentMaxLength,
		Username: cfg.Limits.UsernameMaxLength,
		Email:    cfg.Limits.EmailMaxLength,
	})

	router.SetupMiddleware(e)
	router.SetupRoutes(e, router.NewPostgresRepositories(db.Postgres), cfg.Limits)

	go func() {
		log.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("Server starting")
		if err := e.Start(":" + cfg.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
