package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nekidaem/blogfeed/internal/digest"
	"github.com/nekidaem/blogfeed/internal/jobs"
	"github.com/nekidaem/blogfeed/internal/repositories"
	"github.com/nekidaem/blogfeed/pkg/config"
	"github.com/nekidaem/blogfeed/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	once := flag.Bool("once", false, "run a single digest immediately and exit")
	enqueue := flag.Bool("enqueue", false, "push a single digest task to the broker and exit")
	concurrency := flag.Int("concurrency", 2, "asynq worker concurrency")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	if *enqueue {
		enqueueDigest(cfg)
		return
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	runner := newRunner(db, cfg)

	if *once {
		report, err := runner.Run(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("Digest run failed")
		}
		log.Info().Int("sent", report.Sent).Int("failed", len(report.Failed)).Msg("Digest run finished")
		return
	}

	spec, loc, err := cfg.DigestSchedule()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid digest schedule")
	}

	if cfg.Broker.URL == "" {
		runCron(spec, loc, runner)
		return
	}
	runAsynq(cfg, spec, loc, runner, *concurrency)
}

func newRunner(db *config.DB, cfg *config.Config) *digest.Runner {
	notifiers := digest.MultiNotifier{digest.LogNotifier{}}
	if db.Mongo != nil {
		mongoDB := db.Mongo.Database(cfg.Mongo.Database)
		if err := digest.EnsureIndexes(context.Background(), mongoDB); err != nil {
			log.Warn().Err(err).Msg("Digest archive index not created")
		}
		notifiers = append(notifiers, digest.NewMongoArchive(mongoDB))
	}
	return digest.NewRunner(
		repositories.NewPostgresUserRepository(db.Postgres),
		repositories.NewPostgresPostRepository(db.Postgres),
		notifiers,
		cfg.Digest.PostsPerEmail,
	)
}

func redisOpt(cfg *config.Config) asynq.RedisConnOpt {
	opt, err := asynq.ParseRedisURI(cfg.Broker.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid BROKER_URL")
	}
	return opt
}

func enqueueDigest(cfg *config.Config) {
	info, err := jobs.EnqueueDigest(context.Background(), redisOpt(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to enqueue digest")
	}
	log.Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("Digest enqueued")
}

func runAsynq(cfg *config.Config, spec string, loc *time.Location, runner *digest.Runner, concurrency int) {
	opt := redisOpt(cfg)

	scheduler := jobs.NewScheduler(opt, loc)
	if _, err := jobs.RegisterDigestSchedule(scheduler, spec); err != nil {
		log.Fatal().Err(err).Msg("Failed to register digest schedule")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	srv := jobs.NewServer(opt, concurrency)
	if err := srv.Start(jobs.NewServeMux(jobs.NewDigestTaskHandler(runner))); err != nil {
		log.Fatal().Err(err).Msg("Failed to start worker")
	}
	log.Info().Str("cron", spec).Str("timezone", loc.String()).Msg("Worker started")

	waitForShutdown()
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("Worker stopped")
}

func runCron(spec string, loc *time.Location, runner *digest.Runner) {
	c, err := jobs.NewCronScheduler(spec, loc, runner)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create cron scheduler")
	}
	c.Start()
	log.Info().Str("cron", spec).Str("timezone", loc.String()).Msg("BROKER_URL empty, running digest in-process")

	waitForShutdown()
	<-c.Stop().Done()
	log.Info().Msg("Worker stopped")
}

func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Gracefully stopping...")
}
