package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// NewServer creates the asynq worker server consuming the digest queue.
func NewServer(redis asynq.RedisConnOpt, concurrency int) *asynq.Server {
	return asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueDigest: 1},
		Logger:      asynqLogger{},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("type", task.Type()).Msg("Task failed")
		}),
	})
}

// NewScheduler creates an asynq scheduler evaluating cron specs in loc.
func NewScheduler(redis asynq.RedisConnOpt, loc *time.Location) *asynq.Scheduler {
	return asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   asynqLogger{},
		LogLevel: asynq.InfoLevel,
	})
}

// RegisterDigestSchedule enqueues a digest task on every tick of cronSpec.
func RegisterDigestSchedule(s *asynq.Scheduler, cronSpec string) (string, error) {
	task, err := NewDigestTask("schedule")
	if err != nil {
		return "", err
	}
	entryID, err := s.Register(cronSpec, task)
	if err != nil {
		return "", fmt.Errorf("register digest schedule %q: %w", cronSpec, err)
	}
	log.Info().Str("entry_id", entryID).Str("cron", cronSpec).Msg("Registered digest schedule")
	return entryID, nil
}

// EnqueueDigest pushes a single digest task through the broker.
func EnqueueDigest(ctx context.Context, redis asynq.RedisConnOpt) (*asynq.TaskInfo, error) {
	client := asynq.NewClient(redis)
	defer client.Close()

	task, err := NewDigestTask("manual")
	if err != nil {
		return nil, err
	}
	return client.EnqueueContext(ctx, task)
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { log.Debug().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...interface{})  { log.Info().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...interface{})  { log.Warn().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...interface{}) { log.Error().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...interface{}) { log.Fatal().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
