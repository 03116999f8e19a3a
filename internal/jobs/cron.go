package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// NewCronScheduler runs the digest in-process on cronSpec. It is used when no
// broker is configured. Overlapping runs are skipped. The returned cron is not started.
func NewCronScheduler(cronSpec string, loc *time.Location, runner DigestRunner) (*cron.Cron, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()
		if _, err := runner.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled digest failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register digest schedule %q: %w", cronSpec, err)
	}
	return c, nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Str("component", "cron").Fields(keysAndValues).Msg(msg)
}
