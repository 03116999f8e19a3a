package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nekidaem/blogfeed/internal/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	calls  int
	report digest.Report
	err    error
}

func (s *stubRunner) Run(context.Context) (digest.Report, error) {
	s.calls++
	return s.report, s.err
}

func TestNewDigestTask(t *testing.T) {
	task, err := NewDigestTask("manual")
	require.NoError(t, err)
	assert.Equal(t, TypeDigestSend, task.Type())

	var p DigestPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "manual", p.Trigger)
}

func TestDigestTaskHandler(t *testing.T) {
	task, err := NewDigestTask("schedule")
	require.NoError(t, err)

	t.Run("per-user failures do not fail the task", func(t *testing.T) {
		runner := &stubRunner{report: digest.Report{Sent: 2, Failed: []digest.Failure{{UserID: 1, Err: errors.New("x")}}}}
		assert.NoError(t, NewDigestTaskHandler(runner).ProcessTask(context.Background(), task))
		assert.Equal(t, 1, runner.calls)
	})

	t.Run("listing failure is retried", func(t *testing.T) {
		runner := &stubRunner{err: errors.New("db down")}
		err := NewDigestTaskHandler(runner).ProcessTask(context.Background(), task)
		assert.ErrorContains(t, err, "db down")
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("malformed payload is not retried", func(t *testing.T) {
		runner := &stubRunner{}
		err := NewDigestTaskHandler(runner).ProcessTask(context.Background(), asynq.NewTask(TypeDigestSend, []byte("{")))
		assert.True(t, errors.Is(err, asynq.SkipRetry))
		assert.Zero(t, runner.calls)
	})
}

func TestServeMuxRoutesDigestTask(t *testing.T) {
	runner := &stubRunner{}
	mux := NewServeMux(NewDigestTaskHandler(runner))

	task, err := NewDigestTask("manual")
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, 1, runner.calls)

	assert.Error(t, mux.ProcessTask(context.Background(), asynq.NewTask("other:task", nil)))
}

func TestNewCronScheduler(t *testing.T) {
	runner := &stubRunner{}

	c, err := NewCronScheduler("30 9 * * *", time.UTC, runner)
	require.NoError(t, err)
	entries := c.Entries()
	require.Len(t, entries, 1)

	next := entries[0].Schedule.Next(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), next)

	entries[0].WrappedJob.Run()
	assert.Equal(t, 1, runner.calls)

	_, err = NewCronScheduler("not a spec", time.UTC, runner)
	assert.Error(t, err)
}
