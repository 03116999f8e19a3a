package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/nekidaem/blogfeed/internal/digest"
	"github.com/rs/zerolog/log"
)

// DigestRunner runs one digest pass over all users.
type DigestRunner interface {
	Run(ctx context.Context) (digest.Report, error)
}

// DigestTaskHandler processes TypeDigestSend tasks.
type DigestTaskHandler struct {
	runner DigestRunner
}

func NewDigestTaskHandler(runner DigestRunner) *DigestTaskHandler {
	return &DigestTaskHandler{runner: runner}
}

// ProcessTask implements asynq.Handler. Users that failed are already in the
// report and logged; they do not fail the task, since a retry would resend to everyone.
func (h *DigestTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p DigestPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode digest payload: %v: %w", err, asynq.SkipRetry)
	}

	report, err := h.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("digest run: %w", err)
	}
	log.Info().
		Str("trigger", p.Trigger).
		Int("sent", report.Sent).
		Int("failed", len(report.Failed)).
		Msg("Digest task completed")
	return nil
}

// NewServeMux routes digest tasks to h.
func NewServeMux(h *DigestTaskHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeDigestSend, h)
	return mux
}
