// Package jobs wires the digest into the task queue and the schedulers.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeDigestSend is the asynq task type of the daily digest.
	TypeDigestSend = "digest:send"

	// QueueDigest is the queue digest tasks are enqueued on.
	QueueDigest = "digest"

	digestMaxRetry = 1
	digestTimeout  = 30 * time.Minute
)

// DigestPayload is the body of a digest task.
type DigestPayload struct {
	// Trigger is "schedule" for the daily run and "manual" for ad-hoc ones.
	Trigger string `json:"trigger"`
}

// NewDigestTask builds a digest task. Retries re-run every user, so they are kept low.
func NewDigestTask(trigger string) (*asynq.Task, error) {
	payload, err := json.Marshal(DigestPayload{Trigger: trigger})
	if err != nil {
		return nil, fmt.Errorf("marshal digest payload: %w", err)
	}
	return asynq.NewTask(TypeDigestSend, payload,
		asynq.Queue(QueueDigest),
		asynq.MaxRetry(digestMaxRetry),
		asynq.Timeout(digestTimeout),
	), nil
}
