package digest

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Notifier delivers a non-empty digest.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, d Digest) error

func (f NotifierFunc) Notify(ctx context.Context, d Digest) error {
	return f(ctx, d)
}

// LogNotifier writes the digest to the application log in place of sending an email.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, d Digest) error {
	log.Info().
		Uint("user_id", d.UserID).
		Str("username", d.Username).
		Str("email", d.Email).
		Int("posts", len(d.PostTitles)).
		Strs("titles", d.PostTitles).
		Msg("Digest sent")
	return nil
}

// MultiNotifier delivers to every notifier, even after one fails, and joins the errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, d Digest) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
