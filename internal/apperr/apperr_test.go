package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("subscribe: %w", Conflict("user %d already subscribed to blog %d", 1, 2))

	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.EqualError(t, err, "subscribe: user 1 already subscribed to blog 2")
}

func TestIsRejectsForeignErrors(t *testing.T) {
	assert.False(t, Is(fmt.Errorf("boom"), KindForbidden))
	assert.False(t, Is(nil, KindNotFound))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "forbidden", KindForbidden.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
