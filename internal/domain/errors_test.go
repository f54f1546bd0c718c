package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("failed to load: %w", NotFound("session %s not found", "s1"))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("ended")))
	assert.Equal(t, KindInternal, KindOf(errors.New("disk full")))
	assert.Equal(t, KindInternal, KindOf(nil))
	assert.Equal(t, ErrorKind("RESOURCE_NOT_FOUND"), KindNotFound)
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", InvalidArgument("bad role").WithDetail("role", "unknown"))

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSessionStatusIsOpen(t *testing.T) {
	assert.True(t, SessionStatusCreated.IsOpen())
	assert.True(t, SessionStatusActive.IsOpen())
	assert.False(t, SessionStatusEnded.IsOpen())
}
