package azul

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleErrorMatching(t *testing.T) {
	err := invalidTurn("it is not %s's turn", "bob")
	assert.EqualError(t, err, "[INVALID_TURN] it is not bob's turn")
	assert.ErrorIs(t, err, ErrInvalidTurn)
	assert.NotErrorIs(t, err, ErrInvalidState)

	wrapped := fmt.Errorf("coordinator: %w", notFound("game %d", 7))
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	code, ok := CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeNotFound, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}
