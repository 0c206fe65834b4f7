package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndHasCode(t *testing.T) {
	t.Run("wrap nil returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "x"))
	})

	t.Run("code found through fmt wrapping", func(t *testing.T) {
		base := New(CodeNotFound, "application not found")
		err := fmt.Errorf("load: %w", base)
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("nested codes are all visible", func(t *testing.T) {
		inner := New(CodeInvariantViolation, "bad state")
		outer := Wrap(inner, CodeInternal, "failed")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeInvariantViolation))
		assert.Equal(t, CodeInternal, CodeOf(outer))
	})

	t.Run("cause is reachable with errors.Is", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "failed to load application")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load application: connection reset", err.Error())
	})

	t.Run("unclassified errors report internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.Empty(t, MessageOf(errors.New("boom")))
	})
}
