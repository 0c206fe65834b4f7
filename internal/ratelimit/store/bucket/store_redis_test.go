package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllowReply(t *testing.T) {
	current, ttl, err := parseAllowReply([]any{int64(4), int64(1500)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), current)
	assert.Equal(t, int64(1500), ttl)

	_, _, err = parseAllowReply([]any{int64(1)})
	assert.Error(t, err)

	_, _, err = parseAllowReply([]any{"1", int64(10)})
	assert.Error(t, err)

	_, _, err = parseAllowReply("OK")
	assert.Error(t, err)
}
