package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

type status string

func (s status) String() string { return "status:" + string(s) }

func TestString(t *testing.T) {
	pairs := []any{"application_id", "app-1", 42, "ignored", "to", status("APPROVED"), "count"}

	assert.Equal(t, "app-1", String(pairs, "application_id"))
	assert.Equal(t, "status:APPROVED", String(pairs, "to"))
	assert.Empty(t, String(pairs, "count"), "dangling key has no value")
	assert.Empty(t, String(pairs, "missing"))
}

func TestSpan(t *testing.T) {
	got := Span([]any{"application_id", "app-1", "healthy", true, "attempts", 3, 7, "skipped", "nothing", nil})

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("application_id", "app-1"),
		attribute.Bool("healthy", true),
		attribute.Int("attempts", 3),
	}, got)
}
