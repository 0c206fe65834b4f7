package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "coopreg/pkg/platform/audit"
)

func TestRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := audit.NewEvent("application", "app-1", "tenant-1", "application.status_changed", []byte(`{"to":"APPROVED"}`), now)

	rec := Record("coopreg.events", event)

	assert.Equal(t, "coopreg.events", rec.Topic)
	assert.Equal(t, []byte("app-1"), rec.Key)
	assert.Equal(t, event.Payload, rec.Value)
	assert.Equal(t, now, rec.Timestamp)

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "application.status_changed", headers[HeaderEventType])
	assert.Equal(t, "tenant-1", headers[HeaderTenantID])
	assert.Equal(t, event.ID.String(), headers[HeaderEventID])
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	_, err := New(context.Background(), Config{Topic: "t"}, nil)
	require.Error(t, err)

	_, err = New(context.Background(), Config{Brokers: []string{"localhost:9092"}}, nil)
	require.Error(t, err)
}
