package verifier

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coopreg/internal/application/models"
	id "coopreg/pkg/domain"
	"coopreg/pkg/platform/circuit"
)

func document(url string) (models.Document, models.DocumentCheck) {
	doc := models.Document{ID: id.DocumentID(uuid.New()), Type: "constitution", URL: url}
	return doc, models.DocumentCheck{DocumentID: doc.ID, Verified: true}
}

func TestManual(t *testing.T) {
	doc, check := document("https://docs.example.com/c.pdf")

	ok, err := Manual{}.Verify(context.Background(), doc, check)
	require.NoError(t, err)
	assert.True(t, ok)

	check.Verified = false
	ok, err = Manual{}.Verify(context.Background(), doc, check)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("reachable document verifies", func(t *testing.T) {
		var method atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method.Store(r.Method)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		doc, check := document(srv.URL + "/c.pdf")
		ok, err := NewHTTP(time.Second, WithLogger(logger)).Verify(context.Background(), doc, check)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, http.MethodHead, method.Load())
	})

	t.Run("missing document does not verify", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		doc, check := document(srv.URL + "/gone.pdf")
		ok, err := NewHTTP(time.Second, WithLogger(logger)).Verify(context.Background(), doc, check)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unmarked check skips the request", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
		}))
		defer srv.Close()

		doc, check := document(srv.URL)
		check.Verified = false
		ok, err := NewHTTP(time.Second).Verify(context.Background(), doc, check)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, calls.Load())
	})

	t.Run("transport failure is an error and trips the breaker", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		breaker := circuit.New("test", circuit.WithFailureThreshold(2))
		v := NewHTTP(time.Second, WithBreaker(breaker), WithLogger(logger))
		doc, check := document(url)
		for range 2 {
			_, err := v.Verify(context.Background(), doc, check)
			require.Error(t, err)
		}
		assert.True(t, breaker.IsOpen())
	})
}

func TestNew(t *testing.T) {
	v, err := New("", time.Second, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, Manual{}, v)

	v, err = New(KindHTTP, time.Second, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, v)

	_, err = New("oracle", time.Second, slog.Default())
	assert.Error(t, err)
}
