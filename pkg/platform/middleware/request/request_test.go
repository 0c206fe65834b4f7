package request

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coopreg/pkg/requestcontext"
	"coopreg/pkg/testutil"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	t.Run("mints an id", func(t *testing.T) {
		rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))
	})

	t.Run("keeps inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		rr := testutil.DoRequest(h, req)
		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rr.Header().Get(HeaderRequestID))
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", 200))
		testutil.DoRequest(h, req)
		assert.Len(t, seen, 36)
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}

func TestLoggerObservesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var gotRoute string
	var gotStatus int
	r := chi.NewRouter()
	r.Use(Logger(logger, func(_ string, route string, status int, _ time.Duration) {
		gotRoute, gotStatus = route, status
	}))
	r.Get("/v1/applications/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/applications/abc", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")
	testutil.DoRequest(r, req)

	assert.Equal(t, "/v1/applications/{id}", gotRoute)
	assert.Equal(t, http.StatusNotFound, gotStatus)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http request", line["msg"])
	assert.Equal(t, "Firefox", line["browser"])
	assert.EqualValues(t, 404, line["status"])
}

func TestTimeout(t *testing.T) {
	var deadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}))
	testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, deadline)
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	testutil.AssertStatusAndError(t, testutil.DoRequest(h, req), http.StatusBadRequest, "bad_request")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	testutil.AssertStatus(t, testutil.DoRequest(h, req), http.StatusNoContent)

	testutil.AssertStatus(t, testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil)), http.StatusNoContent)
}
