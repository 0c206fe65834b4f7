// Package requesttime pins one "now" per request so that history entries,
// documents and certificates written by the same request share a timestamp.
package requesttime

import (
	"net/http"
	"time"

	"coopreg/pkg/requestcontext"
)

// Middleware pins the wall clock in UTC.
var Middleware = Pin(time.Now)

// Pin returns middleware that stores clock() in the request context. Tests
// pass a fixed clock to get deterministic certificate years and timestamps.
func Pin(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
