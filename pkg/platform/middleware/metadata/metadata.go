package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"coopreg/pkg/requestcontext"
)

// ClientMetadata stores the client address and User-Agent on the request
// context. Apply it before anything that keys on the client.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), ClientIPFromRequest(r))
		ctx = requestcontext.WithUserAgent(ctx, r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest prefers proxy headers over RemoteAddr.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Client is a coarse description of the calling software for request logs.
type Client struct {
	Browser string
	OS      string
	Bot     bool
	Mobile  bool
}

// DescribeUserAgent parses a User-Agent header. Empty input yields a zero Client.
func DescribeUserAgent(raw string) Client {
	if raw == "" {
		return Client{}
	}
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	return Client{
		Browser: name,
		OS:      ua.OS(),
		Bot:     ua.Bot(),
		Mobile:  ua.Mobile(),
	}
}
