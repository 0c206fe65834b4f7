package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
	"coopreg/pkg/platform/httputil"
	"coopreg/pkg/requestcontext"
)

// Actor is the authenticated caller resolved from a bearer token.
type Actor struct {
	UserID   id.UserID
	Role     id.Role
	TenantID id.TenantID
}

// TokenValidator resolves a bearer token to an actor.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Actor, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// actor on the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			actor, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithActor(ctx, actor.UserID, actor.Role, actor.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
