// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
//
//	actor := requestcontext.ActorID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "coopreg/pkg/domain"
)

type (
	actorIDKey     struct{}
	roleKey        struct{}
	tenantIDKey    struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue.
var (
	ContextKeyActorID     = actorIDKey{}
	ContextKeyRole        = roleKey{}
	ContextKeyTenantID    = tenantIDKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Actor context (who is calling, in which tenant, with which role)
// -----------------------------------------------------------------------------

// ActorID retrieves the authenticated user ID. Returns the nil UUID if not set.
func ActorID(ctx context.Context) id.UserID {
	if v, ok := ctx.Value(ContextKeyActorID).(id.UserID); ok {
		return v
	}
	return id.UserID{}
}

func WithActorID(ctx context.Context, actorID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actorID)
}

// Role retrieves the actor's role. Returns "" if not set.
func Role(ctx context.Context) id.Role {
	if v, ok := ctx.Value(ContextKeyRole).(id.Role); ok {
		return v
	}
	return ""
}

func WithRole(ctx context.Context, role id.Role) context.Context {
	return context.WithValue(ctx, ContextKeyRole, role)
}

// TenantID retrieves the actor's tenant. Returns the nil UUID if not set.
func TenantID(ctx context.Context) id.TenantID {
	if v, ok := ctx.Value(ContextKeyTenantID).(id.TenantID); ok {
		return v
	}
	return id.TenantID{}
}

func WithTenantID(ctx context.Context, tenantID id.TenantID) context.Context {
	return context.WithValue(ctx, ContextKeyTenantID, tenantID)
}

// WithActor sets actor, role and tenant in one call.
func WithActor(ctx context.Context, actorID id.UserID, role id.Role, tenantID id.TenantID) context.Context {
	ctx = WithActorID(ctx, actorID)
	ctx = WithRole(ctx, role)
	return WithTenantID(ctx, tenantID)
}

// -----------------------------------------------------------------------------
// Client metadata
// -----------------------------------------------------------------------------

func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return v
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ContextKeyUserAgent, ua)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now returns the request-scoped time, falling back to time.Now when the
// request time middleware did not run.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return v
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
