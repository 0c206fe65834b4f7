package testutil

import (
	"net/http"

	id "coopreg/pkg/domain"
	"coopreg/pkg/requestcontext"
)

// WithActor attaches an authenticated actor to the request context, which is
// the state the auth middleware leaves behind.
func WithActor(req *http.Request, actor id.UserID, role id.Role, tenant id.TenantID) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor, role, tenant))
}
