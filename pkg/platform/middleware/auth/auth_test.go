package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "coopreg/pkg/domain"
	"coopreg/pkg/requestcontext"
	"coopreg/pkg/testutil"
)

type stubValidator struct {
	actor *Actor
	err   error
}

func (s stubValidator) ValidateToken(string) (*Actor, error) { return s.actor, s.err }

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := &Actor{UserID: id.UserID(uuid.New()), Role: id.RoleRegistrar, TenantID: id.TenantID(uuid.New())}

	var seen *Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		seen = &Actor{UserID: requestcontext.ActorID(ctx), Role: requestcontext.Role(ctx), TenantID: requestcontext.TenantID(ctx)}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token stores the actor", func(t *testing.T) {
		h := RequireAuth(stubValidator{actor: actor}, logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/v1/applications", nil)
		req.Header.Set("Authorization", "Bearer abc")

		rr := testutil.DoRequest(h, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, actor, seen)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		h := RequireAuth(stubValidator{actor: actor}, logger)(next)
		rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/v1/applications", nil))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("wrong scheme is unauthorized", func(t *testing.T) {
		h := RequireAuth(stubValidator{actor: actor}, logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/v1/applications", nil)
		req.Header.Set("Authorization", "Basic abc")
		testutil.AssertStatus(t, testutil.DoRequest(h, req), http.StatusUnauthorized)
	})

	t.Run("rejected token is unauthorized", func(t *testing.T) {
		h := RequireAuth(stubValidator{err: errors.New("expired")}, logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/v1/applications", nil)
		req.Header.Set("Authorization", "Bearer abc")
		testutil.AssertStatusAndError(t, testutil.DoRequest(h, req), http.StatusUnauthorized, "unauthorized")
	})
}
