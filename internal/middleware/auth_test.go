package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockpress/internal/models"
	"blockpress/internal/session"
)

func newTestSession(role models.Role, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@blockpress.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// okHandler records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

type fakeSessions struct {
	data *session.Data
	err  error
}

func (f fakeSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return f.data, f.err
}

func TestLoadSessionStoresData(t *testing.T) {
	sess := newTestSession(models.RoleAdmin, true)
	var got *session.Data
	h := LoadSession(fakeSessions{data: sess})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromCtx(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Same(t, sess, got)
}

func TestLoadSessionErrorContinues(t *testing.T) {
	next, called := okHandler()
	h := LoadSession(fakeSessions{err: errors.New("valkey down")})(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	next, called := okHandler()
	rec := httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/sites", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())
	assert.False(t, *called)

	next, called = okHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/sites", nil)
	req = req.WithContext(WithSession(req.Context(), newTestSession(models.RoleEditor, false)))
	rec = httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
}

func TestRequire2FA(t *testing.T) {
	tests := []struct {
		name string
		sess *session.Data
		want int
	}{
		{"no session", nil, http.StatusForbidden},
		{"pending", newTestSession(models.RoleAdmin, false), http.StatusForbidden},
		{"done", newTestSession(models.RoleAdmin, true), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.sess != nil {
				req = req.WithContext(WithSession(req.Context(), tt.sess))
			}
			rec := httptest.NewRecorder()
			Require2FA(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		mw   func(http.Handler) http.Handler
		want int
	}{
		{"master allowed", models.RoleMaster, RequireMaster, http.StatusOK},
		{"admin denied master", models.RoleAdmin, RequireMaster, http.StatusForbidden},
		{"admin in list", models.RoleAdmin, RequireRole(models.RoleMaster, models.RoleAdmin), http.StatusOK},
		{"editor not in list", models.RoleEditor, RequireRole(models.RoleMaster, models.RoleAdmin), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = req.WithContext(WithSession(req.Context(), newTestSession(tt.role, true)))
			rec := httptest.NewRecorder()
			tt.mw(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSessionFromCtxEmpty(t *testing.T) {
	require.Nil(t, SessionFromCtx(context.Background()))
}
