package middleware_test

import (
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/test/mocks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestToken(t *testing.T, key *rsa.PrivateKey, role, sessionID string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  "user-123",
		"role": role,
		"jti":  sessionID,
		"exp":  exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func okHandler(called *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}
}

func TestRequireRole(t *testing.T) {
	privateKey, publicKey := mocks.TestKeys(t)
	sessions := mocks.NewMockSessionStore()
	require.NoError(t, sessions.Create(t.Context(), "live-session", "user-123", time.Hour))
	m := middleware.NewAuthMiddleware(publicKey, sessions)

	hour := time.Now().Add(time.Hour)
	tests := []struct {
		name   string
		header string
		roles  []domain.Role
		want   int
	}{
		{"no header", "", nil, http.StatusUnauthorized},
		{"bad format", "Token abc", nil, http.StatusUnauthorized},
		{"garbage token", "Bearer invalid.token.here", nil, http.StatusUnauthorized},
		{"expired", "Bearer " + createTestToken(t, privateKey, "staff", "live-session", time.Now().Add(-time.Hour)), nil, http.StatusUnauthorized},
		{"revoked session", "Bearer " + createTestToken(t, privateKey, "staff", "gone", hour), nil, http.StatusUnauthorized},
		{"missing session", "Bearer " + createTestToken(t, privateKey, "staff", "", hour), nil, http.StatusUnauthorized},
		{"wrong role", "Bearer " + createTestToken(t, privateKey, "student", "live-session", hour), []domain.Role{domain.RoleStaff, domain.RoleAdmin}, http.StatusForbidden},
		{"allowed role", "Bearer " + createTestToken(t, privateKey, "staff", "live-session", hour), []domain.Role{domain.RoleStaff}, http.StatusOK},
		{"any role", "Bearer " + createTestToken(t, privateKey, "teacher", "live-session", hour), nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			m.RequireRole(tt.roles, okHandler(&called))(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want == http.StatusOK, called)
		})
	}
}

func TestRequireRole_HMACTokenRejected(t *testing.T) {
	_, publicKey := mocks.TestKeys(t)
	m := middleware.NewAuthMiddleware(publicKey, nil)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+hs)
	rec := httptest.NewRecorder()
	m.Authenticate(okHandler(&called))(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireRole_SessionStoreDown(t *testing.T) {
	privateKey, publicKey := mocks.TestKeys(t)
	sessions := mocks.NewMockSessionStore()
	sessions.ExistsError = assert.AnError
	m := middleware.NewAuthMiddleware(publicKey, sessions)

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+createTestToken(t, privateKey, "staff", "s", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	m.Authenticate(okHandler(&called))(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, called)
}

func TestRequireRole_PrincipalInContext(t *testing.T) {
	privateKey, publicKey := mocks.TestKeys(t)
	m := middleware.NewAuthMiddleware(publicKey, nil)

	var got middleware.Principal
	var ok bool
	handler := m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		got, ok = middleware.PrincipalFrom(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+createTestToken(t, privateKey, "teacher", "sess-1", time.Now().Add(time.Hour)))
	handler(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, middleware.Principal{UserID: "user-123", Role: domain.RoleTeacher, SessionID: "sess-1"}, got)
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := middleware.CORSMiddleware([]string{"http://localhost:5173"})(next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		req.Header.Set("Origin", "http://evil.test")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/loans", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestAccessLog_RecordsStatus(t *testing.T) {
	h := middleware.AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
