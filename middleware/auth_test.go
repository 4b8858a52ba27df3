package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := OwnerFromContext(r.Context())
		if ok {
			w.Header().Set("X-Owner", owner)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth_Disabled(t *testing.T) {
	a, err := NewAuth("", "", "", time.Hour)
	require.NoError(t, err)
	assert.False(t, a.Enabled())

	rec := httptest.NewRecorder()
	a.Middleware(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/entries/2025-03-03", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuth_RequiresSecret(t *testing.T) {
	_, err := NewAuth("hunter2", "", "", time.Hour)
	require.Error(t, err)
}

func TestAuth_PasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	a, err := NewAuth("", string(hash), "secret", time.Hour)
	require.NoError(t, err)
	assert.True(t, a.CheckPassword("hunter2"))
	assert.False(t, a.CheckPassword("hunter3"))

	_, err = NewAuth("", "not-a-hash", "secret", time.Hour)
	require.Error(t, err)
}

func TestAuth_Middleware(t *testing.T) {
	a, err := NewAuth("hunter2", "", "secret", time.Hour)
	require.NoError(t, err)
	token, err := a.GenerateToken()
	require.NoError(t, err)

	other, err := NewAuth("hunter2", "", "other-secret", time.Hour)
	require.NoError(t, err)
	forged, err := other.GenerateToken()
	require.NoError(t, err)

	expired, err := NewAuth("hunter2", "", "secret", -time.Minute)
	require.NoError(t, err)
	stale, err := expired.GenerateToken()
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{name: "no token", setup: func(*http.Request) {}, status: http.StatusUnauthorized},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) }, status: http.StatusNoContent},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, status: http.StatusNoContent},
		{name: "wrong secret", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+forged) }, status: http.StatusUnauthorized},
		{name: "expired", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+stale) }, status: http.StatusUnauthorized},
		{name: "malformed header", setup: func(r *http.Request) { r.Header.Set("Authorization", token) }, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			a.Middleware(okHandler(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "owner", rec.Header().Get("X-Owner"))
			} else {
				assert.JSONEq(t, `{"success": false, "message": "`+messageFor(tt.name)+`", "data": null}`, rec.Body.String())
			}
		})
	}
}

func messageFor(name string) string {
	if name == "no token" || name == "malformed header" {
		return "login required"
	}
	return "invalid or expired token"
}

func TestAuth_ValidateTokenRejectsOtherAlg(t *testing.T) {
	a, err := NewAuth("hunter2", "", "secret", time.Hour)
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: ownerSubject}})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = a.ValidateToken(signed)
	require.Error(t, err)
}
