package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	OwnerContextKey contextKey = "owner"
	TokenCookie                = "token"
	ownerSubject               = "owner"
)

type Claims struct {
	jwt.RegisteredClaims
}

// Auth guards the API behind a single owner password. With no password
// configured every request is let through.
type Auth struct {
	secret       []byte
	expiration   time.Duration
	passwordHash []byte
}

// NewAuth accepts either a plain password or an existing bcrypt hash.
func NewAuth(password, passwordHash, secret string, expiration time.Duration) (*Auth, error) {
	a := &Auth{secret: []byte(secret), expiration: expiration}
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, err
		}
		a.passwordHash = []byte(passwordHash)
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		a.passwordHash = hash
	}
	if a.Enabled() && len(a.secret) == 0 {
		return nil, errors.New("auth: a JWT secret is required when a password is set")
	}
	return a, nil
}

func (a *Auth) Enabled() bool {
	return len(a.passwordHash) > 0
}

func (a *Auth) Expiration() time.Duration {
	return a.expiration
}

func (a *Auth) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

func (a *Auth) GenerateToken() (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Subject == ownerSubject {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

func (a *Auth) SetTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.expiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func tokenFromRequest(r *http.Request) string {
	// Try to get token from cookie first
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			unauthorized(w, "login required")
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			ClearTokenCookie(w)
			unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), OwnerContextKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": msg,
		"data":    nil,
	})
}

// OwnerFromContext reports whether the request was authenticated.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(OwnerContextKey).(string)
	return owner, ok
}
