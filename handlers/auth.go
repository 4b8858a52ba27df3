package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/efek0349/mesaitakip/middleware"
)

type AuthHandler struct {
	responder
	auth *middleware.Auth
}

func NewAuthHandler(auth *middleware.Auth, logger *slog.Logger) (*AuthHandler, error) {
	res, err := newResponder(logger)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{responder: res, auth: auth}, nil
}

type loginRequest struct {
	Password string `json:"password" validate:"required,max=128"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.auth.Enabled() {
		h.success(w, r, "login is not required", nil)
		return
	}

	var req loginRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !h.auth.CheckPassword(req.Password) {
		h.logger.Warn("failed login attempt", "remote", r.RemoteAddr)
		h.fail(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.auth.GenerateToken()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.auth.SetTokenCookie(w, token)

	h.success(w, r, "logged in", loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.auth.Expiration()),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearTokenCookie(w)
	h.success(w, r, "logged out", nil)
}
