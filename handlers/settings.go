package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/efek0349/mesaitakip/models"
	"github.com/efek0349/mesaitakip/payroll"
	"github.com/efek0349/mesaitakip/settings"
)

// SettingsService is the part of *settings.Service the API needs.
type SettingsService interface {
	Current() models.SalarySettings
	Update(ctx context.Context, next models.SalarySettings) error
	Reset(ctx context.Context) error
}

type SettingsHandler struct {
	responder
	service SettingsService
}

func NewSettingsHandler(service SettingsService, logger *slog.Logger) (*SettingsHandler, error) {
	// Share the service's validator so badRequest can translate its errors.
	validate := validator.New(validator.WithRequiredStructEnabled())
	if v, ok := service.(interface{ Validator() *validator.Validate }); ok {
		validate = v.Validator()
	}
	res, err := newResponderWith(logger, validate)
	if err != nil {
		return nil, err
	}
	return &SettingsHandler{responder: res, service: service}, nil
}

type settingsResponse struct {
	models.SalarySettings
	GrossHourlyRate string `json:"grossHourlyRate"`
}

func (h *SettingsHandler) view(s models.SalarySettings) settingsResponse {
	return settingsResponse{
		SalarySettings:  s,
		GrossHourlyRate: payroll.GrossHourlyRate(s).StringFixed(2),
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.success(w, r, "", h.view(h.service.Current()))
}

// Put applies a partial update. Numeric fields may be sent as text.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	form := settings.NewForm(h.service.Current())
	if err := h.readJSON(w, r, &form); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), form.Settings()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, "settings saved", h.view(h.service.Current()))
}

func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, "settings reset", h.view(h.service.Current()))
}
