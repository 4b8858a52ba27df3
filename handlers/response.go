package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/efek0349/mesaitakip/backup"
	"github.com/efek0349/mesaitakip/ledger"
	"github.com/efek0349/mesaitakip/settings"
)

const maxBodyBytes = 5 << 20

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// responder carries what every handler needs to decode, validate and answer.
type responder struct {
	validate   *validator.Validate
	translator ut.Translator
	logger     *slog.Logger
}

func newResponder(logger *slog.Logger) (responder, error) {
	return newResponderWith(logger, validator.New(validator.WithRequiredStructEnabled()))
}

// newResponderWith registers English translations on validate with a
// translator of its own. A translator accepts each rule only once.
func newResponderWith(logger *slog.Logger, validate *validator.Validate) (responder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return responder{}, err
	}
	return responder{validate: validate, translator: trans, logger: logger}, nil
}

func (h responder) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func (h responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func (h responder) success(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{Success: true, Message: msg, Data: data})
}

func (h responder) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, Response{Success: false, Message: msg})
}

// badRequest reports the first validation failure in English, or err as is.
func (h responder) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		h.fail(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
		return
	}
	h.fail(w, r, http.StatusBadRequest, err.Error())
}

// writeError maps domain errors to status codes.
func (h responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotPersisted):
		h.logger.Warn("change kept in memory only", "path", r.URL.Path, "error", err)
		h.fail(w, r, http.StatusInsufficientStorage, err.Error())
	case errors.Is(err, backup.ErrMalformed),
		errors.Is(err, settings.ErrInvalid),
		errors.Is(err, ledger.ErrEmptyDuration):
		h.badRequest(w, r, err)
	default:
		h.logger.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		h.fail(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// yearMonth parses the {year} and {month} URL parameters.
func yearMonth(r *http.Request) (int, time.Month, error) {
	year, err := yearParam(r)
	if err != nil {
		return 0, 0, err
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("invalid month")
	}
	return year, time.Month(month), nil
}

func yearParam(r *http.Request) (int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		return 0, errors.New("invalid year")
	}
	return year, nil
}
