package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efek0349/mesaitakip/backup"
	"github.com/efek0349/mesaitakip/events"
	"github.com/efek0349/mesaitakip/holidays"
	"github.com/efek0349/mesaitakip/ledger"
	"github.com/efek0349/mesaitakip/models"
	"github.com/efek0349/mesaitakip/payroll"
	"github.com/efek0349/mesaitakip/report"
)

const sseKeepAlive = 30 * time.Second

type SettingsProvider interface {
	Current() models.SalarySettings
}

// ReportSender mails a rendered month. *report.Mailer implements it.
type ReportSender interface {
	Send(ctx context.Context, to string, m report.Month) error
}

type OvertimeHandler struct {
	responder
	ledger   *ledger.Ledger
	calendar *holidays.Calendar
	settings SettingsProvider
	bus      *events.Bus
	mailer   ReportSender

	closing   chan struct{}
	closeOnce sync.Once
}

// NewOvertimeHandler builds the ledger API. bus and mailer may be nil, which
// disables the event stream and report e-mail respectively.
func NewOvertimeHandler(l *ledger.Ledger, cal *holidays.Calendar, s SettingsProvider, bus *events.Bus, mailer ReportSender, logger *slog.Logger) (*OvertimeHandler, error) {
	res, err := newResponder(logger)
	if err != nil {
		return nil, err
	}
	return &OvertimeHandler{
		responder: res,
		ledger:    l,
		calendar:  cal,
		settings:  s,
		bus:       bus,
		mailer:    mailer,
		closing:   make(chan struct{}),
	}, nil
}

type entryRequest struct {
	Hours   int    `json:"hours" validate:"min=0,max=23"`
	Minutes int    `json:"minutes" validate:"min=0,max=59"`
	Note    string `json:"note" validate:"max=200"`
}

type monthResponse struct {
	Year           int                      `json:"year"`
	Month          int                      `json:"month"`
	Entries        []models.OvertimeEntry   `json:"entries"`
	TotalHours     float64                  `json:"totalHours"`
	TotalFormatted string                   `json:"totalFormatted"`
	Breakdown      payroll.PaymentBreakdown `json:"breakdown"`
}

type yearResponse struct {
	ledger.YearlySummary
	RawHours float64 `json:"rawHours"`
}

type emailRequest struct {
	To string `json:"to" validate:"required,email"`
}

func (h *OvertimeHandler) dateParam(w http.ResponseWriter, r *http.Request) (models.Date, bool) {
	d, err := models.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.badRequest(w, r, err)
		return models.Date{}, false
	}
	return d, true
}

func (h *OvertimeHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	entry, found := h.ledger.EntryFor(d)
	if !found {
		h.fail(w, r, http.StatusNotFound, "no overtime recorded for "+d.String())
		return
	}
	h.success(w, r, "", entry)
}

// PutEntry records the day's overtime. A zero duration removes the entry.
func (h *OvertimeHandler) PutEntry(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Hours == 0 && req.Minutes == 0 {
		if err := h.ledger.Remove(r.Context(), d); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.success(w, r, "entry removed", nil)
		return
	}

	entry, err := h.ledger.Upsert(r.Context(), d, req.Hours, req.Minutes, req.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, "entry saved", entry)
}

func (h *OvertimeHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	if err := h.ledger.Remove(r.Context(), d); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, "entry removed", nil)
}

func (h *OvertimeHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	s := h.settings.Current()
	total := h.ledger.MonthlyTotal(r.Context(), year, month, s.DeductBreakTime)
	h.success(w, r, "", monthResponse{
		Year:           year,
		Month:          int(month),
		Entries:        h.ledger.MonthlyEntries(year, month),
		TotalHours:     total,
		TotalFormatted: report.FormatHours(total),
		Breakdown:      h.ledger.MonthlyPaymentBreakdown(r.Context(), year, month).Round(),
	})
}

func (h *OvertimeHandler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.ledger.ClearMonth(r.Context(), year, month); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, "month cleared", nil)
}

func (h *OvertimeHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.ClearAll(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, "all overtime cleared", nil)
}

func (h *OvertimeHandler) ListMonths(w http.ResponseWriter, r *http.Request) {
	h.success(w, r, "", h.ledger.MonthKeys())
}

func (h *OvertimeHandler) GetYear(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	h.success(w, r, "", yearResponse{
		YearlySummary: h.ledger.YearlySummary(r.Context(), year),
		RawHours:      h.ledger.YearlyTotal(r.Context(), year, false),
	})
}

func (h *OvertimeHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	h.success(w, r, "", h.calendar.ForYear(year))
}

func (h *OvertimeHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	h.success(w, r, "", payroll.Breakdown(d, h.calendar.IsHoliday(d), h.settings.Current()))
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	_, _ = w.Write(body)
}

func (h *OvertimeHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	body, err := backup.Export(h.ledger.Snapshot())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filename := fmt.Sprintf("overtime-backup-%s.json", models.DateOf(time.Now()))
	writeAttachment(w, "application/json", filename, body)
}

func (h *OvertimeHandler) ExportMonthBackup(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	body, err := backup.ExportMonth(h.ledger.Snapshot(), year, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filename := fmt.Sprintf("overtime-%s.json", models.MonthKey(year, month))
	writeAttachment(w, "application/json", filename, body)
}

func (h *OvertimeHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	text, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	n, err := backup.Import(r.Context(), text, h.ledger)
	if err != nil {
		var verr *backup.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, r, http.StatusBadRequest, Response{Message: verr.Error(), Data: verr})
			return
		}
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, fmt.Sprintf("%d entries imported", n), map[string]int{"imported": n})
}

func (h *OvertimeHandler) month(ctx context.Context, year int, month time.Month) report.Month {
	return report.Month{
		Year:      year,
		Month:     month,
		Entries:   h.ledger.MonthlyEntries(year, month),
		Settings:  h.settings.Current(),
		Breakdown: h.ledger.MonthlyPaymentBreakdown(ctx, year, month),
		Holidays:  h.calendar,
	}
}

func (h *OvertimeHandler) ReportCSV(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	body, err := report.CSV(h.month(r.Context(), year, month))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filename := fmt.Sprintf("timesheet-%s.csv", models.MonthKey(year, month))
	writeAttachment(w, "text/csv", filename, body)
}

func (h *OvertimeHandler) ReportText(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, report.Text(h.month(r.Context(), year, month)))
}

func (h *OvertimeHandler) ReportEmail(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		h.fail(w, r, http.StatusServiceUnavailable, "e-mail is not configured")
		return
	}
	year, month, err := yearMonth(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var req emailRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.mailer.Send(r.Context(), req.To, h.month(r.Context(), year, month)); err != nil {
		h.logger.Error("send report", "to", req.To, "error", err)
		h.fail(w, r, http.StatusBadGateway, "could not send the report")
		return
	}
	h.success(w, r, "report sent", nil)
}

// CloseStreams ends every open event stream. http.Server.Shutdown does not
// cancel request contexts, so register it with RegisterOnShutdown.
func (h *OvertimeHandler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// Events streams ledger and settings changes as server-sent events.
func (h *OvertimeHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		h.fail(w, r, http.StatusServiceUnavailable, "event stream is not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.fail(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// The stream outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ch, cleanup := h.bus.Channel(16)
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepAlive)
	defer keepalive.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-h.closing:
			return
		}
	}
}
