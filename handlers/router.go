package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/efek0349/mesaitakip/middleware"
)

type RouterOptions struct {
	Logger      *slog.Logger
	CORSOrigins []string
}

func NewRouter(auth *middleware.Auth, authHandler *AuthHandler, overtimeHandler *OvertimeHandler, settingsHandler *SettingsHandler, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowCredentials: true,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:           300,
		}))
	}

	router.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimiddleware.CleanPath)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Heartbeat("/healthz"))

	router.Post("/login", authHandler.Login)
	router.Post("/logout", authHandler.Logout)

	router.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Route("/entries/{date}", func(r chi.Router) {
			r.Get("/", overtimeHandler.GetEntry)
			r.Put("/", overtimeHandler.PutEntry)
			r.Delete("/", overtimeHandler.DeleteEntry)
		})

		r.Get("/months", overtimeHandler.ListMonths)
		r.Delete("/months", overtimeHandler.DeleteAll)
		r.Route("/months/{year}/{month}", func(r chi.Router) {
			r.Get("/", overtimeHandler.GetMonth)
			r.Delete("/", overtimeHandler.DeleteMonth)
		})

		r.Get("/years/{year}", overtimeHandler.GetYear)
		r.Get("/holidays/{year}", overtimeHandler.ListHolidays)
		r.Get("/rates/{date}", overtimeHandler.GetRate)

		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Put)
		r.Delete("/settings", settingsHandler.Reset)

		r.Get("/backup", overtimeHandler.ExportBackup)
		r.Post("/backup", overtimeHandler.ImportBackup)
		r.Get("/backup/{year}/{month}", overtimeHandler.ExportMonthBackup)

		r.Route("/reports/{year}/{month}", func(r chi.Router) {
			r.Get("/csv", overtimeHandler.ReportCSV)
			r.Get("/text", overtimeHandler.ReportText)
			r.Post("/email", overtimeHandler.ReportEmail)
		})

		r.Get("/events", overtimeHandler.Events)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		authHandler.fail(w, r, http.StatusNotFound, "not found")
	})

	return router
}
