package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/efek0349/mesaitakip/cache"
	"github.com/efek0349/mesaitakip/config"
	"github.com/efek0349/mesaitakip/database"
	"github.com/efek0349/mesaitakip/events"
	"github.com/efek0349/mesaitakip/handlers"
	"github.com/efek0349/mesaitakip/holidays"
	"github.com/efek0349/mesaitakip/ledger"
	"github.com/efek0349/mesaitakip/middleware"
	"github.com/efek0349/mesaitakip/report"
	"github.com/efek0349/mesaitakip/settings"
	"github.com/efek0349/mesaitakip/watcher"
)

type store interface {
	ledger.Store
	settings.Store
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var st store
	switch cfg.Storage.Driver {
	case "postgres":
		pg, err := database.OpenPostgres(cfg.Storage.DSN, database.PostgresOptions{
			AutoMigrate: cfg.Storage.AutoMigrate,
			MaxEntries:  cfg.Storage.MaxEntries,
		})
		if err != nil {
			return err
		}
		defer pg.Close()
		st = pg
	default:
		fs, err := database.NewFileStore(cfg.Storage.Path, cfg.Storage.MaxBytes, logger)
		if err != nil {
			return err
		}
		st = fs
	}
	logger.Info("storage ready", "driver", cfg.Storage.Driver)

	// Summary cache
	var summaries cache.Cache
	switch cfg.Cache.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		summaries = cache.NewRedis(rdb, cfg.Cache.RedisPrefix, cfg.Cache.TTL)
	default:
		summaries = cache.NewMemory(cfg.Cache.TTL)
	}

	bus := events.NewBus()
	defer bus.Close()

	salary, err := settings.NewService(ctx, st, bus, logger)
	if err != nil {
		return err
	}

	calendar := holidays.NewCalendar()
	overtime, err := ledger.Open(ctx, st, ledger.Options{
		Holidays: calendar,
		Settings: salary,
		Bus:      bus,
		Cache:    summaries,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer overtime.Close()
	logger.Info("ledger loaded", "months", len(overtime.MonthKeys()))

	var mailer handlers.ReportSender
	if cfg.MailEnabled() {
		m, err := report.NewMailer(report.MailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			SSL:      cfg.SMTP.SSL,
		})
		if err != nil {
			return err
		}
		mailer = m
	}

	if cfg.BackupInbox != "" {
		inbox, err := watcher.NewInbox(cfg.BackupInbox, overtime, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := inbox.Run(ctx); err != nil {
				logger.Error("backup inbox stopped", "error", err)
			}
		}()
		logger.Info("watching backup inbox", "dir", cfg.BackupInbox)
	}

	auth, err := middleware.NewAuth(cfg.Auth.Password, cfg.Auth.PasswordHash, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
	if err != nil {
		return err
	}
	if !auth.Enabled() {
		logger.Warn("no AUTH_PASSWORD set, the API is open")
	}

	// Initialize handlers
	authHandler, err := handlers.NewAuthHandler(auth, logger)
	if err != nil {
		return err
	}
	overtimeHandler, err := handlers.NewOvertimeHandler(overtime, calendar, salary, bus, mailer, logger)
	if err != nil {
		return err
	}
	settingsHandler, err := handlers.NewSettingsHandler(salary, logger)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(auth, authHandler, overtimeHandler, settingsHandler, handlers.RouterOptions{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	srv.RegisterOnShutdown(overtimeHandler.CloseStreams)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
