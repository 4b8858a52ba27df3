package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/efek0349/mesaitakip/ledger"
	"github.com/efek0349/mesaitakip/models"
	"github.com/efek0349/mesaitakip/settings"
)

const settingsID = 1

type PostgresOptions struct {
	AutoMigrate bool
	// MaxEntries caps the ledger size; 0 means unlimited.
	MaxEntries int
	LogLevel   logger.LogLevel
}

// PostgresStore keeps the ledger and salary settings in Postgres.
type PostgresStore struct {
	db         *gorm.DB
	maxEntries int
}

func OpenPostgres(dsn string, opts PostgresOptions) (*PostgresStore, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if opts.AutoMigrate {
		if err := db.AutoMigrate(&models.OvertimeEntry{}, &models.SalarySettings{}); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	s := &PostgresStore{db: db, maxEntries: opts.MaxEntries}
	if err := s.seedDefaultSettings(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) seedDefaultSettings() error {
	var count int64
	if err := s.db.Model(&models.SalarySettings{}).Where("id = ?", settingsID).Count(&count).Error; err != nil {
		return fmt.Errorf("count settings: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := models.DefaultSalarySettings()
	defaults.ID = settingsID
	if err := s.db.Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	slog.Info("default salary settings created")
	return nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) LoadLedger(ctx context.Context) (models.MonthlyData, error) {
	var entries []models.OvertimeEntry
	if err := s.db.WithContext(ctx).Order("date").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return models.Group(entries), nil
}

// SaveLedger replaces the stored ledger with data in one transaction.
func (s *PostgresStore) SaveLedger(ctx context.Context, data models.MonthlyData) error {
	entries := data.Entries()
	if s.maxEntries > 0 && len(entries) > s.maxEntries {
		return fmt.Errorf("%d entries over limit %d: %w", len(entries), s.maxEntries, ledger.ErrQuotaExceeded)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.OvertimeEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.CreateInBatches(entries, 200).Error
	})
	return mapError(err)
}

func (s *PostgresStore) LoadSettings(ctx context.Context) (models.SalarySettings, error) {
	var out models.SalarySettings
	err := s.db.WithContext(ctx).First(&out, settingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SalarySettings{}, settings.ErrNotFound
	}
	if err != nil {
		return models.SalarySettings{}, fmt.Errorf("load settings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveSettings(ctx context.Context, in models.SalarySettings) error {
	in.ID = settingsID
	return mapError(s.db.WithContext(ctx).Save(&in).Error)
}

// mapError turns Postgres out-of-space errors into ledger.ErrQuotaExceeded.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "53100", "53200", "54000": // disk_full, out_of_memory, program_limit_exceeded
			return fmt.Errorf("%s: %w", pgErr.Message, ledger.ErrQuotaExceeded)
		}
	}
	return err
}
