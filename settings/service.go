package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/efek0349/mesaitakip/events"
	"github.com/efek0349/mesaitakip/models"
)

var (
	// ErrNotFound is returned by a Store that has never saved settings.
	ErrNotFound = errors.New("settings not found")
	ErrInvalid  = errors.New("invalid settings")
)

type Store interface {
	LoadSettings(ctx context.Context) (models.SalarySettings, error)
	SaveSettings(ctx context.Context, s models.SalarySettings) error
}

// Service holds the installation's single SalarySettings value.
type Service struct {
	mu       sync.RWMutex
	current  models.SalarySettings
	store    Store
	bus      *events.Bus
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService loads the stored settings, falling back to defaults when none exist.
// bus and logger may be nil.
func NewService(ctx context.Context, store Store, bus *events.Bus, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	current, err := store.LoadSettings(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Info("no stored salary settings, using defaults")
		current = models.DefaultSalarySettings()
	case err != nil:
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return &Service{
		current:  current,
		store:    store,
		bus:      bus,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}, nil
}

func (s *Service) Current() models.SalarySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Validator exposes the validator used for settings so callers can register
// translations against it.
func (s *Service) Validator() *validator.Validate {
	return s.validate
}

// Update replaces the settings wholesale. The stored id is preserved.
func (s *Service) Update(ctx context.Context, next models.SalarySettings) error {
	if err := s.validate.Struct(next); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	s.mu.Lock()
	next.ID = s.current.ID
	if err := s.store.SaveSettings(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save settings: %w", err)
	}
	s.current = next
	s.mu.Unlock()

	s.logger.Info("salary settings updated")
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.SettingsUpdated})
	}
	return nil
}

func (s *Service) Reset(ctx context.Context) error {
	return s.Update(ctx, models.DefaultSalarySettings())
}
