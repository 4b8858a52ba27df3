package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/efek0349/mesaitakip/ledger"
	"github.com/efek0349/mesaitakip/models"
	"github.com/efek0349/mesaitakip/settings"
)

const (
	ledgerFile   = "ledger.json"
	settingsFile = "settings.json"
)

// FileStore keeps the ledger and settings as JSON files in one directory.
// Writes are atomic. A non-zero maxBytes caps the ledger file size.
type FileStore struct {
	mu       sync.Mutex
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

func NewFileStore(dir string, maxBytes int64, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes, logger: logger}, nil
}

// LoadLedger reads the ledger file. Entries that cannot be decoded are
// skipped; an unreadable file is set aside and an empty ledger returned.
func (s *FileStore) LoadLedger(ctx context.Context) (models.MonthlyData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, ledgerFile)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.MonthlyData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var months map[string][]json.RawMessage
	if err := json.Unmarshal(b, &months); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		s.logger.Warn("ledger file unreadable, starting empty", "error", err, "moved_to", aside)
		if err := os.Rename(path, aside); err != nil {
			return nil, fmt.Errorf("set aside corrupt ledger: %w", err)
		}
		return models.MonthlyData{}, nil
	}

	out := make(models.MonthlyData, len(months))
	for key, items := range months {
		for _, raw := range items {
			var e models.OvertimeEntry
			if err := json.Unmarshal(raw, &e); err != nil {
				s.logger.Warn("skipping undecodable ledger entry", "month", key, "error", err)
				continue
			}
			out[key] = append(out[key], e)
		}
	}
	return out, nil
}

func (s *FileStore) SaveLedger(ctx context.Context, data models.MonthlyData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if s.maxBytes > 0 && int64(len(b)) > s.maxBytes {
		return fmt.Errorf("ledger is %d bytes, limit %d: %w", len(b), s.maxBytes, ledger.ErrQuotaExceeded)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeFile(ledgerFile, b); err != nil {
		if errors.Is(err, syscall.ENOSPC) {
			return fmt.Errorf("write ledger: %w: %w", err, ledger.ErrQuotaExceeded)
		}
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

func (s *FileStore) LoadSettings(ctx context.Context) (models.SalarySettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return models.SalarySettings{}, settings.ErrNotFound
	}
	if err != nil {
		return models.SalarySettings{}, fmt.Errorf("read settings: %w", err)
	}

	var out models.SalarySettings
	if err := json.Unmarshal(b, &out); err != nil {
		s.logger.Warn("settings file unreadable, using defaults", "error", err)
		return models.SalarySettings{}, settings.ErrNotFound
	}
	return out, nil
}

func (s *FileStore) SaveSettings(ctx context.Context, in models.SalarySettings) error {
	b, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(settingsFile, b)
}

// writeFile replaces name through a temp file and rename.
func (s *FileStore) writeFile(name string, b []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
