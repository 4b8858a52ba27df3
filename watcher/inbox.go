// Package watcher imports backup files dropped into an inbox directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/efek0349/mesaitakip/backup"
	"github.com/efek0349/mesaitakip/ledger"
)

const (
	ImportedDir = "imported"
	FailedDir   = "failed"
)

// Inbox watches a directory for *.json backups, merges each one and moves it
// to imported/ or failed/.
type Inbox struct {
	dir    string
	merger backup.Merger
	logger *slog.Logger

	tick   time.Duration
	settle time.Duration
}

func NewInbox(dir string, merger backup.Merger, logger *slog.Logger) (*Inbox, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, sub := range []string{ImportedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create inbox: %w", err)
		}
	}
	return &Inbox{
		dir:    dir,
		merger: merger,
		logger: logger.With("inbox", dir),
		tick:   250 * time.Millisecond,
		settle: 300 * time.Millisecond,
	}, nil
}

func isBackupFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json") && !strings.HasPrefix(name, ".")
}

// Run imports files already in the inbox, then watches it until ctx is done.
func (in *Inbox) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(in.dir); err != nil {
		return err
	}

	existing, err := os.ReadDir(in.dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(existing))
	for _, e := range existing {
		if e.Type().IsRegular() && isBackupFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		in.process(ctx, name)
	}

	in.logger.Info("watching backup inbox")

	// Files are picked up once no event has touched them for the settle period.
	pending := map[string]time.Time{}
	ticker := time.NewTicker(in.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if filepath.Dir(ev.Name) != filepath.Clean(in.dir) || !isBackupFile(name) {
				continue
			}
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			var ready []string
			for name, t := range pending {
				if now.Sub(t) > in.settle {
					ready = append(ready, name)
					delete(pending, name)
				}
			}
			sort.Strings(ready)
			for _, name := range ready {
				in.process(ctx, name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Warn("watch error", "error", err)
		}
	}
}

func (in *Inbox) process(ctx context.Context, name string) {
	if err := in.ProcessFile(ctx, name); err != nil {
		in.logger.Error("backup import failed", "file", name, "error", err)
	}
}

// ProcessFile imports one file from the inbox and files it away. A backup
// that was merged but could not be persisted still counts as imported.
func (in *Inbox) ProcessFile(ctx context.Context, name string) error {
	path := filepath.Join(in.dir, name)
	text, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	n, importErr := backup.Import(ctx, text, in.merger)
	dest := ImportedDir
	switch {
	case importErr == nil:
		in.logger.Info("backup imported", "file", name, "entries", n)
	case errors.Is(importErr, ledger.ErrNotPersisted):
		in.logger.Warn("backup imported but not persisted", "file", name, "entries", n, "error", importErr)
	default:
		dest = FailedDir
	}

	if err := in.move(name, dest); err != nil {
		return errors.Join(importErr, err)
	}
	if dest == FailedDir {
		return importErr
	}
	return nil
}

// move files name under sub, prefixing a timestamp when the name is taken.
func (in *Inbox) move(name, sub string) error {
	target := filepath.Join(in.dir, sub, name)
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(in.dir, sub, fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))
	}
	return os.Rename(filepath.Join(in.dir, name), target)
}
