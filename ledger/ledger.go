package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/efek0349/mesaitakip/cache"
	"github.com/efek0349/mesaitakip/events"
	"github.com/efek0349/mesaitakip/holidays"
	"github.com/efek0349/mesaitakip/models"
)

var (
	ErrEmptyDuration = errors.New("overtime entry has no duration")
	// ErrQuotaExceeded is returned by a Store that ran out of space.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrNotPersisted wraps store failures after a mutation. The change is
	// still applied in memory.
	ErrNotPersisted = errors.New("ledger change not persisted")
)

// DefaultRetentionYears is how much history survives a quota prune.
const DefaultRetentionYears = 2

type Store interface {
	LoadLedger(ctx context.Context) (models.MonthlyData, error)
	SaveLedger(ctx context.Context, data models.MonthlyData) error
}

type HolidayLookup interface {
	Get(d models.Date) (models.Holiday, bool)
}

type SettingsSource interface {
	Current() models.SalarySettings
}

type staticSettings models.SalarySettings

func (s staticSettings) Current() models.SalarySettings { return models.SalarySettings(s) }

type Options struct {
	Holidays       HolidayLookup
	Settings       SettingsSource
	Bus            *events.Bus
	Cache          cache.Cache
	Logger         *slog.Logger
	Now            func() time.Time
	RetentionYears int
}

// Ledger is the in-memory overtime ledger backed by a Store.
type Ledger struct {
	mu   sync.RWMutex
	data models.MonthlyData

	store     Store
	holidays  HolidayLookup
	settings  SettingsSource
	bus       *events.Bus
	cache     cache.Cache
	logger    *slog.Logger
	now       func() time.Time
	retention int

	generation  atomic.Int64
	unsubscribe func()
}

// Open loads the ledger from store, dropping entries that fail validation.
func Open(ctx context.Context, store Store, opts Options) (*Ledger, error) {
	l := &Ledger{
		store:     store,
		holidays:  opts.Holidays,
		settings:  opts.Settings,
		bus:       opts.Bus,
		cache:     opts.Cache,
		logger:    opts.Logger,
		now:       opts.Now,
		retention: opts.RetentionYears,
	}
	if l.holidays == nil {
		l.holidays = holidays.NewCalendar()
	}
	if l.settings == nil {
		l.settings = staticSettings(models.DefaultSalarySettings())
	}
	if l.cache == nil {
		l.cache = cache.NewMemory(cache.DefaultTTL)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.retention <= 0 {
		l.retention = DefaultRetentionYears
	}
	l.generation.Store(time.Now().UnixNano())

	data, err := store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	l.data = l.clean(data)

	if l.bus != nil {
		l.unsubscribe = l.bus.Subscribe(func(e events.Event) {
			if e.Kind == events.SettingsUpdated {
				l.generation.Add(1)
			}
		})
	}
	return l, nil
}

// Close detaches the ledger from the event bus.
func (l *Ledger) Close() error {
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
	return nil
}

func (l *Ledger) clean(data models.MonthlyData) models.MonthlyData {
	out := make(models.MonthlyData, len(data))
	dropped := 0
	for key, entries := range data {
		if _, _, err := models.ParseMonthKey(key); err != nil {
			dropped += len(entries)
			l.logger.Warn("dropping stored month with invalid key", "month", key, "entries", len(entries))
			continue
		}
		kept := make([]models.OvertimeEntry, 0, len(entries))
		for _, e := range entries {
			if err := e.Validate(key); err != nil {
				dropped++
				l.logger.Warn("dropping invalid stored entry", "month", key, "id", e.ID, "error", err)
				continue
			}
			e.TotalHours = models.TotalHours(e.Hours, e.Minutes)
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			continue
		}
		models.SortEntries(kept)
		out[key] = kept
	}
	if dropped > 0 {
		l.logger.Info("ledger loaded with invalid entries removed", "dropped", dropped, "entries", out.Len())
	}
	return out
}

// Upsert stores an entry for date, replacing any existing one. A
// persistence failure is reported with ErrNotPersisted and the entry is
// still returned.
func (l *Ledger) Upsert(ctx context.Context, date models.Date, hours, minutes int, note string) (models.OvertimeEntry, error) {
	if hours == 0 && minutes == 0 {
		return models.OvertimeEntry{}, ErrEmptyDuration
	}
	entry := models.NewOvertimeEntry(date, hours, minutes, note)
	key := date.MonthKey()

	l.mu.Lock()
	l.data[key] = upsertEntry(l.data[key], entry)
	err := l.commitLocked(ctx)
	l.mu.Unlock()

	l.publish(events.Event{Kind: events.EntryUpserted, MonthKey: key, Date: date.String()})
	return entry, err
}

func upsertEntry(entries []models.OvertimeEntry, entry models.OvertimeEntry) []models.OvertimeEntry {
	for i := range entries {
		if entries[i].Date == entry.Date {
			entries[i] = entry
			return entries
		}
	}
	entries = append(entries, entry)
	models.SortEntries(entries)
	return entries
}

// Remove deletes the entry for date. Removing a missing entry is a no-op.
func (l *Ledger) Remove(ctx context.Context, date models.Date) error {
	key := date.MonthKey()

	l.mu.Lock()
	entries, ok := l.data[key]
	idx := -1
	for i := range entries {
		if entries[i].Date == date {
			idx = i
			break
		}
	}
	if !ok || idx < 0 {
		l.mu.Unlock()
		return nil
	}
	entries = append(entries[:idx], entries[idx+1:]...)
	if len(entries) == 0 {
		delete(l.data, key)
	} else {
		l.data[key] = entries
	}
	err := l.commitLocked(ctx)
	l.mu.Unlock()

	l.publish(events.Event{Kind: events.EntryRemoved, MonthKey: key, Date: date.String()})
	return err
}

func (l *Ledger) ClearMonth(ctx context.Context, year int, month time.Month) error {
	key := models.MonthKey(year, month)

	l.mu.Lock()
	if _, ok := l.data[key]; !ok {
		l.mu.Unlock()
		return nil
	}
	delete(l.data, key)
	err := l.commitLocked(ctx)
	l.mu.Unlock()

	l.publish(events.Event{Kind: events.MonthCleared, MonthKey: key})
	return err
}

func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	l.data = make(models.MonthlyData)
	err := l.commitLocked(ctx)
	l.mu.Unlock()

	l.publish(events.Event{Kind: events.LedgerCleared})
	return err
}

// Merge upserts every entry of data by date. Imported entries keep their
// ids and win over local ones; local entries on other dates are kept.
// It returns the number of entries merged.
func (l *Ledger) Merge(ctx context.Context, data models.MonthlyData) (int, error) {
	n := 0
	l.mu.Lock()
	for _, key := range data.Keys() {
		for _, e := range data[key] {
			l.data[key] = upsertEntry(l.data[key], e)
			n++
		}
	}
	if n == 0 {
		l.mu.Unlock()
		return 0, nil
	}
	err := l.commitLocked(ctx)
	l.mu.Unlock()

	l.publish(events.Event{Kind: events.LedgerImported})
	return n, err
}

// commitLocked bumps the cache generation and persists. On a quota error
// months older than the retention window are pruned and the save is retried
// once. Callers must hold l.mu.
func (l *Ledger) commitLocked(ctx context.Context) error {
	l.generation.Add(1)

	err := l.store.SaveLedger(ctx, l.data.Clone())
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		l.logger.Error("saving ledger failed", "error", err)
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	pruned := l.pruneLocked()
	l.logger.Warn("storage quota exceeded, pruned old months", "months", pruned)
	if err := l.store.SaveLedger(ctx, l.data.Clone()); err != nil {
		l.logger.Error("saving ledger failed after prune", "error", err)
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return nil
}

// pruneLocked drops month keys older than the retention cutoff.
func (l *Ledger) pruneLocked() []string {
	cutoff := models.DateOf(l.now().AddDate(-l.retention, 0, 0)).MonthKey()
	var pruned []string
	for _, key := range l.data.Keys() {
		if key < cutoff {
			delete(l.data, key)
			pruned = append(pruned, key)
		}
	}
	if len(pruned) > 0 {
		l.generation.Add(1)
	}
	return pruned
}

func (l *Ledger) publish(e events.Event) {
	if l.bus == nil {
		return
	}
	e.At = l.now()
	l.bus.Publish(e)
}

func (l *Ledger) EntryFor(date models.Date) (models.OvertimeEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.data[date.MonthKey()] {
		if e.Date == date {
			return e, true
		}
	}
	return models.OvertimeEntry{}, false
}

// MonthlyEntries returns a copy of the month's entries ordered by date.
func (l *Ledger) MonthlyEntries(year int, month time.Month) []models.OvertimeEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]models.OvertimeEntry{}, l.data[models.MonthKey(year, month)]...)
}

// Snapshot returns a deep copy of the whole ledger.
func (l *Ledger) Snapshot() models.MonthlyData {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.data.Clone()
}

// MonthKeys lists the months that hold entries, ascending.
func (l *Ledger) MonthKeys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.data.Keys()
}
