package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efek0349/mesaitakip/events"
	"github.com/efek0349/mesaitakip/models"
)

type mutableSettings struct {
	mu sync.Mutex
	s  models.SalarySettings
}

func (m *mutableSettings) Current() models.SalarySettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

func (m *mutableSettings) set(fn func(s *models.SalarySettings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.s)
}

func seed(t *testing.T, l *Ledger, entries ...models.OvertimeEntry) {
	t.Helper()
	for _, e := range entries {
		_, err := l.Upsert(context.Background(), e.Date, e.Hours, e.Minutes, e.Note)
		require.NoError(t, err)
	}
}

func TestLedger_MonthlyTotal(t *testing.T) {
	ctx := context.Background()
	settings := &mutableSettings{s: models.DefaultSalarySettings()}
	bus := events.NewBus()
	l := openLedger(t, &memStore{}, Options{Settings: settings, Bus: bus})

	seed(t, l,
		entry(2025, time.March, 1, 5, 0), // Saturday: 4.5
		entry(2025, time.March, 2, 8, 0), // Sunday: 7
		entry(2025, time.March, 3, 8, 0),  // Monday: 8
		entry(2025, time.March, 31, 3, 0), // Monday, Ramazan Bayramı: 2.75
	)

	assert.Equal(t, 22.25, l.MonthlyTotal(ctx, 2025, time.March, true))
	assert.Equal(t, 24.0, l.MonthlyTotal(ctx, 2025, time.March, false))
	assert.Equal(t, 0.0, l.MonthlyTotal(ctx, 2025, time.April, true))

	settings.set(func(s *models.SalarySettings) { s.IsSaturdayWork = true })
	bus.Publish(events.Event{Kind: events.SettingsUpdated})

	// Saturday work only spares Saturdays; the holiday still loses its break.
	assert.Equal(t, 22.75, l.MonthlyTotal(ctx, 2025, time.March, true))
}

func TestLedger_MonthlyTotalInvalidatedByMutation(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, &memStore{}, Options{})

	seed(t, l, entry(2025, time.March, 3, 2, 0))
	assert.Equal(t, 2.0, l.MonthlyTotal(ctx, 2025, time.March, true))

	seed(t, l, entry(2025, time.March, 4, 1, 30))
	assert.Equal(t, 3.5, l.MonthlyTotal(ctx, 2025, time.March, true))

	require.NoError(t, l.Remove(ctx, date(2025, time.March, 3)))
	assert.Equal(t, 1.5, l.MonthlyTotal(ctx, 2025, time.March, true))
}

func TestLedger_YearlyTotal(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, &memStore{}, Options{})

	seed(t, l,
		entry(2024, time.December, 31, 3, 0),
		entry(2025, time.March, 1, 5, 0),
		entry(2025, time.March, 2, 8, 0),
		entry(2025, time.March, 3, 8, 0),
		entry(2025, time.April, 1, 1, 30), // Ramazan Bayramı day 3: 1.25
	)

	assert.Equal(t, 20.75, l.YearlyTotal(ctx, 2025, true))
	assert.Equal(t, 22.5, l.YearlyTotal(ctx, 2025, false))
	assert.Equal(t, 3.0, l.YearlyTotal(ctx, 2024, true))
	assert.Equal(t, 0.0, l.YearlyTotal(ctx, 2030, true))
}

func TestLedger_MonthlyPaymentBreakdown(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, &memStore{}, Options{})

	seed(t, l,
		entry(2025, time.March, 1, 2, 0),  // Saturday, normal bucket
		entry(2025, time.March, 2, 2, 0),  // Sunday
		entry(2025, time.March, 3, 2, 0),  // Monday
		entry(2025, time.March, 30, 2, 0), // Sunday and Ramazan Bayramı
	)

	for i := 0; i < 2; i++ {
		p := l.MonthlyPaymentBreakdown(ctx, 2025, time.March)

		assert.Equal(t, 3.75, p.Normal.Hours)
		assert.Equal(t, "590.3369325", p.Normal.Payment.String())
		assert.Equal(t, 1.75, p.Sunday.Hours)
		assert.Equal(t, "459.1509475", p.Sunday.Payment.String())
		assert.Equal(t, 1.75, p.Holiday.Hours)
		assert.Equal(t, "367.320758", p.Holiday.Payment.String())
		assert.Equal(t, 7.25, p.Total.Hours)
		assert.Equal(t, "1416.808638", p.Total.Payment.String())

		r := p.Round()
		assert.Equal(t, "1416.81", r.Total.Payment.StringFixed(2))
	}
}

func TestLedger_BreakdownFollowsSettings(t *testing.T) {
	ctx := context.Background()
	settings := &mutableSettings{s: models.DefaultSalarySettings()}
	bus := events.NewBus()
	l := openLedger(t, &memStore{}, Options{Settings: settings, Bus: bus})

	seed(t, l, entry(2025, time.March, 3, 8, 0))
	before := l.MonthlyPaymentBreakdown(ctx, 2025, time.March)
	assert.Equal(t, "1259.385456", before.Total.Payment.String())

	settings.set(func(s *models.SalarySettings) { s.MonthlyWorkingHours = 0 })

	cached := l.MonthlyPaymentBreakdown(ctx, 2025, time.March)
	assert.Equal(t, "1259.385456", cached.Total.Payment.String())

	bus.Publish(events.Event{Kind: events.SettingsUpdated})

	after := l.MonthlyPaymentBreakdown(ctx, 2025, time.March)
	assert.True(t, after.Total.Payment.IsZero())
	assert.Equal(t, 8.0, after.Total.Hours)
}

func TestLedger_YearlySummary(t *testing.T) {
	ctx := context.Background()
	settings := &mutableSettings{s: models.DefaultSalarySettings()}
	bus := events.NewBus()
	l := openLedger(t, &memStore{}, Options{Settings: settings, Bus: bus})

	seed(t, l,
		entry(2025, time.March, 2, 8, 0),
		entry(2025, time.March, 3, 8, 0),
		entry(2025, time.April, 1, 6, 0), // holiday: 5.5
	)

	s := l.YearlySummary(ctx, 2025)
	assert.Equal(t, YearlySummary{Year: 2025, Hours: 20.5, Limit: 270, Remaining: 249.5}, s)

	settings.set(func(s *models.SalarySettings) { s.AnnualOvertimeLimit = 20 })
	bus.Publish(events.Event{Kind: events.SettingsUpdated})

	s = l.YearlySummary(ctx, 2025)
	assert.True(t, s.Exceeded)
	assert.Equal(t, 0.0, s.Remaining)
}
