package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/efek0349/mesaitakip/models"
	"github.com/efek0349/mesaitakip/payroll"
)

// YearlySummary compares a year's effective hours with the annual ceiling.
type YearlySummary struct {
	Year      int     `json:"year"`
	Hours     float64 `json:"hours"`
	Limit     float64 `json:"limit"`
	Remaining float64 `json:"remaining"`
	Exceeded  bool    `json:"exceeded"`
}

func (l *Ledger) classify(d models.Date) models.DayClass {
	_, isHoliday := l.holidays.Get(d)
	return models.Classify(d, isHoliday)
}

func (l *Ledger) cacheKey(format string, args ...any) string {
	return fmt.Sprintf("ledger:%d:", l.generation.Load()) + fmt.Sprintf(format, args...)
}

// cached serves v from the summary cache or fills it with compute. Cache
// failures are logged and fall through to compute.
func cached[T any](ctx context.Context, l *Ledger, key string, compute func() T) T {
	var v T
	b, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn("summary cache read failed", "key", key, "error", err)
	}
	if ok && json.Unmarshal(b, &v) == nil {
		return v
	}

	v = compute()
	if b, err := json.Marshal(v); err == nil {
		if err := l.cache.Set(ctx, key, b); err != nil {
			l.logger.Warn("summary cache write failed", "key", key, "error", err)
		}
	}
	return v
}

// MonthlyTotal sums the month's effective hours.
func (l *Ledger) MonthlyTotal(ctx context.Context, year int, month time.Month, deductBreakTime bool) float64 {
	key := models.MonthKey(year, month)
	return cached(ctx, l, l.cacheKey("total:%s:%t", key, deductBreakTime), func() float64 {
		return l.monthTotal(key, deductBreakTime)
	})
}

func (l *Ledger) monthTotal(key string, deductBreakTime bool) float64 {
	s := l.settings.Current()

	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0.0
	for _, e := range l.data[key] {
		total += payroll.EffectiveHours(e.TotalHours, deductBreakTime, l.classify(e.Date), s.IsSaturdayWork)
	}
	return total
}

// YearlyTotal sums the effective hours of every month in year.
func (l *Ledger) YearlyTotal(ctx context.Context, year int, deductBreakTime bool) float64 {
	prefix := fmt.Sprintf("%04d-", year)
	total := 0.0
	for _, key := range l.MonthKeys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		_, month, err := models.ParseMonthKey(key)
		if err != nil {
			continue
		}
		total += l.MonthlyTotal(ctx, year, month, deductBreakTime)
	}
	return total
}

// MonthlyPaymentBreakdown splits the month's effective hours and pay into
// normal, Sunday and holiday buckets using the configured break policy.
// Holidays take precedence over Sundays.
func (l *Ledger) MonthlyPaymentBreakdown(ctx context.Context, year int, month time.Month) payroll.PaymentBreakdown {
	key := models.MonthKey(year, month)
	return cached(ctx, l, l.cacheKey("breakdown:%s", key), func() payroll.PaymentBreakdown {
		return l.monthBreakdown(key)
	})
}

func (l *Ledger) monthBreakdown(key string) payroll.PaymentBreakdown {
	s := l.settings.Current()

	l.mu.RLock()
	defer l.mu.RUnlock()

	var p payroll.PaymentBreakdown
	for _, e := range l.data[key] {
		_, isHoliday := l.holidays.Get(e.Date)
		class := models.Classify(e.Date, isHoliday)
		hours := payroll.EffectiveHours(e.TotalHours, s.DeductBreakTime, class, s.IsSaturdayWork)
		rate := payroll.NetOvertimeRate(e.Date, isHoliday, s)

		switch class {
		case models.PublicHoliday:
			p.Holiday.Add(hours, rate)
		case models.Sunday:
			p.Sunday.Add(hours, rate)
		default:
			p.Normal.Add(hours, rate)
		}
		p.Total.Add(hours, rate)
	}
	return p
}

func (l *Ledger) YearlySummary(ctx context.Context, year int) YearlySummary {
	s := l.settings.Current()
	hours := l.YearlyTotal(ctx, year, s.DeductBreakTime)

	remaining := s.AnnualOvertimeLimit - hours
	if remaining < 0 {
		remaining = 0
	}
	return YearlySummary{
		Year:      year,
		Hours:     hours,
		Limit:     s.AnnualOvertimeLimit,
		Remaining: remaining,
		Exceeded:  s.AnnualOvertimeLimit > 0 && hours > s.AnnualOvertimeLimit,
	}
}
