// Package report renders a month of overtime as a timesheet CSV, a plain
// text summary, and an e-mail carrying both.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/efek0349/mesaitakip/models"
	"github.com/efek0349/mesaitakip/payroll"
)

const (
	defaultStartTime = "08:05"
	defaultEndTime   = "18:05"
	rule             = "========================="
)

type Calendar interface {
	Get(d models.Date) (models.Holiday, bool)
}

// Month is everything needed to render one month.
type Month struct {
	Year      int
	Month     time.Month
	Entries   []models.OvertimeEntry
	Settings  models.SalarySettings
	Breakdown payroll.PaymentBreakdown
	Holidays  Calendar
}

func (m Month) holiday(d models.Date) (models.Holiday, bool) {
	if m.Holidays == nil {
		return models.Holiday{}, false
	}
	return m.Holidays.Get(d)
}

// Title is used for file names and mail subjects, e.g. "2025-03 overtime".
func (m Month) Title() string {
	return models.MonthKey(m.Year, m.Month) + " overtime"
}

// Text renders the itemized month followed by its summary.
func Text(m Month) string {
	var b strings.Builder
	s := m.Settings

	b.WriteString(rule + "\n")
	if name := s.EmployeeName(); name != "" {
		b.WriteString(strings.ToUpper(name) + "\n")
	}
	fmt.Fprintf(&b, "%s %d - Overtime\n", m.Month, m.Year)

	if len(m.Entries) == 0 {
		b.WriteString("\nNo overtime recorded.\n")
		b.WriteString(rule)
		return b.String()
	}

	if s.DeductBreakTime {
		b.WriteString("(break time deducted on rest days)\n")
	}
	b.WriteString("\n")

	for _, e := range m.Entries {
		h, isHoliday := m.holiday(e.Date)
		class := models.Classify(e.Date, isHoliday)
		effective := payroll.EffectiveHours(e.TotalHours, s.DeductBreakTime, class, s.IsSaturdayWork)

		fmt.Fprintf(&b, "%s %s - %s", e.Date, e.Date.Weekday(), FormatHours(effective))
		if effective < e.TotalHours {
			fmt.Fprintf(&b, " (%s, %s break)", FormatHours(e.TotalHours), FormatHours(e.TotalHours-effective))
		}
		if isHoliday {
			fmt.Fprintf(&b, " [%s]", h.Name)
		}
		if note := strings.TrimSpace(e.Note); note != "" {
			fmt.Fprintf(&b, " (%s)", note)
		}
		b.WriteString("\n")
	}

	p := m.Breakdown.Round()
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total: %s\n", FormatHours(p.Total.Hours))
	if p.Normal.Hours > 0 {
		fmt.Fprintf(&b, "%s normal\n", FormatHours(p.Normal.Hours))
	}
	if p.Sunday.Hours > 0 {
		fmt.Fprintf(&b, "%s Sunday\n", FormatHours(p.Sunday.Hours))
	}
	if p.Holiday.Hours > 0 {
		fmt.Fprintf(&b, "%s public holiday\n", FormatHours(p.Holiday.Hours))
	}
	fmt.Fprintf(&b, "Net pay: %s\n", p.Total.Payment.StringFixed(2))
	b.WriteString(rule)
	return b.String()
}
