package holidays

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/efek0349/mesaitakip/models"
	"github.com/teambition/rrule-go"
)

type fixedHoliday struct {
	month     time.Month
	day       int
	name      string
	shortName string
}

var officialHolidays = []fixedHoliday{
	{time.January, 1, "Yılbaşı", "Yılbaşı"},
	{time.April, 23, "Ulusal Egemenlik ve Çocuk Bayramı", "23 Nisan"},
	{time.May, 1, "Emek ve Dayanışma Günü", "1 Mayıs"},
	{time.May, 19, "Atatürk'ü Anma, Gençlik ve Spor Bayramı", "19 Mayıs"},
	{time.July, 15, "Demokrasi ve Milli Birlik Günü", "15 Temmuz"},
	{time.August, 30, "Zafer Bayramı", "30 Ağustos"},
	{time.October, 29, "Cumhuriyet Bayramı", "29 Ekim"},
}

// Official returns the fixed-date civil holidays of a year.
func Official(year int) ([]models.Holiday, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	out := make([]models.Holiday, 0, len(officialHolidays))
	for _, h := range officialHolidays {
		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:       rrule.YEARLY,
			Dtstart:    start,
			Until:      end,
			Bymonth:    []int{int(h.month)},
			Bymonthday: []int{h.day},
		})
		if err != nil {
			return nil, fmt.Errorf("holiday rule %s: %w", h.shortName, err)
		}
		for _, t := range rule.All() {
			out = append(out, models.Holiday{
				Date:      models.DateOf(t),
				Name:      h.name,
				Type:      models.HolidayOfficial,
				ShortName: h.shortName,
			})
		}
	}
	return out, nil
}

// Religious returns the feast days of a year, or nothing outside the table.
func Religious(year int) []models.Holiday {
	var out []models.Holiday
	out = appendFeast(out, ramadanFeasts[year], ramadanFeastDays, "Ramazan Bayramı", "Ramazan")
	out = appendFeast(out, sacrificeFeasts[year], sacrificeFeastDays, "Kurban Bayramı", "Kurban")
	return out
}

func appendFeast(out []models.Holiday, first string, days int, name, shortName string) []models.Holiday {
	if first == "" {
		return out
	}
	start, err := models.ParseDate(first)
	if err != nil {
		return out
	}
	for i := 0; i < days; i++ {
		out = append(out, models.Holiday{
			Date:      start.AddDays(i),
			Name:      fmt.Sprintf("%s %d. Gün", name, i+1),
			Type:      models.HolidayReligious,
			ShortName: shortName,
		})
	}
	return out
}

// Calendar answers holiday lookups and memoizes each year it has seen.
type Calendar struct {
	mu       sync.Mutex
	years    map[int]map[models.Date]models.Holiday
	official func(year int) ([]models.Holiday, error)
}

func NewCalendar() *Calendar {
	return &Calendar{
		years:    make(map[int]map[models.Date]models.Holiday),
		official: Official,
	}
}

func (c *Calendar) year(year int) map[models.Date]models.Holiday {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.years[year]; ok {
		return idx
	}

	idx := make(map[models.Date]models.Holiday)
	official, err := c.official(year)
	if err != nil {
		slog.Warn("official holidays unavailable", "year", year, "error", err)
	}
	for _, h := range official {
		idx[h.Date] = h
	}
	// Religious wins when a feast day falls on an official date.
	for _, h := range Religious(year) {
		idx[h.Date] = h
	}
	// An incomplete year is served but retried on the next lookup.
	if err == nil {
		c.years[year] = idx
	}
	return idx
}

// Get returns the holiday on the given date, if any.
func (c *Calendar) Get(d models.Date) (models.Holiday, bool) {
	h, ok := c.year(d.Year)[d]
	return h, ok
}

func (c *Calendar) IsHoliday(d models.Date) bool {
	_, ok := c.Get(d)
	return ok
}

// ForYear lists every holiday of the year sorted by date.
func (c *Calendar) ForYear(year int) []models.Holiday {
	idx := c.year(year)
	out := make([]models.Holiday, 0, len(idx))
	for _, h := range idx {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
