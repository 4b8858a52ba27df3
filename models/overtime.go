package models

import (
	"sort"

	"github.com/google/uuid"
)

const MaxNoteLength = 200

type OvertimeEntry struct {
	ID         string  `gorm:"primaryKey;size:36" json:"id"`
	Date       Date    `gorm:"uniqueIndex;not null;type:date" json:"date"`
	Hours      int     `gorm:"not null" json:"hours"`
	Minutes    int     `gorm:"not null" json:"minutes"`
	TotalHours float64 `gorm:"not null" json:"totalHours"`
	Note       string  `gorm:"size:200" json:"note,omitempty"`
}

// NewOvertimeEntry creates an entry with a fresh id and a consistent TotalHours.
func NewOvertimeEntry(date Date, hours, minutes int, note string) OvertimeEntry {
	return OvertimeEntry{
		ID:         uuid.New().String(),
		Date:       date,
		Hours:      hours,
		Minutes:    minutes,
		TotalHours: TotalHours(hours, minutes),
		Note:       note,
	}
}

func TotalHours(hours, minutes int) float64 {
	return float64(hours) + float64(minutes)/60
}

// MonthlyData groups entries by month key, each list ordered by date.
type MonthlyData map[string][]OvertimeEntry

func (m MonthlyData) Clone() MonthlyData {
	out := make(MonthlyData, len(m))
	for key, entries := range m {
		out[key] = append([]OvertimeEntry(nil), entries...)
	}
	return out
}

// Len returns the number of entries across all months.
func (m MonthlyData) Len() int {
	n := 0
	for _, entries := range m {
		n += len(entries)
	}
	return n
}

// Keys returns the month keys in ascending order.
func (m MonthlyData) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Entries flattens the map into a single date-ordered slice.
func (m MonthlyData) Entries() []OvertimeEntry {
	out := make([]OvertimeEntry, 0, m.Len())
	for _, key := range m.Keys() {
		out = append(out, m[key]...)
	}
	return out
}

// Group builds MonthlyData from a flat list of entries.
func Group(entries []OvertimeEntry) MonthlyData {
	out := make(MonthlyData)
	for _, e := range entries {
		key := e.Date.MonthKey()
		out[key] = append(out[key], e)
	}
	for key := range out {
		SortEntries(out[key])
	}
	return out
}

func SortEntries(entries []OvertimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}
