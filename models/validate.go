package models

import (
	"fmt"
	"unicode/utf8"
)

// EntryError reports the first field of an entry that cannot be stored.
type EntryError struct {
	Field  string
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks an entry against the ledger invariants for the month key it
// is filed under. TotalHours is not checked; callers recompute it.
func (e OvertimeEntry) Validate(monthKey string) error {
	switch {
	case e.ID == "":
		return &EntryError{Field: "id", Reason: "is required"}
	case e.Date.IsZero():
		return &EntryError{Field: "date", Reason: "is required"}
	case e.Date.MonthKey() != monthKey:
		return &EntryError{Field: "date", Reason: fmt.Sprintf("%s is outside month %s", e.Date, monthKey)}
	case e.Hours < 0 || e.Hours > 23:
		return &EntryError{Field: "hours", Reason: fmt.Sprintf("%d is outside 0-23", e.Hours)}
	case e.Minutes < 0 || e.Minutes > 59:
		return &EntryError{Field: "minutes", Reason: fmt.Sprintf("%d is outside 0-59", e.Minutes)}
	case e.Hours == 0 && e.Minutes == 0:
		return &EntryError{Field: "hours", Reason: "entry has no duration"}
	case utf8.RuneCountInString(e.Note) > MaxNoteLength:
		return &EntryError{Field: "note", Reason: fmt.Sprintf("longer than %d characters", MaxNoteLength)}
	}
	return nil
}
