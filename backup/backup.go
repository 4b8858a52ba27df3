// Package backup encodes the ledger as portable JSON and merges backups back in.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/efek0349/mesaitakip/models"
)

var ErrMalformed = errors.New("malformed backup")

// ValidationError pins a decode failure to a month and entry index.
// Index is -1 when the problem is with the month itself.
type ValidationError struct {
	MonthKey string `json:"monthKey"`
	Index    int    `json:"index"`
	Field    string `json:"field,omitempty"`
	Reason   string `json:"reason"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("malformed backup: month ")
	b.WriteString(e.MonthKey)
	if e.Index >= 0 {
		fmt.Fprintf(&b, " entry %d", e.Index)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformed
}

type wireEntry struct {
	ID         *string  `json:"id" validate:"required"`
	Date       *string  `json:"date" validate:"required,datetime=2006-01-02"`
	Hours      *int     `json:"hours" validate:"required"`
	Minutes    *int     `json:"minutes" validate:"required"`
	TotalHours *float64 `json:"totalHours" validate:"required"`
	Note       *string  `json:"note"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Export renders the whole ledger as indented JSON.
func Export(data models.MonthlyData) ([]byte, error) {
	if data == nil {
		data = models.MonthlyData{}
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportMonth renders a single month in the same shape as Export. A month
// without entries exports as an empty list.
func ExportMonth(data models.MonthlyData, year int, month time.Month) ([]byte, error) {
	key := models.MonthKey(year, month)
	entries := data[key]
	if entries == nil {
		entries = []models.OvertimeEntry{}
	}
	return Export(models.MonthlyData{key: entries})
}

// Decode parses and validates a backup. The stored totalHours is ignored
// and recomputed from hours and minutes.
func Decode(text []byte) (models.MonthlyData, error) {
	var months map[string]json.RawMessage
	if err := json.Unmarshal(text, &months); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if months == nil {
		return nil, fmt.Errorf("%w: expected an object of months", ErrMalformed)
	}

	out := make(models.MonthlyData, len(months))
	for _, key := range slices.Sorted(maps.Keys(months)) {
		raw := months[key]
		if _, _, err := models.ParseMonthKey(key); err != nil {
			return nil, &ValidationError{MonthKey: key, Index: -1, Reason: "key is not YYYY-MM"}
		}

		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || items == nil {
			return nil, &ValidationError{MonthKey: key, Index: -1, Reason: "expected a list of entries"}
		}

		entries := make([]models.OvertimeEntry, 0, len(items))
		for i, item := range items {
			e, err := decodeEntry(key, i, item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		if len(entries) == 0 {
			continue
		}
		models.SortEntries(entries)
		out[key] = entries
	}
	return out, nil
}

func decodeEntry(key string, index int, raw json.RawMessage) (models.OvertimeEntry, error) {
	var w wireEntry
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.OvertimeEntry{}, &ValidationError{MonthKey: key, Index: index, Reason: err.Error()}
	}
	if err := validate.Struct(w); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return models.OvertimeEntry{}, &ValidationError{
				MonthKey: key,
				Index:    index,
				Field:    fe.Field(),
				Reason:   describe(fe),
			}
		}
		return models.OvertimeEntry{}, &ValidationError{MonthKey: key, Index: index, Reason: err.Error()}
	}

	d, err := models.ParseDate(*w.Date)
	if err != nil {
		return models.OvertimeEntry{}, &ValidationError{MonthKey: key, Index: index, Field: "date", Reason: err.Error()}
	}
	e := models.OvertimeEntry{
		ID:         *w.ID,
		Date:       d,
		Hours:      *w.Hours,
		Minutes:    *w.Minutes,
		TotalHours: models.TotalHours(*w.Hours, *w.Minutes),
	}
	if w.Note != nil {
		e.Note = *w.Note
	}

	if err := e.Validate(key); err != nil {
		var entryErr *models.EntryError
		if errors.As(err, &entryErr) {
			return models.OvertimeEntry{}, &ValidationError{MonthKey: key, Index: index, Field: entryErr.Field, Reason: entryErr.Reason}
		}
		return models.OvertimeEntry{}, &ValidationError{MonthKey: key, Index: index, Reason: err.Error()}
	}
	return e, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a YYYY-MM-DD date"
	default:
		return "failed " + fe.Tag()
	}
}

// Merger accepts decoded backups.
type Merger interface {
	Merge(ctx context.Context, data models.MonthlyData) (int, error)
}

// Import decodes text and merges it into m. Nothing is merged when the
// backup fails to decode.
func Import(ctx context.Context, text []byte, m Merger) (int, error) {
	data, err := Decode(text)
	if err != nil {
		return 0, err
	}
	return m.Merge(ctx, data)
}
