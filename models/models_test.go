package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-30")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 30}, d)
	assert.Equal(t, "2025-03", d.MonthKey())
	assert.Equal(t, time.Sunday, d.Weekday())

	for _, bad := range []string{"", "2025-13-01", "2025/03/30", "30-03-2025"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseMonthKey(t *testing.T) {
	y, m, err := ParseMonthKey("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.February, m)

	for _, bad := range []string{"2024-2", "2024-13", "24-02", "2024-02-01"} {
		_, _, err := ParseMonthKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, time.January, 5))
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-05"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-05-27"`), &d))
	assert.Equal(t, NewDate(2026, time.May, 27), d)
	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-07-15", d.String())

	require.NoError(t, d.Scan([]byte("2025-08-30T00:00:00Z")))
	assert.Equal(t, "2025-08-30", d.String())

	assert.Error(t, d.Scan(42))
}

func TestNewOvertimeEntry(t *testing.T) {
	e := NewOvertimeEntry(NewDate(2025, time.March, 3), 2, 30, "deploy")
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 2.5, e.TotalHours)

	other := NewOvertimeEntry(e.Date, 2, 30, "")
	assert.NotEqual(t, e.ID, other.ID)
}

func TestGroupSortsByDate(t *testing.T) {
	data := Group([]OvertimeEntry{
		NewOvertimeEntry(NewDate(2025, time.March, 20), 1, 0, ""),
		NewOvertimeEntry(NewDate(2025, time.February, 1), 1, 0, ""),
		NewOvertimeEntry(NewDate(2025, time.March, 2), 1, 0, ""),
	})

	assert.Equal(t, []string{"2025-02", "2025-03"}, data.Keys())
	assert.Equal(t, 3, data.Len())
	march := data["2025-03"]
	require.Len(t, march, 2)
	assert.Equal(t, 2, march[0].Date.Day)
	assert.Equal(t, 20, march[1].Date.Day)

	clone := data.Clone()
	clone["2025-03"][0].Hours = 9
	assert.Equal(t, 1, data["2025-03"][0].Hours)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		date    Date
		holiday bool
		want    DayClass
	}{
		{NewDate(2025, time.March, 3), false, Weekday},
		{NewDate(2025, time.March, 8), false, Saturday},
		{NewDate(2025, time.March, 9), false, Sunday},
		{NewDate(2025, time.March, 9), true, PublicHoliday},
		{NewDate(2025, time.January, 1), true, PublicHoliday},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.date, c.holiday), c.date.String())
	}
}

func TestEmployeeName(t *testing.T) {
	s := SalarySettings{FirstName: " Efe ", LastName: "Kaya"}
	assert.Equal(t, "Efe Kaya", s.EmployeeName())
	assert.Equal(t, "", SalarySettings{}.EmployeeName())
}

func TestOvertimeEntry_Validate(t *testing.T) {
	valid := NewOvertimeEntry(NewDate(2025, time.March, 10), 2, 30, "inventory")

	tests := []struct {
		name  string
		key   string
		mut   func(e *OvertimeEntry)
		field string
	}{
		{name: "valid", key: "2025-03"},
		{name: "missing id", key: "2025-03", mut: func(e *OvertimeEntry) { e.ID = "" }, field: "id"},
		{name: "wrong month", key: "2025-04", field: "date"},
		{name: "hours too large", key: "2025-03", mut: func(e *OvertimeEntry) { e.Hours = 24 }, field: "hours"},
		{name: "negative minutes", key: "2025-03", mut: func(e *OvertimeEntry) { e.Minutes = -1 }, field: "minutes"},
		{name: "empty", key: "2025-03", mut: func(e *OvertimeEntry) { e.Hours, e.Minutes = 0, 0 }, field: "hours"},
		{name: "long note", key: "2025-03", mut: func(e *OvertimeEntry) { e.Note = strings.Repeat("ş", 201) }, field: "note"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			if tt.mut != nil {
				tt.mut(&e)
			}
			err := e.Validate(tt.key)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var entryErr *EntryError
			require.ErrorAs(t, err, &entryErr)
			assert.Equal(t, tt.field, entryErr.Field)
		})
	}
}
