package report

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/efek0349/mesaitakip/models"
)

type TimesheetRow struct {
	Date          string `csv:"Date"`
	EmployeeName  string `csv:"EmployeeName"`
	StartTime     string `csv:"StartTime"`
	EndTime       string `csv:"EndTime"`
	NormalHours   string `csv:"NormalHours"`
	OvertimeHours string `csv:"OvertimeHours"`
	Note          string `csv:"Note"`
}

// shiftHours is the length of the default shift. Unparseable times fall
// back to the stock 08:05-18:05 shift.
func shiftHours(start, end string) (string, string, float64) {
	s, err := time.Parse("15:04", start)
	if err != nil {
		start = defaultStartTime
		s, _ = time.Parse("15:04", start)
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		end = defaultEndTime
		e, _ = time.Parse("15:04", end)
	}
	return start, end, e.Sub(s).Hours()
}

// Timesheet lists every day of the month. Days without overtime are left
// out when they are Sundays, holidays, or Saturdays that are not working
// days.
func Timesheet(m Month) []TimesheetRow {
	s := m.Settings
	start, end, normal := shiftHours(s.DefaultStartTime, s.DefaultEndTime)
	name := s.EmployeeName()

	byDate := make(map[models.Date]models.OvertimeEntry, len(m.Entries))
	for _, e := range m.Entries {
		byDate[e.Date] = e
	}

	days := models.DaysIn(m.Year, m.Month)
	rows := make([]TimesheetRow, 0, days)
	for day := 1; day <= days; day++ {
		d := models.NewDate(m.Year, m.Month, day)
		e, ok := byDate[d]
		overtime := 0.0
		if ok {
			overtime = e.TotalHours
		}

		if overtime == 0 {
			_, isHoliday := m.holiday(d)
			wd := d.Weekday()
			if wd == time.Sunday || isHoliday || (wd == time.Saturday && !s.IsSaturdayWork) {
				continue
			}
		}

		rows = append(rows, TimesheetRow{
			Date:          d.String(),
			EmployeeName:  name,
			StartTime:     start,
			EndTime:       end,
			NormalHours:   FormatHHMM(normal),
			OvertimeHours: FormatHHMM(overtime),
			Note:          strings.TrimSpace(e.Note),
		})
	}
	return rows
}

func WriteCSV(w io.Writer, rows []TimesheetRow) error {
	return gocsv.Marshal(rows, w)
}

// CSV renders the month's timesheet.
func CSV(m Month) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Timesheet(m)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
