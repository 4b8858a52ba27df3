package models

import "time"

type HolidayType string

const (
	HolidayReligious HolidayType = "religious"
	HolidayOfficial  HolidayType = "official"
)

type Holiday struct {
	Date      Date        `json:"date"`
	Name      string      `json:"name"`
	Type      HolidayType `json:"type"`
	ShortName string      `json:"shortName"`
}

// DayClass selects both the pay multiplier and break-deduction eligibility.
type DayClass int

const (
	Weekday DayClass = iota
	Saturday
	Sunday
	PublicHoliday
)

func (c DayClass) String() string {
	switch c {
	case Saturday:
		return "saturday"
	case Sunday:
		return "sunday"
	case PublicHoliday:
		return "holiday"
	default:
		return "weekday"
	}
}

func (c DayClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify derives the day class; a holiday overrides the weekday position.
func Classify(d Date, isHoliday bool) DayClass {
	if isHoliday {
		return PublicHoliday
	}
	switch d.Weekday() {
	case time.Sunday:
		return Sunday
	case time.Saturday:
		return Saturday
	default:
		return Weekday
	}
}
