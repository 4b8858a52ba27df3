package payroll

import "github.com/efek0349/mesaitakip/models"

// Break deduction tiers on rest days, by raw duration in hours.
const (
	longShiftThreshold   = 7.5
	mediumShiftThreshold = 4.0

	longShiftBreak   = 1.0
	mediumShiftBreak = 0.5
	shortShiftBreak  = 0.25
)

// BreakApplies reports whether a day is subject to break deduction.
// Working days (weekdays, and Saturdays when Saturday is a working day) are exempt.
func BreakApplies(class models.DayClass, isSaturdayWork bool) bool {
	switch class {
	case models.Sunday, models.PublicHoliday:
		return true
	case models.Saturday:
		return !isSaturdayWork
	default:
		return false
	}
}

// BreakDeduction returns the break time to subtract for a raw duration.
func BreakDeduction(raw float64) float64 {
	switch {
	case raw > longShiftThreshold:
		return longShiftBreak
	case raw > mediumShiftThreshold:
		return mediumShiftBreak
	case raw > 0:
		return shortShiftBreak
	default:
		return 0
	}
}

// EffectiveHours converts logged hours into billable hours.
func EffectiveHours(raw float64, deductBreak bool, class models.DayClass, isSaturdayWork bool) float64 {
	if !deductBreak || !BreakApplies(class, isSaturdayWork) {
		return raw
	}
	effective := raw - BreakDeduction(raw)
	if effective < 0 {
		return 0
	}
	return effective
}
