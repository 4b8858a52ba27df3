package report

import (
	"fmt"
	"math"
)

// splitHours converts decimal hours to whole hours and rounded minutes.
func splitHours(hours float64) (int, int) {
	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m == 60 {
		h++
		m = 0
	}
	return int(h), int(m)
}

// FormatHours renders decimal hours for people, e.g. "7h 30m", "45m", "0h".
func FormatHours(hours float64) string {
	if math.IsNaN(hours) || hours <= 0 {
		return "0h"
	}
	h, m := splitHours(hours)
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatHHMM renders decimal hours as a zero-padded clock duration, e.g. "07:30".
// Negative and NaN values render as "00:00".
func FormatHHMM(hours float64) string {
	if math.IsNaN(hours) || hours < 0 {
		return "00:00"
	}
	h, m := splitHours(hours)
	return fmt.Sprintf("%02d:%02d", h, m)
}
