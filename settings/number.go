package settings

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ParseNumber coerces free-form numeric text. A comma is read as the decimal
// separator and every other non-digit is dropped. Reading stops at a second
// separator, so "33.030,50" is 33.03. Anything that still fails to parse is 0.
func ParseNumber(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")

	var b strings.Builder
	seenDot := false
scan:
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && seenDot:
			break scan
		case r == '.':
			seenDot = true
			b.WriteRune(r)
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// Number accepts either a JSON number or a JSON string run through ParseNumber.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(ParseNumber(s))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}
