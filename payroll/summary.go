package payroll

import "github.com/shopspring/decimal"

type Bucket struct {
	Hours   float64         `json:"hours"`
	Payment decimal.Decimal `json:"payment"`
}

func (b *Bucket) Add(hours float64, rate decimal.Decimal) {
	b.Hours += hours
	b.Payment = b.Payment.Add(decimal.NewFromFloat(hours).Mul(rate))
}

// PaymentBreakdown splits a month's effective hours and pay by day type.
// Saturdays are counted as normal days.
type PaymentBreakdown struct {
	Normal  Bucket `json:"normal"`
	Sunday  Bucket `json:"sunday"`
	Holiday Bucket `json:"holiday"`
	Total   Bucket `json:"total"`
}

// Round returns a copy with payments rounded to cents.
func (p PaymentBreakdown) Round() PaymentBreakdown {
	for _, b := range []*Bucket{&p.Normal, &p.Sunday, &p.Holiday, &p.Total} {
		b.Payment = b.Payment.Round(2)
	}
	return p
}
