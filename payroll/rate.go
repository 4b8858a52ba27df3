package payroll

import (
	"github.com/efek0349/mesaitakip/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RateBreakdown itemizes how a net overtime rate was reached.
type RateBreakdown struct {
	Date          models.Date     `json:"date"`
	DayClass      models.DayClass `json:"dayClass"`
	GrossHourly   decimal.Decimal `json:"grossHourly"`
	Multiplier    decimal.Decimal `json:"multiplier"`
	GrossOvertime decimal.Decimal `json:"grossOvertime"`
	SGK           decimal.Decimal `json:"sgk"`
	IncomeTax     decimal.Decimal `json:"incomeTax"`
	StampTax      decimal.Decimal `json:"stampTax"`
	TES           decimal.Decimal `json:"tes"`
	Attachment    decimal.Decimal `json:"attachment"`
	Net           decimal.Decimal `json:"net"`
}

// GrossHourlyRate is monthly gross over monthly working hours, or zero when
// no working hours are configured.
func GrossHourlyRate(s models.SalarySettings) decimal.Decimal {
	if s.MonthlyWorkingHours <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(s.MonthlyGrossSalary).Div(decimal.NewFromFloat(s.MonthlyWorkingHours))
}

func Multiplier(class models.DayClass, s models.SalarySettings) decimal.Decimal {
	switch class {
	case models.PublicHoliday:
		return decimal.NewFromFloat(s.HolidayMultiplier)
	case models.Sunday:
		return decimal.NewFromFloat(s.SundayMultiplier)
	case models.Saturday:
		return decimal.NewFromFloat(s.SaturdayMultiplier)
	default:
		return decimal.NewFromFloat(s.WeekdayMultiplier)
	}
}

func percent(base decimal.Decimal, rate float64) decimal.Decimal {
	return base.Mul(decimal.NewFromFloat(rate)).Div(hundred)
}

// Breakdown computes the net overtime hourly rate for a date.
//
// SGK and stamp tax are taken from the gross rate, income tax from the
// remainder after SGK. TES comes off the gross and the salary attachment
// withholds a share of what is left.
func Breakdown(d models.Date, isHoliday bool, s models.SalarySettings) RateBreakdown {
	class := models.Classify(d, isHoliday)
	b := RateBreakdown{
		Date:        d,
		DayClass:    class,
		GrossHourly: GrossHourlyRate(s),
		Multiplier:  Multiplier(class, s),
	}
	b.GrossOvertime = b.GrossHourly.Mul(b.Multiplier)
	if b.GrossOvertime.IsZero() {
		return b
	}

	gross := b.GrossOvertime
	b.SGK = percent(gross, s.SGKRate)
	b.IncomeTax = percent(gross.Sub(b.SGK), s.IncomeTaxRate)
	b.StampTax = percent(gross, s.StampTaxRate)
	if s.HasTES {
		b.TES = percent(gross, s.TESRate)
	}

	net := gross.Sub(b.SGK).Sub(b.IncomeTax).Sub(b.StampTax).Sub(b.TES)
	if s.HasSalaryAttachment && net.IsPositive() {
		b.Attachment = percent(net, s.AttachmentRate)
		net = net.Sub(b.Attachment)
	}
	if net.IsNegative() {
		net = decimal.Zero
	}
	b.Net = net
	return b
}

// NetOvertimeRate returns the net hourly overtime rate, never negative.
func NetOvertimeRate(d models.Date, isHoliday bool, s models.SalarySettings) decimal.Decimal {
	return Breakdown(d, isHoliday, s).Net
}
