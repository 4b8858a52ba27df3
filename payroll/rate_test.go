package payroll

import (
	"testing"
	"time"

	"github.com/efek0349/mesaitakip/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	monday   = models.NewDate(2025, time.March, 3)
	saturday = models.NewDate(2025, time.March, 8)
	sunday   = models.NewDate(2025, time.March, 9)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNetOvertimeRate_WeekdayReference(t *testing.T) {
	s := models.DefaultSalarySettings()

	b := Breakdown(monday, false, s)

	assert.True(t, dec("146.8").Equal(b.GrossHourly), b.GrossHourly.String())
	assert.True(t, dec("220.2").Equal(b.GrossOvertime), b.GrossOvertime.String())
	assert.True(t, dec("33.03").Equal(b.SGK), b.SGK.String())
	assert.True(t, dec("28.0755").Equal(b.IncomeTax), b.IncomeTax.String())
	assert.True(t, dec("1.671318").Equal(b.StampTax), b.StampTax.String())
	assert.True(t, dec("157.423182").Equal(b.Net), b.Net.String())
	assert.Equal(t, "157.42", b.Net.StringFixed(2))

	// Reproducible across calls.
	assert.True(t, b.Net.Equal(NetOvertimeRate(monday, false, s)))
}

func TestNetOvertimeRate_MultiplierSelection(t *testing.T) {
	s := models.DefaultSalarySettings()
	s.SGKRate, s.IncomeTaxRate, s.StampTaxRate = 0, 0, 0
	s.SaturdayMultiplier = 1.75

	cases := []struct {
		name    string
		date    models.Date
		holiday bool
		want    string
	}{
		{"weekday", monday, false, "220.2"},
		{"saturday", saturday, false, "256.9"},
		{"sunday", sunday, false, "367"},
		{"holiday on sunday", sunday, true, "293.6"},
		{"holiday on weekday", monday, true, "293.6"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NetOvertimeRate(c.date, c.holiday, s)
			assert.True(t, dec(c.want).Equal(got), got.String())
		})
	}
}

func TestNetOvertimeRate_ZeroCases(t *testing.T) {
	s := models.DefaultSalarySettings()
	s.MonthlyWorkingHours = 0
	assert.True(t, NetOvertimeRate(monday, false, s).IsZero())

	s = models.DefaultSalarySettings()
	s.WeekdayMultiplier = 0
	b := Breakdown(monday, false, s)
	assert.True(t, b.Net.IsZero())
	assert.True(t, b.SGK.IsZero())

	s = models.DefaultSalarySettings()
	s.MonthlyGrossSalary = 0
	assert.True(t, NetOvertimeRate(sunday, true, s).IsZero())
}

func TestNetOvertimeRate_FlooredAtZero(t *testing.T) {
	s := models.DefaultSalarySettings()
	s.SGKRate = 80
	s.StampTaxRate = 50
	assert.True(t, NetOvertimeRate(monday, false, s).IsZero())
}

func TestNetOvertimeRate_TESAndAttachment(t *testing.T) {
	s := models.DefaultSalarySettings()
	s.HasTES = true

	b := Breakdown(monday, false, s)
	assert.True(t, dec("6.606").Equal(b.TES), b.TES.String())
	assert.True(t, dec("150.817182").Equal(b.Net), b.Net.String())

	s.HasSalaryAttachment = true
	b = Breakdown(monday, false, s)
	assert.True(t, dec("37.7042955").Equal(b.Attachment), b.Attachment.String())
	assert.True(t, dec("113.1128865").Equal(b.Net), b.Net.String())
}

func TestPaymentBreakdownRound(t *testing.T) {
	var p PaymentBreakdown
	p.Normal.Add(2, dec("157.423182"))
	p.Total.Add(2, dec("157.423182"))

	r := p.Round()
	assert.Equal(t, "314.85", r.Normal.Payment.String())
	assert.Equal(t, "314.846364", p.Normal.Payment.String())
	assert.Equal(t, 2.0, r.Total.Hours)
}
