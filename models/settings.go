package models

import "strings"

// SalarySettings is the single per-installation pay configuration.
// Rates are percentages, multipliers are plain factors.
type SalarySettings struct {
	ID                  uint    `gorm:"primaryKey" json:"-"`
	FirstName           string  `gorm:"size:100" json:"firstName" validate:"max=100"`
	LastName            string  `gorm:"size:100" json:"lastName" validate:"max=100"`
	MonthlyGrossSalary  float64 `json:"monthlyGrossSalary" validate:"gte=0"`
	Bonus               float64 `json:"bonus" validate:"gte=0"`
	MonthlyWorkingHours float64 `json:"monthlyWorkingHours" validate:"gte=0"`
	SGKRate             float64 `gorm:"column:sgk_rate" json:"sgkRate" validate:"gte=0,lte=100"`
	IncomeTaxRate       float64 `json:"incomeTaxRate" validate:"gte=0,lte=100"`
	StampTaxRate        float64 `json:"stampTaxRate" validate:"gte=0,lte=100"`
	WeekdayMultiplier   float64 `json:"weekdayMultiplier" validate:"gte=0"`
	SaturdayMultiplier  float64 `json:"saturdayMultiplier" validate:"gte=0"`
	SundayMultiplier    float64 `json:"sundayMultiplier" validate:"gte=0"`
	HolidayMultiplier   float64 `json:"holidayMultiplier" validate:"gte=0"`
	DeductBreakTime     bool    `json:"deductBreakTime"`
	IsSaturdayWork      bool    `json:"isSaturdayWork"`
	HasSalaryAttachment bool    `json:"hasSalaryAttachment"`
	AttachmentRate      float64 `json:"attachmentRate" validate:"gte=0,lte=100"`
	HasTES              bool    `gorm:"column:has_tes" json:"hasTES"`
	TESRate             float64 `gorm:"column:tes_rate" json:"tesRate" validate:"gte=0,lte=100"`
	AnnualOvertimeLimit float64 `json:"annualOvertimeLimit" validate:"gte=0"`
	DefaultStartTime    string  `gorm:"size:5" json:"defaultStartTime" validate:"omitempty,datetime=15:04"`
	DefaultEndTime      string  `gorm:"size:5" json:"defaultEndTime" validate:"omitempty,datetime=15:04"`
}

// DefaultSalarySettings returns placeholder values (2025 minimum wage era).
func DefaultSalarySettings() SalarySettings {
	return SalarySettings{
		MonthlyGrossSalary:  33030.00,
		MonthlyWorkingHours: 225,
		SGKRate:             15,
		IncomeTaxRate:       15,
		StampTaxRate:        0.759,
		WeekdayMultiplier:   1.5,
		SaturdayMultiplier:  1.5,
		SundayMultiplier:    2.5,
		HolidayMultiplier:   2.0,
		DeductBreakTime:     true,
		AttachmentRate:      25,
		TESRate:             3,
		AnnualOvertimeLimit: 270,
		DefaultStartTime:    "08:05",
		DefaultEndTime:      "18:05",
	}
}

func (s SalarySettings) EmployeeName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}
