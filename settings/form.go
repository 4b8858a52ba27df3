package settings

import "github.com/efek0349/mesaitakip/models"

// Form is the editable shape of SalarySettings as it arrives from a client.
// Numeric fields accept text. Decode into a Form built by NewForm so omitted
// fields keep their current values.
type Form struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	MonthlyGrossSalary  Number `json:"monthlyGrossSalary"`
	Bonus               Number `json:"bonus"`
	MonthlyWorkingHours Number `json:"monthlyWorkingHours"`
	SGKRate             Number `json:"sgkRate"`
	IncomeTaxRate       Number `json:"incomeTaxRate"`
	StampTaxRate        Number `json:"stampTaxRate"`
	WeekdayMultiplier   Number `json:"weekdayMultiplier"`
	SaturdayMultiplier  Number `json:"saturdayMultiplier"`
	SundayMultiplier    Number `json:"sundayMultiplier"`
	HolidayMultiplier   Number `json:"holidayMultiplier"`
	DeductBreakTime     bool   `json:"deductBreakTime"`
	IsSaturdayWork      bool   `json:"isSaturdayWork"`
	HasSalaryAttachment bool   `json:"hasSalaryAttachment"`
	AttachmentRate      Number `json:"attachmentRate"`
	HasTES              bool   `json:"hasTES"`
	TESRate             Number `json:"tesRate"`
	AnnualOvertimeLimit Number `json:"annualOvertimeLimit"`
	DefaultStartTime    string `json:"defaultStartTime"`
	DefaultEndTime      string `json:"defaultEndTime"`
}

func NewForm(s models.SalarySettings) Form {
	return Form{
		FirstName:           s.FirstName,
		LastName:            s.LastName,
		MonthlyGrossSalary:  Number(s.MonthlyGrossSalary),
		Bonus:               Number(s.Bonus),
		MonthlyWorkingHours: Number(s.MonthlyWorkingHours),
		SGKRate:             Number(s.SGKRate),
		IncomeTaxRate:       Number(s.IncomeTaxRate),
		StampTaxRate:        Number(s.StampTaxRate),
		WeekdayMultiplier:   Number(s.WeekdayMultiplier),
		SaturdayMultiplier:  Number(s.SaturdayMultiplier),
		SundayMultiplier:    Number(s.SundayMultiplier),
		HolidayMultiplier:   Number(s.HolidayMultiplier),
		DeductBreakTime:     s.DeductBreakTime,
		IsSaturdayWork:      s.IsSaturdayWork,
		HasSalaryAttachment: s.HasSalaryAttachment,
		AttachmentRate:      Number(s.AttachmentRate),
		HasTES:              s.HasTES,
		TESRate:             Number(s.TESRate),
		AnnualOvertimeLimit: Number(s.AnnualOvertimeLimit),
		DefaultStartTime:    s.DefaultStartTime,
		DefaultEndTime:      s.DefaultEndTime,
	}
}

func (f Form) Settings() models.SalarySettings {
	return models.SalarySettings{
		FirstName:           f.FirstName,
		LastName:            f.LastName,
		MonthlyGrossSalary:  f.MonthlyGrossSalary.Float(),
		Bonus:               f.Bonus.Float(),
		MonthlyWorkingHours: f.MonthlyWorkingHours.Float(),
		SGKRate:             f.SGKRate.Float(),
		IncomeTaxRate:       f.IncomeTaxRate.Float(),
		StampTaxRate:        f.StampTaxRate.Float(),
		WeekdayMultiplier:   f.WeekdayMultiplier.Float(),
		SaturdayMultiplier:  f.SaturdayMultiplier.Float(),
		SundayMultiplier:    f.SundayMultiplier.Float(),
		HolidayMultiplier:   f.HolidayMultiplier.Float(),
		DeductBreakTime:     f.DeductBreakTime,
		IsSaturdayWork:      f.IsSaturdayWork,
		HasSalaryAttachment: f.HasSalaryAttachment,
		AttachmentRate:      f.AttachmentRate.Float(),
		HasTES:              f.HasTES,
		TESRate:             f.TESRate.Float(),
		AnnualOvertimeLimit: f.AnnualOvertimeLimit.Float(),
		DefaultStartTime:    f.DefaultStartTime,
		DefaultEndTime:      f.DefaultEndTime,
	}
}
