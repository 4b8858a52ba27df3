package holidays

// Feast days are lunar and are not computed; the table covers 2025-2035.
// Each entry is the first day of the feast.
var ramadanFeasts = map[int]string{
	2025: "2025-03-30",
	2026: "2026-03-20",
	2027: "2027-03-09",
	2028: "2028-02-26",
	2029: "2029-02-14",
	2030: "2030-02-04",
	2031: "2031-01-24",
	2032: "2032-01-14",
	2033: "2033-01-02",
	2034: "2034-12-12",
	2035: "2035-12-01",
}

var sacrificeFeasts = map[int]string{
	2025: "2025-06-06",
	2026: "2026-05-27",
	2027: "2027-05-16",
	2028: "2028-05-05",
	2029: "2029-04-24",
	2030: "2030-04-13",
	2031: "2031-04-02",
	2032: "2032-03-22",
	2033: "2033-03-11",
	2034: "2034-03-01",
	2035: "2035-02-18",
}

const (
	ramadanFeastDays   = 3
	sacrificeFeastDays = 4

	FirstReligiousYear = 2025
	LastReligiousYear  = 2035
)
