package prioritization

import "time"

// Reporting periods
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// NormalizePeriod maps unknown or empty periods to weekly
func NormalizePeriod(period string) string {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return period
	default:
		return PeriodWeekly
	}
}

// DateRange returns the reporting window for period. The window ends at the
// last millisecond of now's day and starts at midnight of the first day.
func DateRange(period string, now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	loc := now.Location()

	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var start time.Time
	switch NormalizePeriod(period) {
	case PeriodDaily:
		start = startOfToday
	case PeriodMonthly:
		start = startOfToday.AddDate(0, -1, 0)
	case PeriodYearly:
		start = startOfToday.AddDate(-1, 0, 0)
	default:
		start = startOfToday.AddDate(0, 0, -7)
	}

	return start, end
}

// FormatTimestamp renders t as UTC ISO-8601 with milliseconds
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
