package schedule

import "time"

// DateOf returns the calendar date of t as UTC midnight.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns day limited to the last day of the given month.
func ClampDay(year int, month time.Month, day int) int {
	if day < 1 {
		return 1
	}
	if last := LastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

// clampedDate builds the date for day in the month that is offset months after
// (year, month), clamping day to that month's length.
func clampedDate(year int, month time.Month, offset int, day int) time.Time {
	first := time.Date(year, month+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
	return time.Date(first.Year(), first.Month(), ClampDay(first.Year(), first.Month(), day), 0, 0, 0, 0, time.UTC)
}

// monthsBetween counts whole calendar months from a to b, ignoring days.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// daysBetween counts calendar days from a to b. Both must be UTC dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// Period is a calendar month.
type Period struct {
	Month int
	Year  int
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Start returns the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period.
func (p Period) End() time.Time {
	return time.Date(p.Year, time.Month(p.Month), LastDayOfMonth(p.Year, time.Month(p.Month)), 0, 0, 0, 0, time.UTC)
}

// Next returns the following period.
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// PeriodsBetween returns every period from the one containing from through the one
// containing to, inclusive. It returns nil when to is before from.
func PeriodsBetween(from, to time.Time) []Period {
	start, end := PeriodOf(from), PeriodOf(to)
	if end.Before(start) {
		return nil
	}
	periods := make([]Period, 0, monthsBetween(start.Start(), end.Start())+1)
	for p := start; !end.Before(p); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}
