package energy

import "time"

// Period is a named reporting window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// IsValid checks if the period is one of the supported values.
func (p Period) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	default:
		return false
	}
}

// Interval is a concrete reporting window. Both bounds are inclusive:
// Start is the first instant of the window, End the last instant of its
// closing day.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// ResolvePeriod maps a named period and a reference date to a concrete
// interval in the reference date's location. Weeks start on Monday;
// monthly and yearly windows follow the calendar.
func ResolvePeriod(period Period, reference time.Time) Interval {
	year, month, day := reference.Date()
	loc := reference.Location()

	switch period {
	case PeriodWeekly:
		offset := int(reference.Weekday()) - 1
		if reference.Weekday() == time.Sunday {
			offset = 6
		}
		start := time.Date(year, month, day-offset, 0, 0, 0, 0, loc)
		return Interval{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
	case PeriodMonthly:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return Interval{Start: start, End: endOfDay(start.AddDate(0, 1, -1))}
	case PeriodYearly:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return Interval{Start: start, End: endOfDay(time.Date(year, time.December, 31, 0, 0, 0, 0, loc))}
	default:
		start := time.Date(year, month, day, 0, 0, 0, 0, loc)
		return Interval{Start: start, End: endOfDay(start)}
	}
}

func endOfDay(dayStart time.Time) time.Time {
	year, month, day := dayStart.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), dayStart.Location())
}
