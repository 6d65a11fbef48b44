package calendar

import (
	"time"
)

type ViewMode string

const (
	ViewDaily   ViewMode = "daily"
	ViewWeekly  ViewMode = "weekly"
	ViewMonthly ViewMode = "monthly"
	ViewList    ViewMode = "list"
)

// DateRange is the inclusive date window a calendar view displays.
// Start and End are midnights in the reference date's location.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End.AddDate(0, 0, 1))
}

// ViewRange computes the inclusive window to query and display for a
// reference date and view mode:
//
//	daily:   the day itself
//	weekly:  Monday of the date's week through Sunday
//	monthly: first through last day of the date's month
//	list:    Monday of the date's week, two weeks rolling
//
// The result is always well-ordered (Start <= End).
func ViewRange(date time.Time, view ViewMode) DateRange {
	day := StartOfDay(date)

	switch view {
	case ViewWeekly:
		start := startOfWeek(day)
		return DateRange{Start: start, End: start.AddDate(0, 0, 6)}
	case ViewMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return DateRange{Start: start, End: start.AddDate(0, 1, -1)}
	case ViewList:
		start := startOfWeek(day)
		return DateRange{Start: start, End: start.AddDate(0, 0, 13)}
	default:
		return DateRange{Start: day, End: day}
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay is the last instant of t's day, used when an inclusive date
// range is turned into a timestamp query bound.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// addMonths shifts t by delta calendar months, clamping to the last day
// of the target month so Jan 31 + 1 month is Feb 28/29, not Mar 3.
func addMonths(t time.Time, delta int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, delta, 0)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
