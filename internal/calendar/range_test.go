package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestViewRangeDaily(t *testing.T) {
	// 2024-03-14 is a Thursday.
	r := ViewRange(time.Date(2024, 3, 14, 16, 45, 12, 0, time.UTC), ViewDaily)
	if !r.Start.Equal(date(2024, 3, 14)) || !r.End.Equal(date(2024, 3, 14)) {
		t.Fatalf("daily range = %v..%v, want 2024-03-14..2024-03-14", r.Start, r.End)
	}
}

func TestViewRangeWeekly(t *testing.T) {
	r := ViewRange(date(2024, 3, 14), ViewWeekly)
	if !r.Start.Equal(date(2024, 3, 11)) {
		t.Fatalf("weekly start = %v, want Monday 2024-03-11", r.Start)
	}
	if !r.End.Equal(date(2024, 3, 17)) {
		t.Fatalf("weekly end = %v, want Sunday 2024-03-17", r.End)
	}
}

func TestViewRangeMonthly(t *testing.T) {
	tests := []struct {
		in         time.Time
		start, end time.Time
	}{
		{date(2024, 3, 14), date(2024, 3, 1), date(2024, 3, 31)},
		{date(2024, 2, 5), date(2024, 2, 1), date(2024, 2, 29)}, // leap year
		{date(2023, 2, 28), date(2023, 2, 1), date(2023, 2, 28)},
	}
	for _, tc := range tests {
		r := ViewRange(tc.in, ViewMonthly)
		if !r.Start.Equal(tc.start) || !r.End.Equal(tc.end) {
			t.Fatalf("monthly range for %v = %v..%v, want %v..%v", tc.in, r.Start, r.End, tc.start, tc.end)
		}
	}
}

func TestViewRangeList(t *testing.T) {
	r := ViewRange(date(2024, 3, 14), ViewList)
	if !r.Start.Equal(date(2024, 3, 11)) {
		t.Fatalf("list start = %v, want Monday 2024-03-11", r.Start)
	}
	if !r.End.Equal(date(2024, 3, 24)) {
		t.Fatalf("list end = %v, want 2024-03-24", r.End)
	}
}

func TestViewRangeAlwaysOrdered(t *testing.T) {
	views := []ViewMode{ViewDaily, ViewWeekly, ViewMonthly, ViewList}
	d := date(2023, 12, 25)
	for i := 0; i < 400; i++ {
		for _, v := range views {
			r := ViewRange(d, v)
			if r.End.Before(r.Start) {
				t.Fatalf("range for %v/%s is inverted: %v..%v", d, v, r.Start, r.End)
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestViewRangeWeekStartsOnMondayForAnyWeekday(t *testing.T) {
	for i := 0; i < 14; i++ {
		d := date(2024, 3, 10).AddDate(0, 0, i)
		for _, v := range []ViewMode{ViewWeekly, ViewList} {
			r := ViewRange(d, v)
			if r.Start.Weekday() != time.Monday {
				t.Fatalf("%s range for %v starts on %s, want Monday", v, d, r.Start.Weekday())
			}
		}
	}
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	got := addMonths(date(2024, 1, 31), 1)
	if !got.Equal(date(2024, 2, 29)) {
		t.Fatalf("addMonths(Jan 31, 1) = %v, want 2024-02-29", got)
	}
	got = addMonths(date(2024, 3, 31), -1)
	if !got.Equal(date(2024, 2, 29)) {
		t.Fatalf("addMonths(Mar 31, -1) = %v, want 2024-02-29", got)
	}
}
