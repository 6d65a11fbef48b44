package calendar

import (
	"testing"
	"time"
)

func TestControllerNavigateStrides(t *testing.T) {
	tests := []struct {
		view  ViewMode
		delta int
		want  time.Time
	}{
		{ViewDaily, 1, date(2024, 3, 15)},
		{ViewDaily, -1, date(2024, 3, 13)},
		{ViewWeekly, 1, date(2024, 3, 21)},
		{ViewWeekly, -2, date(2024, 2, 29)},
		{ViewList, 1, date(2024, 3, 28)},
		{ViewMonthly, 1, date(2024, 4, 14)},
		{ViewMonthly, -1, date(2024, 2, 14)},
	}

	for _, tc := range tests {
		c := NewController(date(2024, 3, 14), tc.view)
		c.Navigate(tc.delta)
		if got := c.State().CurrentDate; !got.Equal(tc.want) {
			t.Fatalf("%s navigate(%d): date = %v, want %v", tc.view, tc.delta, got, tc.want)
		}
	}
}

func TestControllerRangeRecomputedFromState(t *testing.T) {
	c := NewController(date(2024, 3, 14), ViewWeekly)

	r := c.Range()
	if !r.Start.Equal(date(2024, 3, 11)) || !r.End.Equal(date(2024, 3, 17)) {
		t.Fatalf("initial range %v..%v", r.Start, r.End)
	}

	r = c.Navigate(1)
	if !r.Start.Equal(date(2024, 3, 18)) || !r.End.Equal(date(2024, 3, 24)) {
		t.Fatalf("range after navigate %v..%v", r.Start, r.End)
	}

	r = c.ChangeView(ViewMonthly)
	if !r.Start.Equal(date(2024, 3, 1)) || !r.End.Equal(date(2024, 3, 31)) {
		t.Fatalf("range after view change %v..%v", r.Start, r.End)
	}
}

func TestControllerToday(t *testing.T) {
	c := NewController(date(2020, 1, 1), ViewDaily)
	c.now = func() time.Time { return time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC) }

	r := c.Today()
	if !c.State().CurrentDate.Equal(date(2024, 3, 14)) {
		t.Fatalf("today did not reset the reference date: %v", c.State().CurrentDate)
	}
	if !r.Start.Equal(date(2024, 3, 14)) {
		t.Fatalf("range not re-derived: %v", r.Start)
	}
}

func TestControllerTodayFollowsClockLocation(t *testing.T) {
	clinic := time.FixedZone("clinic", -3*60*60)
	// Half past midnight UTC is still the previous evening on the
	// clinic's clock; Today must land on the clinic's day, not roll
	// over with the host.
	now := time.Date(2024, 3, 15, 0, 30, 0, 0, time.UTC).In(clinic)
	c := NewController(time.Date(2024, 3, 1, 0, 0, 0, 0, clinic), ViewDaily).
		WithClock(func() time.Time { return now })

	c.Today()
	want := time.Date(2024, 3, 14, 0, 0, 0, 0, clinic)
	if got := c.State().CurrentDate; !got.Equal(want) {
		t.Fatalf("today = %v, want %v", got, want)
	}
}

func TestControllerSelectDateDrillsDownFromMonthly(t *testing.T) {
	c := NewController(date(2024, 3, 1), ViewMonthly)

	r := c.SelectDate(date(2024, 3, 21))
	if c.State().CurrentView != ViewDaily {
		t.Fatalf("monthly select should switch to daily, got %s", c.State().CurrentView)
	}
	if !r.Start.Equal(date(2024, 3, 21)) || !r.End.Equal(date(2024, 3, 21)) {
		t.Fatalf("range after drill-down %v..%v", r.Start, r.End)
	}

	// No cross-view transition outside the monthly view.
	c = NewController(date(2024, 3, 1), ViewWeekly)
	c.SelectDate(date(2024, 3, 21))
	if c.State().CurrentView != ViewWeekly {
		t.Fatalf("weekly select must keep the view, got %s", c.State().CurrentView)
	}
}

func TestControllerDragLifecycle(t *testing.T) {
	c := NewController(date(2024, 3, 14), ViewDaily)

	if c.Dragging() {
		t.Fatal("fresh controller should not be dragging")
	}

	c.BeginDrag(42)
	if !c.Dragging() {
		t.Fatal("drag not registered")
	}

	id, ok := c.FinishDrag()
	if !ok || id != 42 {
		t.Fatalf("FinishDrag = (%d, %v), want (42, true)", id, ok)
	}
	if c.Dragging() {
		t.Fatal("drag state must clear on drop")
	}

	c.BeginDrag(7)
	c.CancelDrag()
	if c.Dragging() {
		t.Fatal("drag state must clear on cancel")
	}
	if _, ok := c.FinishDrag(); ok {
		t.Fatal("canceled drag must not produce a drop")
	}
}
