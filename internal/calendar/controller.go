package calendar

import (
	"time"
)

// ViewState is what a calendar view is derived from: a reference date
// and a view mode. The visible range is always a pure function of the
// two, never cached or incrementally patched, so navigation cannot
// drift from what is displayed.
type ViewState struct {
	CurrentDate time.Time `json:"current_date"`
	CurrentView ViewMode  `json:"current_view"`
}

// DragState tracks the appointment under an active drag gesture, if
// any. It exists only between drag start and drop/cancel.
type DragState struct {
	DraggedAppointmentID *int64 `json:"dragged_appointment_id,omitempty"`
}

// Controller is the navigation state machine behind a calendar session.
// It owns ViewState and DragState and re-derives the visible range on
// every navigation or view change; fetching, filtering and persistence
// stay with the caller.
type Controller struct {
	state ViewState
	drag  DragState
	now   func() time.Time
}

func NewController(date time.Time, view ViewMode) *Controller {
	return &Controller{
		state: ViewState{CurrentDate: StartOfDay(date), CurrentView: view},
		now:   time.Now,
	}
}

// WithClock replaces the time source behind Today. Callers serving
// users in a different zone than the host pass a clock pinned to the
// users' location so "today" lands on their wall-clock day, not the
// server's.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

func (c *Controller) State() ViewState {
	return c.state
}

// Range recomputes the visible window from the current state.
func (c *Controller) Range() DateRange {
	return ViewRange(c.state.CurrentDate, c.state.CurrentView)
}

// Navigate moves the reference date by delta steps of the current
// view's stride: a day, a week, a calendar month, or two weeks for the
// list view.
func (c *Controller) Navigate(delta int) DateRange {
	switch c.state.CurrentView {
	case ViewWeekly:
		c.state.CurrentDate = c.state.CurrentDate.AddDate(0, 0, 7*delta)
	case ViewMonthly:
		c.state.CurrentDate = addMonths(c.state.CurrentDate, delta)
	case ViewList:
		c.state.CurrentDate = c.state.CurrentDate.AddDate(0, 0, 14*delta)
	default:
		c.state.CurrentDate = c.state.CurrentDate.AddDate(0, 0, delta)
	}
	return c.Range()
}

// Today resets the reference date to the current day, keeping the view.
func (c *Controller) Today() DateRange {
	c.state.CurrentDate = StartOfDay(c.now())
	return c.Range()
}

// ChangeView switches the view mode and re-derives the range.
func (c *Controller) ChangeView(view ViewMode) DateRange {
	c.state.CurrentView = view
	return c.Range()
}

// SelectDate moves the reference date to the selected day. In the
// monthly view selecting a date also drills down into the daily view;
// no other view has that cross-view transition.
func (c *Controller) SelectDate(date time.Time) DateRange {
	c.state.CurrentDate = StartOfDay(date)
	if c.state.CurrentView == ViewMonthly {
		c.state.CurrentView = ViewDaily
	}
	return c.Range()
}

// BeginDrag records the appointment under an active drag gesture.
func (c *Controller) BeginDrag(appointmentID int64) {
	c.drag.DraggedAppointmentID = &appointmentID
}

// CancelDrag aborts the gesture (pointer released outside a valid drop
// target): the drag state is cleared and nothing is persisted.
func (c *Controller) CancelDrag() {
	c.drag.DraggedAppointmentID = nil
}

// FinishDrag returns the dragged appointment ID and clears the drag
// state. The second result is false when no drag was active.
func (c *Controller) FinishDrag() (int64, bool) {
	if c.drag.DraggedAppointmentID == nil {
		return 0, false
	}
	id := *c.drag.DraggedAppointmentID
	c.drag.DraggedAppointmentID = nil
	return id, true
}

// Dragging reports whether a drag gesture is in progress.
func (c *Controller) Dragging() bool {
	return c.drag.DraggedAppointmentID != nil
}
