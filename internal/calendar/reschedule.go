package calendar

import (
	"errors"
	"time"

	"fisiocal/internal/domain"
)

// ErrInvalidDragPayload marks a drop gesture whose payload is missing
// or unparseable. The gesture is aborted without mutating anything.
var ErrInvalidDragPayload = errors.New("invalid drag payload")

// DropTarget is where a dragged appointment was released: a day column,
// a vertical pixel offset inside it, and the resource (therapist)
// column it landed on.
type DropTarget struct {
	Day         time.Time
	OffsetPx    float64
	TherapistID int64
}

// Reschedule converts a drop gesture into an updated appointment: the
// start snaps to the grid, the original duration is preserved and the
// therapist follows the target column. Everything else is untouched.
// The function is pure; persisting (and rolling back on failure) is the
// caller's job.
func (g TimeGrid) Reschedule(appt domain.Appointment, drop DropTarget) (domain.Appointment, error) {
	if appt.ID == 0 || !appt.EndTime.After(appt.StartTime) {
		return domain.Appointment{}, ErrInvalidDragPayload
	}
	if drop.Day.IsZero() || drop.TherapistID == 0 {
		return domain.Appointment{}, ErrInvalidDragPayload
	}

	duration := appt.Duration()
	snappedStart := g.OffsetToTime(drop.Day, drop.OffsetPx)

	updated := appt
	updated.StartTime = snappedStart
	updated.EndTime = snappedStart.Add(duration)
	updated.TherapistID = drop.TherapistID

	return updated, nil
}
