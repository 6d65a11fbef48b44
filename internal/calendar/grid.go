package calendar

import (
	"math"
	"time"
)

// SnapMinutes is the fixed grid increment every slot click and drop is
// rounded to. Snapping keeps appointments grid-aligned regardless of
// pointer precision.
const SnapMinutes = 15

// TimeGrid converts between wall-clock time and vertical pixel position
// inside a single day column. StartHour is the grid's top edge,
// PixelsPerMinute its vertical density. PixelsPerMinute must be
// positive.
type TimeGrid struct {
	StartHour       int
	PixelsPerMinute float64
}

// TimeToOffset returns the pixel offset of t from the grid's top edge.
func (g TimeGrid) TimeToOffset(t time.Time) float64 {
	top := StartOfDay(t).Add(time.Duration(g.StartHour) * time.Hour)
	minutes := t.Sub(top).Minutes()
	return minutes * g.PixelsPerMinute
}

// OffsetToTime is the inverse of TimeToOffset for the given day,
// snapped to the nearest SnapMinutes increment. Offsets above the
// grid's first row clamp to it.
func (g TimeGrid) OffsetToTime(day time.Time, offsetPx float64) time.Time {
	minutes := offsetPx / g.PixelsPerMinute
	if minutes < 0 {
		minutes = 0
	}
	snapped := math.Round(minutes/SnapMinutes) * SnapMinutes

	return StartOfDay(day).
		Add(time.Duration(g.StartHour) * time.Hour).
		Add(time.Duration(snapped) * time.Minute)
}
