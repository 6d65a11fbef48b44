package calendar

import (
	"time"

	"fisiocal/internal/domain"
)

// Entry is an appointment placed on the day grid: the appointment plus
// its vertical position and extent in pixels.
type Entry struct {
	Appointment domain.Appointment `json:"appointment"`
	OffsetPx    float64            `json:"offset_px"`
	HeightPx    float64            `json:"height_px"`
}

// Day is one rendered day column.
type Day struct {
	Date    time.Time `json:"date"`
	Entries []Entry   `json:"entries"`
}

// Layout buckets appointments into the day columns of the given range
// and computes each one's grid position. Every day in the range gets a
// column, empty ones included, so the caller renders a stable grid.
// Appointments are bucketed by their start day in the range's location,
// so timestamps arriving in another zone (the driver hands them back in
// server-local time) land on the clinic's wall-clock day. Entries
// within a day keep the order they arrive in, which is start-time order
// when the input comes sorted from storage.
func (g TimeGrid) Layout(r DateRange, appointments []domain.Appointment) []Day {
	loc := r.Start.Location()

	byDay := make(map[string][]Entry)
	for _, appt := range appointments {
		start := appt.StartTime.In(loc)
		// Range queries match by overlap, so a row can start before the
		// window and still be returned; it has no column to land on.
		if !r.Contains(start) {
			continue
		}
		day := StartOfDay(start).Format(dayKeyLayout)
		byDay[day] = append(byDay[day], Entry{
			Appointment: appt,
			OffsetPx:    g.TimeToOffset(start),
			HeightPx:    appt.Duration().Minutes() * g.PixelsPerMinute,
		})
	}

	days := make([]Day, 0)
	for d := StartOfDay(r.Start); !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, Day{Date: d, Entries: byDay[d.Format(dayKeyLayout)]})
	}
	return days
}

const dayKeyLayout = "2006-01-02"
