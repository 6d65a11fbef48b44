package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fisiocal/internal/domain"
)

func TestLayoutBucketsByDay(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	r := ViewRange(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), ViewWeekly)

	appointments := []domain.Appointment{
		{
			ID:        1,
			StartTime: time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:        2,
			StartTime: time.Date(2024, 3, 11, 10, 30, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 11, 11, 15, 0, 0, time.UTC),
		},
		{
			ID:        3,
			StartTime: time.Date(2024, 3, 13, 7, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC),
		},
	}

	days := grid.Layout(r, appointments)
	require.Len(t, days, 7)

	monday := days[0]
	require.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), monday.Date)
	require.Len(t, monday.Entries, 2)

	// 08:00 with the grid starting at 06:00 is 120 minutes down.
	require.Equal(t, 240.0, monday.Entries[0].OffsetPx)
	require.Equal(t, 120.0, monday.Entries[0].HeightPx)

	require.Equal(t, int64(2), monday.Entries[1].Appointment.ID)
	require.Equal(t, 540.0, monday.Entries[1].OffsetPx)
	require.Equal(t, 90.0, monday.Entries[1].HeightPx)

	require.Empty(t, days[1].Entries)

	wednesday := days[2]
	require.Len(t, wednesday.Entries, 1)
	require.Equal(t, int64(3), wednesday.Entries[0].Appointment.ID)
}

func TestLayoutBucketsAcrossLocations(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	clinic := time.FixedZone("clinic", -3*60*60)
	r := ViewRange(time.Date(2024, 3, 14, 0, 0, 0, 0, clinic), ViewDaily)

	// Storage hands timestamps back in a different location; the same
	// instant is 08:00 on the clinic's wall clock.
	appointments := []domain.Appointment{
		{
			ID:        1,
			StartTime: time.Date(2024, 3, 14, 11, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
		},
	}

	days := grid.Layout(r, appointments)
	require.Len(t, days, 1)
	require.Len(t, days[0].Entries, 1)
	require.Equal(t, int64(1), days[0].Entries[0].Appointment.ID)
	require.Equal(t, 240.0, days[0].Entries[0].OffsetPx)
	require.Equal(t, 120.0, days[0].Entries[0].HeightPx)
}

func TestLayoutSkipsRowsStartingOutsideRange(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	r := ViewRange(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), ViewDaily)

	// An overlap query can return a session that began the evening
	// before; the daily view has no column for it.
	appointments := []domain.Appointment{
		{ID: 1,
			StartTime: time.Date(2024, 3, 13, 23, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 14, 0, 30, 0, 0, time.UTC)},
		{ID: 2,
			StartTime: time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)},
	}

	days := grid.Layout(r, appointments)
	require.Len(t, days, 1)
	require.Len(t, days[0].Entries, 1)
	require.Equal(t, int64(2), days[0].Entries[0].Appointment.ID)
}

func TestLayoutKeepsEmptyRange(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	r := ViewRange(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), ViewDaily)

	days := grid.Layout(r, nil)
	require.Len(t, days, 1)
	require.Empty(t, days[0].Entries)
}
