package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fisiocal/internal/domain"
)

func sampleAppointment() domain.Appointment {
	return domain.Appointment{
		ID:          42,
		PatientID:   7,
		TherapistID: 3,
		StartTime:   time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2024, 3, 12, 9, 45, 0, 0, time.UTC),
		Status:      domain.AppointmentStatusScheduled,
		Notes:       "lombalgia, sessão 4",
	}
}

func TestReschedulePreservesDuration(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	appt := sampleAppointment()

	for px := float64(0); px <= 1200; px += 37 {
		got, err := grid.Reschedule(appt, DropTarget{Day: date(2024, 3, 14), OffsetPx: px, TherapistID: 5})
		require.NoError(t, err)
		require.Equal(t, appt.Duration(), got.Duration(), "duration must survive the drop at %vpx", px)
	}
}

func TestRescheduleSnapsAndReassignsTherapist(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	appt := sampleAppointment()

	got, err := grid.Reschedule(appt, DropTarget{Day: date(2024, 3, 14), OffsetPx: 130, TherapistID: 5})
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, 3, 14, 7, 0, 0, 0, time.UTC), got.StartTime)
	require.Equal(t, time.Date(2024, 3, 14, 7, 45, 0, 0, time.UTC), got.EndTime)
	require.Equal(t, int64(5), got.TherapistID)

	// Everything else stays untouched.
	require.Equal(t, appt.ID, got.ID)
	require.Equal(t, appt.PatientID, got.PatientID)
	require.Equal(t, appt.Status, got.Status)
	require.Equal(t, appt.Notes, got.Notes)
}

func TestRescheduleRejectsMalformedPayload(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}

	tests := []struct {
		name string
		appt domain.Appointment
		drop DropTarget
	}{
		{"missing appointment", domain.Appointment{}, DropTarget{Day: date(2024, 3, 14), TherapistID: 5}},
		{"inverted times", func() domain.Appointment {
			a := sampleAppointment()
			a.EndTime = a.StartTime
			return a
		}(), DropTarget{Day: date(2024, 3, 14), TherapistID: 5}},
		{"zero day", sampleAppointment(), DropTarget{TherapistID: 5}},
		{"missing resource column", sampleAppointment(), DropTarget{Day: date(2024, 3, 14)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := grid.Reschedule(tc.appt, tc.drop)
			if !errors.Is(err, ErrInvalidDragPayload) {
				t.Fatalf("err = %v, want ErrInvalidDragPayload", err)
			}
		})
	}
}
