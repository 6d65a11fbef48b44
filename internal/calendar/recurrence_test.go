package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fisiocal/internal/domain"
)

func weeklyTemplate() domain.RecurrenceTemplate {
	return domain.RecurrenceTemplate{
		ID:              uuid.New(),
		PatientID:       7,
		TherapistID:     3,
		Frequency:       domain.RecurrenceFrequencyWeekly,
		Weekdays:        []time.Weekday{time.Monday, time.Wednesday},
		StartHour:       10,
		StartMinute:     0,
		DurationMinutes: 60,
		StartsOn:        date(2024, 3, 4), // a Monday
		Type:            domain.AppointmentTypeSession,
		IsActive:        true,
	}
}

func TestExpandTemplateWeekly(t *testing.T) {
	tpl := weeklyTemplate()
	window := DateRange{Start: date(2024, 3, 4), End: date(2024, 3, 17)}

	occs, err := ExpandTemplate(tpl, window)
	require.NoError(t, err)

	wantStarts := []time.Time{
		time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC),
	}
	require.Len(t, occs, len(wantStarts))
	for i, occ := range occs {
		require.True(t, occ.StartTime.Equal(wantStarts[i]), "occurrence %d starts %v, want %v", i, occ.StartTime, wantStarts[i])
		require.Equal(t, time.Hour, occ.Duration())
		require.NotNil(t, occ.SeriesID)
		require.Equal(t, tpl.ID, *occ.SeriesID)
		require.Equal(t, domain.AppointmentStatusScheduled, occ.Status)
		require.Equal(t, domain.PaymentStatusPending, occ.PaymentStatus)
		require.Zero(t, occ.ID, "occurrences come back unsaved")
	}
}

func TestExpandTemplateIsRestartable(t *testing.T) {
	tpl := weeklyTemplate()
	window := DateRange{Start: date(2024, 3, 4), End: date(2024, 3, 31)}

	first, err := ExpandTemplate(tpl, window)
	require.NoError(t, err)
	second, err := ExpandTemplate(tpl, window)
	require.NoError(t, err)
	require.Equal(t, first, second, "expansion must be a pure function of the template")
}

func TestExpandTemplateHonorsCount(t *testing.T) {
	tpl := weeklyTemplate()
	count := 3
	tpl.Count = &count
	window := DateRange{Start: date(2024, 3, 4), End: date(2024, 12, 31)}

	occs, err := ExpandTemplate(tpl, window)
	require.NoError(t, err)
	require.Len(t, occs, 3)
}

func TestExpandTemplateHonorsUntil(t *testing.T) {
	tpl := weeklyTemplate()
	until := date(2024, 3, 11)
	tpl.Until = &until
	window := DateRange{Start: date(2024, 3, 4), End: date(2024, 12, 31)}

	occs, err := ExpandTemplate(tpl, window)
	require.NoError(t, err)
	// Mar 4, 6 and 11; the until date itself still counts.
	require.Len(t, occs, 3)
	last := occs[len(occs)-1]
	require.True(t, last.StartTime.Equal(time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)))
}

func TestExpandTemplateDaily(t *testing.T) {
	tpl := weeklyTemplate()
	tpl.Frequency = domain.RecurrenceFrequencyDaily
	tpl.Weekdays = nil
	window := DateRange{Start: date(2024, 3, 4), End: date(2024, 3, 8)}

	occs, err := ExpandTemplate(tpl, window)
	require.NoError(t, err)
	require.Len(t, occs, 5)
}

func TestExpandTemplateUnknownFrequency(t *testing.T) {
	tpl := weeklyTemplate()
	tpl.Frequency = "hourly"

	_, err := ExpandTemplate(tpl, DateRange{Start: date(2024, 3, 4), End: date(2024, 3, 8)})
	require.Error(t, err)
}
