package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"fisiocal/internal/domain"
)

// maxOccurrencesPerTemplate caps a single expansion so a template with
// a generous end condition cannot blow up a materialization run.
const maxOccurrencesPerTemplate = 500

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// ExpandTemplate produces the concrete occurrences of a recurrence
// template that start inside the window. It is a pure function of the
// template, restartable, and always finite: the template's end
// condition, the window, and maxOccurrencesPerTemplate all bound it.
// Occurrences come back as unsaved appointments (ID zero) carrying the
// template's ID as SeriesID.
func ExpandTemplate(tpl domain.RecurrenceTemplate, window DateRange) ([]domain.Appointment, error) {
	dtstart := time.Date(
		tpl.StartsOn.Year(), tpl.StartsOn.Month(), tpl.StartsOn.Day(),
		tpl.StartHour, tpl.StartMinute, 0, 0, tpl.StartsOn.Location(),
	)

	opt := rrule.ROption{
		Dtstart: dtstart,
	}

	switch tpl.Frequency {
	case domain.RecurrenceFrequencyDaily:
		opt.Freq = rrule.DAILY
	case domain.RecurrenceFrequencyWeekly:
		opt.Freq = rrule.WEEKLY
		for _, wd := range tpl.Weekdays {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}
	default:
		return nil, fmt.Errorf("unsupported recurrence frequency %q", tpl.Frequency)
	}

	if tpl.Until != nil {
		opt.Until = EndOfDay(*tpl.Until)
	}
	if tpl.Count != nil {
		opt.Count = *tpl.Count
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	duration := time.Duration(tpl.DurationMinutes) * time.Minute
	starts := rule.Between(window.Start, EndOfDay(window.End), true)
	if len(starts) > maxOccurrencesPerTemplate {
		starts = starts[:maxOccurrencesPerTemplate]
	}

	seriesID := tpl.ID
	occurrences := make([]domain.Appointment, 0, len(starts))
	for _, start := range starts {
		occurrences = append(occurrences, domain.Appointment{
			PatientID:     tpl.PatientID,
			TherapistID:   tpl.TherapistID,
			StartTime:     start,
			EndTime:       start.Add(duration),
			Status:        domain.AppointmentStatusScheduled,
			PaymentStatus: domain.PaymentStatusPending,
			Value:         tpl.Value,
			Type:          tpl.Type,
			Notes:         tpl.Notes,
			SeriesID:      &seriesID,
		})
	}

	return occurrences, nil
}
