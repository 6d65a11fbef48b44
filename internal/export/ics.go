package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"fisiocal/internal/domain"
)

const calendarProdID = "-//fisiocal//agenda//PT-BR"

// BuildCalendar renders the given appointments as an iCalendar
// document. Canceled appointments are carried through with the
// CANCELLED status so subscribing clients drop them instead of
// keeping a stale copy.
func BuildCalendar(name string, appointments []domain.Appointment) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProdID)
	cal.SetName(name)
	cal.SetXWRCalName(name)

	for _, appt := range appointments {
		event := cal.AddEvent(eventUID(appt))
		event.SetDtStampTime(appt.UpdatedAt)
		event.SetStartAt(appt.StartTime)
		event.SetEndAt(appt.EndTime)
		event.SetSummary(eventSummary(appt))
		event.SetLocation("Clínica")

		if appt.Notes != "" {
			event.SetDescription(appt.Notes)
		}

		switch appt.Status {
		case domain.AppointmentStatusCanceled:
			event.SetStatus(ics.ObjectStatusCancelled)
		case domain.AppointmentStatusConfirmed, domain.AppointmentStatusCompleted:
			event.SetStatus(ics.ObjectStatusConfirmed)
		default:
			event.SetStatus(ics.ObjectStatusTentative)
		}
	}

	return cal.Serialize()
}

func eventUID(appt domain.Appointment) string {
	return fmt.Sprintf("appointment-%d@fisiocal", appt.ID)
}

func eventSummary(appt domain.Appointment) string {
	label := typeLabel(appt.Type)
	if appt.PatientName != "" {
		return fmt.Sprintf("%s - %s", label, appt.PatientName)
	}
	return label
}

func typeLabel(t domain.AppointmentType) string {
	switch t {
	case domain.AppointmentTypeEvaluation:
		return "Avaliação"
	case domain.AppointmentTypeReassessment:
		return "Reavaliação"
	case domain.AppointmentTypeGroup:
		return "Sessão em grupo"
	default:
		return "Sessão"
	}
}

// ArchiveObjectName is the storage key for an exported calendar file.
func ArchiveObjectName(therapistID int64, at time.Time) string {
	return fmt.Sprintf("exports/therapist-%d/%s.ics", therapistID, at.Format("2006-01-02T15-04-05"))
}
