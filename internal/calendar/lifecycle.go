package calendar

import (
	"fisiocal/internal/domain"
)

// Transition overwrites the appointment's status unconditionally. The
// engine deliberately imposes no transition guard: clinical workflows
// need corrections (a no-show that did show up, a completed session
// reopened), and rejecting them here would push workarounds into the
// persistence layer. Guards, if any, belong to the caller.
func Transition(appt domain.Appointment, status domain.AppointmentStatus) domain.Appointment {
	updated := appt
	updated.Status = status
	return updated
}

// MarkPaid advances the payment status to paid. The reverse direction
// is an administrative action outside this engine.
func MarkPaid(appt domain.Appointment) domain.Appointment {
	updated := appt
	updated.PaymentStatus = domain.PaymentStatusPaid
	return updated
}

// IsTerminal reports whether no further status transition is defined
// for the given status.
func IsTerminal(status domain.AppointmentStatus) bool {
	switch status {
	case domain.AppointmentStatusCompleted,
		domain.AppointmentStatusCanceled,
		domain.AppointmentStatusNoShow:
		return true
	}
	return false
}
