package calendar

import (
	"fisiocal/internal/domain"
)

// Visible projects the appointment set down to what the actor may see.
//
//	patient:          own appointments only
//	educador físico:  appointments assigned to them as therapist
//	therapist, admin: everything
//
// Unrecognized roles take the identity branch. That fail-open default
// keeps administrative roles from losing data unexpectedly, but it is a
// policy decision worth reviewing, not a hard invariant.
func Visible(appointments []domain.Appointment, actor domain.Actor) []domain.Appointment {
	switch actor.Role {
	case domain.UserRolePatient:
		out := make([]domain.Appointment, 0, len(appointments))
		for _, a := range appointments {
			if actor.PatientID != nil && a.PatientID == *actor.PatientID {
				out = append(out, a)
			}
		}
		return out
	case domain.UserRoleEducadorFisico:
		out := make([]domain.Appointment, 0, len(appointments))
		for _, a := range appointments {
			if actor.TherapistID != nil && a.TherapistID == *actor.TherapistID {
				out = append(out, a)
			}
		}
		return out
	default:
		return appointments
	}
}
