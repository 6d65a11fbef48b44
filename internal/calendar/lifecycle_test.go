package calendar

import (
	"testing"

	"fisiocal/internal/domain"
)

func TestTransitionOverwritesStatus(t *testing.T) {
	appt := sampleAppointment()

	got := Transition(appt, domain.AppointmentStatusConfirmed)
	if got.Status != domain.AppointmentStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", got.Status)
	}
	if appt.Status != domain.AppointmentStatusScheduled {
		t.Fatalf("input appointment mutated")
	}
}

func TestTransitionIsPermissive(t *testing.T) {
	// Corrections are legal: the engine does not block transitions out
	// of terminal states, that is the caller's call to make.
	appt := sampleAppointment()
	appt.Status = domain.AppointmentStatusCompleted

	got := Transition(appt, domain.AppointmentStatusScheduled)
	if got.Status != domain.AppointmentStatusScheduled {
		t.Fatalf("status = %s, want scheduled", got.Status)
	}
}

func TestMarkPaid(t *testing.T) {
	appt := sampleAppointment()
	appt.PaymentStatus = domain.PaymentStatusPending

	got := MarkPaid(appt)
	if got.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", got.PaymentStatus)
	}
	if got.Status != appt.Status {
		t.Fatalf("payment change must not touch appointment status")
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status domain.AppointmentStatus
		want   bool
	}{
		{domain.AppointmentStatusScheduled, false},
		{domain.AppointmentStatusConfirmed, false},
		{domain.AppointmentStatusCompleted, true},
		{domain.AppointmentStatusCanceled, true},
		{domain.AppointmentStatusNoShow, true},
	}
	for _, tc := range tests {
		if got := IsTerminal(tc.status); got != tc.want {
			t.Fatalf("IsTerminal(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
