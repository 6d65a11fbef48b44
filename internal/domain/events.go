package domain

import (
	"github.com/google/uuid"
)

type EventType string

const (
	EventAppointmentCreated     EventType = "appointment_created"
	EventAppointmentRescheduled EventType = "appointment_rescheduled"
	EventAppointmentStatus      EventType = "appointment_status_changed"
	EventAppointmentPayment     EventType = "appointment_payment_changed"
	EventAppointmentDeleted     EventType = "appointment_deleted"
	EventSeriesTruncated        EventType = "series_truncated"
)

// AppointmentEvent is the payload broadcast to connected calendar
// clients after a change has been persisted. It is never emitted for
// writes that failed or were rejected.
type AppointmentEvent struct {
	Type          EventType    `json:"type"`
	AppointmentID int64        `json:"appointment_id,omitempty"`
	SeriesID      *uuid.UUID   `json:"series_id,omitempty"`
	Appointment   *Appointment `json:"appointment,omitempty"`
}
