package domain

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type AppointmentType string

const (
	AppointmentTypeEvaluation   AppointmentType = "evaluation"
	AppointmentTypeSession      AppointmentType = "session"
	AppointmentTypeReassessment AppointmentType = "reassessment"
	AppointmentTypeGroup        AppointmentType = "group"
)

type Appointment struct {
	ID            int64             `json:"id"`
	PatientID     int64             `json:"patient_id"`
	TherapistID   int64             `json:"therapist_id"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	Status        AppointmentStatus `json:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	Value         *float64          `json:"value,omitempty"`
	Type          AppointmentType   `json:"type"`
	Notes         string            `json:"notes,omitempty"`
	SeriesID      *uuid.UUID        `json:"series_id,omitempty"`
	Version       int64             `json:"version"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	PatientName   string            `json:"patient_name,omitempty"`
	TherapistName string            `json:"therapist_name,omitempty"`
}

// Duration is preserved across reschedules unless the appointment is
// explicitly edited.
func (a Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

type CreateAppointmentDTO struct {
	PatientID   int64           `json:"patient_id" binding:"required"`
	TherapistID int64           `json:"therapist_id" binding:"required"`
	StartTime   time.Time       `json:"start_time" binding:"required"`
	EndTime     time.Time       `json:"end_time" binding:"required"`
	Type        AppointmentType `json:"type" binding:"required,oneof=evaluation session reassessment group"`
	Value       *float64        `json:"value"`
	Notes       string          `json:"notes"`
	SeriesID    *uuid.UUID      `json:"series_id"`
}

type RescheduleDTO struct {
	Day      string  `json:"day" binding:"required"`
	OffsetPx float64 `json:"offset_px"`
	// Zero keeps the current therapist column.
	TherapistID int64 `json:"therapist_id"`
	Version     int64 `json:"version" binding:"required"`
}

type TransitionDTO struct {
	Status  AppointmentStatus `json:"status" binding:"required,oneof=scheduled confirmed completed canceled no_show"`
	Version int64             `json:"version" binding:"required"`
}

type PaymentDTO struct {
	Version int64 `json:"version" binding:"required"`
}

type AppointmentFilter struct {
	PatientID   *int64             `json:"patient_id"`
	TherapistID *int64             `json:"therapist_id"`
	SeriesID    *uuid.UUID         `json:"series_id"`
	Status      *AppointmentStatus `json:"status"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	Limit       int                `json:"limit"`
	Offset      int                `json:"offset"`
}
