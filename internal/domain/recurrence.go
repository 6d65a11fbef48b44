package domain

import (
	"time"

	"github.com/google/uuid"
)

type RecurrenceFrequency string

const (
	RecurrenceFrequencyDaily  RecurrenceFrequency = "daily"
	RecurrenceFrequencyWeekly RecurrenceFrequency = "weekly"
)

// RecurrenceTemplate is the generation rule behind a series of
// appointments. Occurrences carry the template's ID as their SeriesID.
type RecurrenceTemplate struct {
	ID              uuid.UUID           `json:"id"`
	PatientID       int64               `json:"patient_id"`
	TherapistID     int64               `json:"therapist_id"`
	Frequency       RecurrenceFrequency `json:"frequency"`
	Weekdays        []time.Weekday      `json:"weekdays"` // weekly only
	StartHour       int                 `json:"start_hour"`
	StartMinute     int                 `json:"start_minute"`
	DurationMinutes int                 `json:"duration_minutes"`
	StartsOn        time.Time           `json:"starts_on"`
	Until           *time.Time          `json:"until,omitempty"`
	Count           *int                `json:"count,omitempty"`
	Type            AppointmentType     `json:"type"`
	Value           *float64            `json:"value,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	IsActive        bool                `json:"is_active"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type CreateRecurrenceTemplateDTO struct {
	PatientID       int64               `json:"patient_id" binding:"required"`
	TherapistID     int64               `json:"therapist_id" binding:"required"`
	Frequency       RecurrenceFrequency `json:"frequency" binding:"required,oneof=daily weekly"`
	Weekdays        []int               `json:"weekdays"`
	StartHour       int                 `json:"start_hour" binding:"min=0,max=23"`
	StartMinute     int                 `json:"start_minute" binding:"min=0,max=59"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,min=15,max=240"`
	StartsOn        string              `json:"starts_on" binding:"required"`
	Until           *string             `json:"until"`
	Count           *int                `json:"count"`
	Type            AppointmentType     `json:"type" binding:"required,oneof=evaluation session reassessment group"`
	Value           *float64            `json:"value"`
	Notes           string              `json:"notes"`
}

type RecurrenceTemplateFilter struct {
	PatientID   *int64 `json:"patient_id"`
	TherapistID *int64 `json:"therapist_id"`
	ActiveOnly  bool   `json:"active_only"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
}
