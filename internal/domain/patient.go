package domain

import (
	"time"
)

type Patient struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	BirthDate   *string   `json:"birth_date,omitempty"`
	Diagnosis   string    `json:"diagnosis,omitempty"`
	Observation string    `json:"observation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
}

type CreatePatientDTO struct {
	UserID      int64   `json:"user_id" binding:"required"`
	BirthDate   *string `json:"birth_date"`
	Diagnosis   string  `json:"diagnosis"`
	Observation string  `json:"observation"`
}

type UpdatePatientDTO struct {
	BirthDate   *string `json:"birth_date"`
	Diagnosis   *string `json:"diagnosis"`
	Observation *string `json:"observation"`
}
