package domain

import (
	"time"
)

type TherapistKind string

const (
	TherapistKindFisioterapeuta TherapistKind = "fisioterapeuta"
	TherapistKindEducadorFisico TherapistKind = "educador_fisico"
)

type Therapist struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	Kind      TherapistKind `json:"kind"`
	License   string        `json:"license,omitempty"` // CREFITO / CREF registration
	Bio       string        `json:"bio,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	FirstName string        `json:"first_name,omitempty"`
	LastName  string        `json:"last_name,omitempty"`
}

type CreateTherapistDTO struct {
	UserID  int64         `json:"user_id" binding:"required"`
	Kind    TherapistKind `json:"kind" binding:"required,oneof=fisioterapeuta educador_fisico"`
	License string        `json:"license"`
	Bio     string        `json:"bio"`
}

type UpdateTherapistDTO struct {
	Kind    *TherapistKind `json:"kind" binding:"omitempty,oneof=fisioterapeuta educador_fisico"`
	License *string        `json:"license"`
	Bio     *string        `json:"bio"`
}
