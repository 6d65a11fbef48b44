package domain

type UserRole string

const (
	UserRolePatient        UserRole = "patient"
	UserRoleTherapist      UserRole = "therapist"
	UserRoleEducadorFisico UserRole = "educador_fisico"
	UserRoleAdmin          UserRole = "admin"
)

// Actor is the authenticated identity appointment visibility is decided
// against. It is built by the auth middleware from token claims and
// passed explicitly down to the calendar engine, never read from
// ambient state.
type Actor struct {
	UserID      int64    `json:"user_id"`
	Role        UserRole `json:"role"`
	PatientID   *int64   `json:"patient_id,omitempty"`
	TherapistID *int64   `json:"therapist_id,omitempty"`
}
