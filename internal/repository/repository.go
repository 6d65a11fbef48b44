package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fisiocal/internal/domain"
)

type Repositories struct {
	User        UserRepository
	Auth        AuthRepository
	Patient     PatientRepository
	Therapist   TherapistRepository
	Appointment AppointmentRepository
	Template    TemplateRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Auth:        NewAuthRepository(db),
		Patient:     NewPatientRepository(db),
		Therapist:   NewTherapistRepository(db),
		Appointment: NewAppointmentRepository(db),
		Template:    NewTemplateRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type PatientRepository interface {
	Create(ctx context.Context, dto domain.CreatePatientDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Patient, error)
	Update(ctx context.Context, id int64, dto domain.UpdatePatientDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Patient, error)
}

type TherapistRepository interface {
	Create(ctx context.Context, dto domain.CreateTherapistDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Therapist, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Therapist, error)
	Update(ctx context.Context, id int64, dto domain.UpdateTherapistDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Therapist, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, dto domain.CreateAppointmentDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)
	ListRange(ctx context.Context, start, end time.Time, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountOverlapping(ctx context.Context, therapistID int64, start, end time.Time, excludeID int64) (int, error)

	// The versioned updates return domain.ErrConflict when the stored
	// version differs from the expected one, and domain.ErrNotFound when
	// the row is gone.
	UpdateTimes(ctx context.Context, id int64, start, end time.Time, therapistID, version int64) error
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, version int64) error
	UpdatePayment(ctx context.Context, id int64, payment domain.PaymentStatus, version int64) error

	Delete(ctx context.Context, id int64) error

	// InsertOccurrences skips slots that already exist or were excluded
	// by a prior occurrence deletion, so materialization never brings a
	// removed occurrence back.
	InsertOccurrences(ctx context.Context, occurrences []domain.Appointment) (int64, error)
	DeleteOccurrence(ctx context.Context, id int64) error
	DeleteSeriesFrom(ctx context.Context, seriesID uuid.UUID, from time.Time) (int64, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, tpl domain.RecurrenceTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error)
	List(ctx context.Context, filter domain.RecurrenceTemplateFilter) ([]domain.RecurrenceTemplate, error)
	ListActive(ctx context.Context) ([]domain.RecurrenceTemplate, error)
	SetUntil(ctx context.Context, id uuid.UUID, until time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
