package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fisiocal/config"
	"fisiocal/internal/calendar"
	"fisiocal/internal/domain"
	"fisiocal/internal/repository"
	"fisiocal/internal/storage"
	"fisiocal/pkg/metrics"
)

// Notifier pushes an event to connected calendar clients. Services
// call it only after the corresponding write has been persisted.
type Notifier interface {
	Broadcast(event domain.AppointmentEvent)
}

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Metrics     *metrics.SchedulingMetrics
	Notifier    Notifier
}

type Services struct {
	Auth        AuthService
	Patient     PatientService
	Therapist   TherapistService
	Appointment AppointmentService
	Series      SeriesService
	Calendar    CalendarService
}

type noopNotifier struct{}

func (noopNotifier) Broadcast(domain.AppointmentEvent) {}

func NewServices(deps Deps) *Services {
	if deps.Notifier == nil {
		deps.Notifier = noopNotifier{}
	}

	loc, err := time.LoadLocation(deps.Config.Calendar.Timezone)
	if err != nil {
		deps.Logger.Warn("unknown calendar timezone, falling back to UTC",
			zap.String("timezone", deps.Config.Calendar.Timezone), zap.Error(err))
		loc = time.UTC
	}

	grid := calendar.TimeGrid{
		StartHour:       deps.Config.Calendar.StartHour,
		PixelsPerMinute: deps.Config.Calendar.PixelsPerMinute,
	}

	appointment := NewAppointmentService(deps.Repos.Appointment, deps.Repos.Patient, deps.Repos.Therapist, grid, loc, deps.Metrics, deps.Notifier, deps.Logger)

	return &Services{
		Auth:        NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Repos.Patient, deps.Repos.Therapist, deps.Config.JWT, deps.Logger),
		Patient:     NewPatientService(deps.Repos.Patient, deps.Repos.User, deps.Logger),
		Therapist:   NewTherapistService(deps.Repos.Therapist, deps.Repos.User, deps.Logger),
		Appointment: appointment,
		Series:      NewSeriesService(deps.Repos.Template, deps.Repos.Appointment, loc, deps.Config.Jobs.HorizonWeeks, deps.Notifier, deps.Logger),
		Calendar:    NewCalendarService(deps.Repos.Appointment, deps.Repos.Therapist, grid, loc, deps.FileStorage, deps.Logger),
	}
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, tokenString string) (*domain.Actor, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type PatientService interface {
	Create(ctx context.Context, dto domain.CreatePatientDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Patient, error)
	Update(ctx context.Context, id int64, dto domain.UpdatePatientDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Patient, error)
}

type TherapistService interface {
	Create(ctx context.Context, dto domain.CreateTherapistDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Therapist, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Therapist, error)
	Update(ctx context.Context, id int64, dto domain.UpdateTherapistDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Therapist, error)
}

type AppointmentService interface {
	Create(ctx context.Context, actor domain.Actor, dto domain.CreateAppointmentDTO) (int64, error)
	GetByID(ctx context.Context, actor domain.Actor, id int64) (*domain.Appointment, error)
	List(ctx context.Context, actor domain.Actor, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
	Reschedule(ctx context.Context, actor domain.Actor, id int64, dto domain.RescheduleDTO) (*domain.Appointment, error)
	Transition(ctx context.Context, actor domain.Actor, id int64, dto domain.TransitionDTO) (*domain.Appointment, error)
	MarkPaid(ctx context.Context, actor domain.Actor, id int64, dto domain.PaymentDTO) (*domain.Appointment, error)
	Cancel(ctx context.Context, actor domain.Actor, id int64, version int64) (*domain.Appointment, error)
	Delete(ctx context.Context, id int64) error
}

type SeriesService interface {
	Create(ctx context.Context, dto domain.CreateRecurrenceTemplateDTO) (*domain.RecurrenceTemplate, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error)
	List(ctx context.Context, filter domain.RecurrenceTemplateFilter) ([]domain.RecurrenceTemplate, error)
	Materialize(ctx context.Context, horizonWeeks int) (int64, error)
	DeleteOccurrence(ctx context.Context, appointmentID int64) error
	DeleteFromDate(ctx context.Context, seriesID uuid.UUID, from time.Time) (int64, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type CalendarService interface {
	View(ctx context.Context, actor domain.Actor, req ViewRequest) (*ViewResponse, error)
	Navigate(ctx context.Context, actor domain.Actor, req NavigateRequest) (*ViewResponse, error)
	ExportICS(ctx context.Context, actor domain.Actor, req ViewRequest) (string, error)
	ArchiveExport(ctx context.Context, actor domain.Actor, req ViewRequest) (string, error)
}
