package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"fisiocal/internal/calendar"
	"fisiocal/internal/domain"
	"fisiocal/internal/repository"
	"fisiocal/pkg/metrics"
)

const dayLayout = "2006-01-02"

var ErrForbidden = errors.New("operation not allowed")

type AppointmentServiceImpl struct {
	repo          repository.AppointmentRepository
	patientRepo   repository.PatientRepository
	therapistRepo repository.TherapistRepository
	grid          calendar.TimeGrid
	loc           *time.Location
	metrics       *metrics.SchedulingMetrics
	notifier      Notifier
	logger        *zap.Logger
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	therapistRepo repository.TherapistRepository,
	grid calendar.TimeGrid,
	loc *time.Location,
	m *metrics.SchedulingMetrics,
	notifier Notifier,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		repo:          repo,
		patientRepo:   patientRepo,
		therapistRepo: therapistRepo,
		grid:          grid,
		loc:           loc,
		metrics:       m,
		notifier:      notifier,
		logger:        logger,
	}
}

func (s *AppointmentServiceImpl) Create(ctx context.Context, actor domain.Actor, dto domain.CreateAppointmentDTO) (int64, error) {
	if actor.Role == domain.UserRolePatient {
		if actor.PatientID == nil || *actor.PatientID != dto.PatientID {
			return 0, ErrForbidden
		}
	}

	if !dto.EndTime.After(dto.StartTime) {
		return 0, errors.New("appointment must end after it starts")
	}

	if _, err := s.patientRepo.GetByID(ctx, dto.PatientID); err != nil {
		return 0, errors.New("patient not found")
	}

	if _, err := s.therapistRepo.GetByID(ctx, dto.TherapistID); err != nil {
		return 0, errors.New("therapist not found")
	}

	overlapping, err := s.repo.CountOverlapping(ctx, dto.TherapistID, dto.StartTime, dto.EndTime, 0)
	if err != nil {
		s.logger.Error("failed to check slot availability", zap.Error(err))
		return 0, errors.New("failed to book appointment")
	}

	if overlapping > 0 {
		s.metrics.ObserveBooking(string(dto.Type), "conflict")
		return 0, errors.New("time slot is already taken")
	}

	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("failed to create appointment", zap.Error(err))
		s.metrics.ObserveBooking(string(dto.Type), "error")
		return 0, errors.New("failed to book appointment")
	}

	s.metrics.ObserveBooking(string(dto.Type), "created")
	s.broadcast(ctx, domain.EventAppointmentCreated, id)

	return id, nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, actor domain.Actor, id int64) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canAccess(actor, appointment) {
		return nil, ErrForbidden
	}

	return appointment, nil
}

func (s *AppointmentServiceImpl) List(ctx context.Context, actor domain.Actor, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	// Patients only ever see their own bookings regardless of what the
	// filter asks for.
	if actor.Role == domain.UserRolePatient {
		if actor.PatientID == nil {
			return []domain.Appointment{}, 0, nil
		}
		filter.PatientID = actor.PatientID
	}

	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list appointments", zap.Error(err))
		return nil, 0, errors.New("failed to list appointments")
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("failed to count appointments", zap.Error(err))
		return nil, 0, errors.New("failed to list appointments")
	}

	return appointments, total, nil
}

func (s *AppointmentServiceImpl) Reschedule(ctx context.Context, actor domain.Actor, id int64, dto domain.RescheduleDTO) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canModify(actor, appointment) {
		return nil, ErrForbidden
	}

	// A completed, canceled or missed session has no future slot to
	// move to; correct its status first.
	if calendar.IsTerminal(appointment.Status) {
		s.metrics.ObserveReschedule("rejected")
		return nil, errors.New("appointment can no longer be rescheduled")
	}

	day, err := time.ParseInLocation(dayLayout, dto.Day, s.loc)
	if err != nil {
		return nil, errors.New("malformed day, expected YYYY-MM-DD")
	}

	targetTherapist := dto.TherapistID
	if targetTherapist == 0 {
		targetTherapist = appointment.TherapistID
	}

	moved, err := s.grid.Reschedule(*appointment, calendar.DropTarget{
		Day:         day,
		OffsetPx:    dto.OffsetPx,
		TherapistID: targetTherapist,
	})
	if err != nil {
		s.metrics.ObserveReschedule("rejected")
		return nil, err
	}

	overlapping, err := s.repo.CountOverlapping(ctx, moved.TherapistID, moved.StartTime, moved.EndTime, id)
	if err != nil {
		s.logger.Error("failed to check slot availability", zap.Error(err))
		return nil, errors.New("failed to reschedule appointment")
	}

	if overlapping > 0 {
		s.metrics.ObserveReschedule("conflict")
		return nil, errors.New("time slot is already taken")
	}

	err = s.repo.UpdateTimes(ctx, id, moved.StartTime, moved.EndTime, moved.TherapistID, dto.Version)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			s.metrics.ObserveReschedule("stale")
			return nil, err
		}
		s.logger.Error("failed to reschedule appointment", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("failed to reschedule appointment")
	}

	s.metrics.ObserveReschedule("ok")
	return s.reload(ctx, id, domain.EventAppointmentRescheduled)
}

func (s *AppointmentServiceImpl) Transition(ctx context.Context, actor domain.Actor, id int64, dto domain.TransitionDTO) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canModify(actor, appointment) {
		return nil, ErrForbidden
	}

	next := calendar.Transition(*appointment, dto.Status)

	err = s.repo.UpdateStatus(ctx, id, next.Status, dto.Version)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update appointment status", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("failed to update appointment status")
	}

	s.metrics.ObserveTransition(string(next.Status))
	return s.reload(ctx, id, domain.EventAppointmentStatus)
}

func (s *AppointmentServiceImpl) MarkPaid(ctx context.Context, actor domain.Actor, id int64, dto domain.PaymentDTO) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canModify(actor, appointment) {
		return nil, ErrForbidden
	}

	paid := calendar.MarkPaid(*appointment)

	err = s.repo.UpdatePayment(ctx, id, paid.PaymentStatus, dto.Version)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update payment status", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("failed to update payment status")
	}

	return s.reload(ctx, id, domain.EventAppointmentPayment)
}

func (s *AppointmentServiceImpl) Cancel(ctx context.Context, actor domain.Actor, id int64, version int64) (*domain.Appointment, error) {
	return s.Transition(ctx, actor, id, domain.TransitionDTO{
		Status:  domain.AppointmentStatusCanceled,
		Version: version,
	})
}

func (s *AppointmentServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete appointment", zap.Int64("id", id), zap.Error(err))
		return errors.New("failed to delete appointment")
	}

	s.notifier.Broadcast(domain.AppointmentEvent{
		Type:          domain.EventAppointmentDeleted,
		AppointmentID: id,
	})

	return nil
}

// canAccess mirrors the calendar visibility rules for a single record.
func (s *AppointmentServiceImpl) canAccess(actor domain.Actor, appt *domain.Appointment) bool {
	switch actor.Role {
	case domain.UserRolePatient:
		return actor.PatientID != nil && *actor.PatientID == appt.PatientID
	case domain.UserRoleEducadorFisico:
		return actor.TherapistID != nil && *actor.TherapistID == appt.TherapistID
	default:
		return true
	}
}

func (s *AppointmentServiceImpl) canModify(actor domain.Actor, appt *domain.Appointment) bool {
	if actor.Role == domain.UserRolePatient {
		return actor.PatientID != nil && *actor.PatientID == appt.PatientID
	}
	return s.canAccess(actor, appt)
}

func (s *AppointmentServiceImpl) reload(ctx context.Context, id int64, event domain.EventType) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to reload appointment after update", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("failed to load appointment")
	}

	s.notifier.Broadcast(domain.AppointmentEvent{
		Type:          event,
		AppointmentID: appointment.ID,
		SeriesID:      appointment.SeriesID,
		Appointment:   appointment,
	})

	return appointment, nil
}

func (s *AppointmentServiceImpl) broadcast(ctx context.Context, event domain.EventType, id int64) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("failed to load appointment for broadcast", zap.Int64("id", id), zap.Error(err))
		return
	}

	s.notifier.Broadcast(domain.AppointmentEvent{
		Type:          event,
		AppointmentID: appointment.ID,
		SeriesID:      appointment.SeriesID,
		Appointment:   appointment,
	})
}
