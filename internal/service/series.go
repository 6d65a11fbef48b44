package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fisiocal/internal/calendar"
	"fisiocal/internal/domain"
	"fisiocal/internal/repository"
)

type SeriesServiceImpl struct {
	templates    repository.TemplateRepository
	appointments repository.AppointmentRepository
	loc          *time.Location
	horizonWeeks int
	notifier     Notifier
	logger       *zap.Logger
}

func NewSeriesService(
	templates repository.TemplateRepository,
	appointments repository.AppointmentRepository,
	loc *time.Location,
	horizonWeeks int,
	notifier Notifier,
	logger *zap.Logger,
) *SeriesServiceImpl {
	return &SeriesServiceImpl{
		templates:    templates,
		appointments: appointments,
		loc:          loc,
		horizonWeeks: horizonWeeks,
		notifier:     notifier,
		logger:       logger,
	}
}

// Create stores the recurrence template and materializes its
// occurrences up to the configured horizon. It returns the template
// and the number of appointments created.
func (s *SeriesServiceImpl) Create(ctx context.Context, dto domain.CreateRecurrenceTemplateDTO) (*domain.RecurrenceTemplate, int64, error) {
	tpl, err := s.templateFromDTO(dto)
	if err != nil {
		return nil, 0, err
	}

	if err := s.templates.Create(ctx, *tpl); err != nil {
		s.logger.Error("failed to create recurrence template", zap.Error(err))
		return nil, 0, errors.New("failed to create recurring appointment")
	}

	inserted, err := s.materializeTemplate(ctx, *tpl)
	if err != nil {
		s.logger.Error("failed to materialize new series",
			zap.String("seriesId", tpl.ID.String()), zap.Error(err))
		return tpl, 0, errors.New("series created but occurrences could not be generated")
	}

	return tpl, inserted, nil
}

func (s *SeriesServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *SeriesServiceImpl) List(ctx context.Context, filter domain.RecurrenceTemplateFilter) ([]domain.RecurrenceTemplate, error) {
	return s.templates.List(ctx, filter)
}

// Materialize expands every active template over the given horizon and
// inserts whatever occurrences are not there yet. It is safe to run
// repeatedly.
func (s *SeriesServiceImpl) Materialize(ctx context.Context, horizonWeeks int) (int64, error) {
	if horizonWeeks <= 0 {
		horizonWeeks = s.horizonWeeks
	}

	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active templates", zap.Error(err))
		return 0, errors.New("failed to materialize series")
	}

	var total int64
	for _, tpl := range templates {
		inserted, err := s.materializeTemplateOver(ctx, tpl, horizonWeeks)
		if err != nil {
			s.logger.Error("failed to materialize series",
				zap.String("seriesId", tpl.ID.String()), zap.Error(err))
			continue
		}
		total += inserted
	}

	return total, nil
}

// DeleteOccurrence removes a single appointment from its series. The
// template stays active; the repository records an exclusion for the
// slot so the next materialization run does not bring it back.
func (s *SeriesServiceImpl) DeleteOccurrence(ctx context.Context, appointmentID int64) error {
	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}

	if appointment.SeriesID == nil {
		return errors.New("appointment is not part of a series")
	}

	if err := s.appointments.DeleteOccurrence(ctx, appointmentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete occurrence", zap.Int64("id", appointmentID), zap.Error(err))
		return errors.New("failed to delete occurrence")
	}

	s.notifier.Broadcast(domain.AppointmentEvent{
		Type:          domain.EventAppointmentDeleted,
		AppointmentID: appointmentID,
		SeriesID:      appointment.SeriesID,
	})

	return nil
}

// DeleteFromDate ends a series at the cutoff: occurrences starting at
// or after it are removed, earlier ones stay untouched, and the
// template is capped so future materialization stops at the same
// point.
func (s *SeriesServiceImpl) DeleteFromDate(ctx context.Context, seriesID uuid.UUID, from time.Time) (int64, error) {
	tpl, err := s.templates.GetByID(ctx, seriesID)
	if err != nil {
		return 0, err
	}

	cutoff := calendar.StartOfDay(from.In(s.loc))

	removed, err := s.appointments.DeleteSeriesFrom(ctx, seriesID, cutoff)
	if err != nil {
		s.logger.Error("failed to truncate series",
			zap.String("seriesId", seriesID.String()), zap.Error(err))
		return 0, errors.New("failed to cancel series")
	}

	lastKept := cutoff.AddDate(0, 0, -1)
	if tpl.Until == nil || tpl.Until.After(lastKept) {
		if err := s.templates.SetUntil(ctx, seriesID, lastKept); err != nil {
			s.logger.Error("failed to cap series template",
				zap.String("seriesId", seriesID.String()), zap.Error(err))
			return removed, errors.New("series truncated but template could not be capped")
		}
	}

	s.notifier.Broadcast(domain.AppointmentEvent{
		Type:     domain.EventSeriesTruncated,
		SeriesID: &seriesID,
	})

	return removed, nil
}

func (s *SeriesServiceImpl) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.templates.Deactivate(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to deactivate template", zap.String("id", id.String()), zap.Error(err))
		return errors.New("failed to deactivate series")
	}
	return nil
}

func (s *SeriesServiceImpl) materializeTemplate(ctx context.Context, tpl domain.RecurrenceTemplate) (int64, error) {
	return s.materializeTemplateOver(ctx, tpl, s.horizonWeeks)
}

func (s *SeriesServiceImpl) materializeTemplateOver(ctx context.Context, tpl domain.RecurrenceTemplate, horizonWeeks int) (int64, error) {
	start := calendar.StartOfDay(time.Now().In(s.loc))
	if tpl.StartsOn.After(start) {
		start = calendar.StartOfDay(tpl.StartsOn)
	}

	window := calendar.DateRange{
		Start: start,
		End:   start.AddDate(0, 0, 7*horizonWeeks),
	}

	occurrences, err := calendar.ExpandTemplate(tpl, window)
	if err != nil {
		return 0, err
	}

	return s.appointments.InsertOccurrences(ctx, occurrences)
}

func (s *SeriesServiceImpl) templateFromDTO(dto domain.CreateRecurrenceTemplateDTO) (*domain.RecurrenceTemplate, error) {
	startsOn, err := time.ParseInLocation(dayLayout, dto.StartsOn, s.loc)
	if err != nil {
		return nil, errors.New("malformed starts_on, expected YYYY-MM-DD")
	}

	var until *time.Time
	if dto.Until != nil {
		parsed, err := time.ParseInLocation(dayLayout, *dto.Until, s.loc)
		if err != nil {
			return nil, errors.New("malformed until, expected YYYY-MM-DD")
		}
		if parsed.Before(startsOn) {
			return nil, errors.New("until must not precede starts_on")
		}
		until = &parsed
	}

	weekdays := make([]time.Weekday, 0, len(dto.Weekdays))
	for _, d := range dto.Weekdays {
		if d < 0 || d > 6 {
			return nil, errors.New("weekdays must be between 0 (Sunday) and 6 (Saturday)")
		}
		weekdays = append(weekdays, time.Weekday(d))
	}

	if dto.Frequency == domain.RecurrenceFrequencyWeekly && len(weekdays) == 0 {
		// Weekly with no explicit weekdays recurs on the start date's
		// weekday.
		weekdays = append(weekdays, startsOn.Weekday())
	}

	now := time.Now()
	return &domain.RecurrenceTemplate{
		ID:              uuid.New(),
		PatientID:       dto.PatientID,
		TherapistID:     dto.TherapistID,
		Frequency:       dto.Frequency,
		Weekdays:        weekdays,
		StartHour:       dto.StartHour,
		StartMinute:     dto.StartMinute,
		DurationMinutes: dto.DurationMinutes,
		StartsOn:        startsOn,
		Until:           until,
		Count:           dto.Count,
		Type:            dto.Type,
		Value:           dto.Value,
		Notes:           dto.Notes,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
