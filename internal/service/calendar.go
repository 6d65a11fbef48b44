package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"fisiocal/internal/calendar"
	"fisiocal/internal/domain"
	"fisiocal/internal/export"
	"fisiocal/internal/repository"
	"fisiocal/internal/storage"
)

type ViewRequest struct {
	Date        string            `json:"date" form:"date"`
	View        calendar.ViewMode `json:"view" form:"view"`
	TherapistID *int64            `json:"therapist_id" form:"therapist_id"`
}

// NavigateRequest carries the client's current view state plus the
// action to apply to it. The server never stores view state between
// requests; each call rebuilds it from the payload.
type NavigateRequest struct {
	Date        string            `json:"date" binding:"required"`
	View        calendar.ViewMode `json:"view" binding:"required,oneof=daily weekly monthly list"`
	Action      string            `json:"action" binding:"required,oneof=next prev today change_view select_date"`
	TargetView  calendar.ViewMode `json:"target_view" binding:"omitempty,oneof=daily weekly monthly list"`
	TargetDate  string            `json:"target_date"`
	TherapistID *int64            `json:"therapist_id"`
}

type ViewResponse struct {
	State calendar.ViewState `json:"state"`
	Range calendar.DateRange `json:"range"`
	Days  []calendar.Day     `json:"days"`
}

type CalendarServiceImpl struct {
	appointments repository.AppointmentRepository
	therapists   repository.TherapistRepository
	grid         calendar.TimeGrid
	loc          *time.Location
	files        storage.FileStorage
	logger       *zap.Logger
}

func NewCalendarService(
	appointments repository.AppointmentRepository,
	therapists repository.TherapistRepository,
	grid calendar.TimeGrid,
	loc *time.Location,
	files storage.FileStorage,
	logger *zap.Logger,
) *CalendarServiceImpl {
	return &CalendarServiceImpl{
		appointments: appointments,
		therapists:   therapists,
		grid:         grid,
		loc:          loc,
		files:        files,
		logger:       logger,
	}
}

func (s *CalendarServiceImpl) View(ctx context.Context, actor domain.Actor, req ViewRequest) (*ViewResponse, error) {
	date, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}

	view := req.View
	if view == "" {
		view = calendar.ViewWeekly
	}

	ctl := calendar.NewController(date, view).WithClock(s.clinicNow)
	return s.buildView(ctx, actor, ctl, req.TherapistID)
}

// Navigate rebuilds the client's navigation state, applies one action
// to it and returns the resulting view with its data.
func (s *CalendarServiceImpl) Navigate(ctx context.Context, actor domain.Actor, req NavigateRequest) (*ViewResponse, error) {
	date, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}

	ctl := calendar.NewController(date, req.View).WithClock(s.clinicNow)

	switch req.Action {
	case "next":
		ctl.Navigate(1)
	case "prev":
		ctl.Navigate(-1)
	case "today":
		ctl.Today()
	case "change_view":
		if req.TargetView == "" {
			return nil, errors.New("target_view is required for change_view")
		}
		ctl.ChangeView(req.TargetView)
	case "select_date":
		target, err := s.resolveDate(req.TargetDate)
		if err != nil {
			return nil, err
		}
		ctl.SelectDate(target)
	default:
		return nil, errors.New("unknown navigation action")
	}

	return s.buildView(ctx, actor, ctl, req.TherapistID)
}

func (s *CalendarServiceImpl) ExportICS(ctx context.Context, actor domain.Actor, req ViewRequest) (string, error) {
	appointments, _, err := s.fetchVisible(ctx, actor, req)
	if err != nil {
		return "", err
	}

	return export.BuildCalendar(s.exportName(ctx, req.TherapistID), appointments), nil
}

// ArchiveExport renders the requested window as ICS and stores it in
// object storage, returning the file URL.
func (s *CalendarServiceImpl) ArchiveExport(ctx context.Context, actor domain.Actor, req ViewRequest) (string, error) {
	icsText, err := s.ExportICS(ctx, actor, req)
	if err != nil {
		return "", err
	}

	var therapistID int64
	if req.TherapistID != nil {
		therapistID = *req.TherapistID
	} else if actor.TherapistID != nil {
		therapistID = *actor.TherapistID
	}

	objectName := export.ArchiveObjectName(therapistID, s.clinicNow())
	url, err := s.files.UploadFile(ctx, objectName, []byte(icsText), "text/calendar")
	if err != nil {
		s.logger.Error("failed to archive calendar export", zap.Error(err))
		return "", errors.New("failed to archive calendar export")
	}

	return url, nil
}

func (s *CalendarServiceImpl) buildView(ctx context.Context, actor domain.Actor, ctl *calendar.Controller, therapistID *int64) (*ViewResponse, error) {
	r := ctl.Range()

	appointments, err := s.fetchRange(ctx, actor, r, therapistID)
	if err != nil {
		return nil, err
	}

	return &ViewResponse{
		State: ctl.State(),
		Range: r,
		Days:  s.grid.Layout(r, appointments),
	}, nil
}

func (s *CalendarServiceImpl) fetchVisible(ctx context.Context, actor domain.Actor, req ViewRequest) ([]domain.Appointment, calendar.DateRange, error) {
	date, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, calendar.DateRange{}, err
	}

	view := req.View
	if view == "" {
		view = calendar.ViewWeekly
	}

	r := calendar.ViewRange(date, view)
	appointments, err := s.fetchRange(ctx, actor, r, req.TherapistID)
	if err != nil {
		return nil, calendar.DateRange{}, err
	}

	return appointments, r, nil
}

func (s *CalendarServiceImpl) fetchRange(ctx context.Context, actor domain.Actor, r calendar.DateRange, therapistID *int64) ([]domain.Appointment, error) {
	filter := domain.AppointmentFilter{TherapistID: therapistID}

	appointments, err := s.appointments.ListRange(ctx, r.Start, calendar.EndOfDay(r.End), filter)
	if err != nil {
		s.logger.Error("failed to load calendar range", zap.Error(err))
		return nil, errors.New("failed to load calendar")
	}

	return calendar.Visible(appointments, actor), nil
}

// clinicNow is the current instant on the clinic's wall clock. Every
// "today" and default date resolves through it so the host's zone
// never leaks into date arithmetic.
func (s *CalendarServiceImpl) clinicNow() time.Time {
	return time.Now().In(s.loc)
}

func (s *CalendarServiceImpl) resolveDate(raw string) (time.Time, error) {
	if raw == "" {
		return calendar.StartOfDay(s.clinicNow()), nil
	}

	date, err := time.ParseInLocation(dayLayout, raw, s.loc)
	if err != nil {
		return time.Time{}, errors.New("malformed date, expected YYYY-MM-DD")
	}
	return date, nil
}

func (s *CalendarServiceImpl) exportName(ctx context.Context, therapistID *int64) string {
	if therapistID == nil {
		return "Agenda da clínica"
	}

	therapist, err := s.therapists.GetByID(ctx, *therapistID)
	if err != nil {
		return "Agenda da clínica"
	}

	return "Agenda - " + therapist.FirstName + " " + therapist.LastName
}
