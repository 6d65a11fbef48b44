package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fisiocal/internal/calendar"
	"fisiocal/internal/domain"
)

type fakeFileStorage struct {
	objects map[string][]byte
}

func (f *fakeFileStorage) UploadFile(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[objectName] = data
	return "https://files.test/" + objectName, nil
}

func (f *fakeFileStorage) DeleteFile(context.Context, string) error { return nil }

func (f *fakeFileStorage) GetFile(context.Context, string) ([]byte, error) { return nil, nil }

func (f *fakeFileStorage) GetPresignedURL(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

func newCalendarService(repo *fakeAppointmentRepo, files *fakeFileStorage) *CalendarServiceImpl {
	return NewCalendarService(
		repo,
		newFakeTherapistRepo(1, 2),
		calendar.TimeGrid{StartHour: 6, PixelsPerMinute: 2},
		time.UTC,
		files,
		zap.NewNop(),
	)
}

func seedWeek(repo *fakeAppointmentRepo) {
	repo.seed(domain.Appointment{
		PatientID: 1, TherapistID: 1,
		StartTime: time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		Status:    domain.AppointmentStatusScheduled,
	})
	repo.seed(domain.Appointment{
		PatientID: 2, TherapistID: 2,
		StartTime: time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 3, 13, 11, 0, 0, 0, time.UTC),
		Status:    domain.AppointmentStatusScheduled,
	})
}

func TestViewScopesPatientToOwnAppointments(t *testing.T) {
	repo := newFakeAppointmentRepo()
	seedWeek(repo)
	svc := newCalendarService(repo, &fakeFileStorage{})

	patientID := int64(1)
	actor := domain.Actor{UserID: 101, Role: domain.UserRolePatient, PatientID: &patientID}

	view, err := svc.View(context.Background(), actor, ViewRequest{Date: "2024-03-14", View: calendar.ViewWeekly})
	require.NoError(t, err)
	require.Len(t, view.Days, 7)

	var total int
	for _, day := range view.Days {
		for _, entry := range day.Entries {
			require.Equal(t, patientID, entry.Appointment.PatientID)
			total++
		}
	}
	require.Equal(t, 1, total)
}

func TestViewEducadorSeesOwnColumn(t *testing.T) {
	repo := newFakeAppointmentRepo()
	seedWeek(repo)
	svc := newCalendarService(repo, &fakeFileStorage{})

	therapistID := int64(2)
	actor := domain.Actor{UserID: 202, Role: domain.UserRoleEducadorFisico, TherapistID: &therapistID}

	view, err := svc.View(context.Background(), actor, ViewRequest{Date: "2024-03-14", View: calendar.ViewWeekly})
	require.NoError(t, err)

	var total int
	for _, day := range view.Days {
		for _, entry := range day.Entries {
			require.Equal(t, therapistID, entry.Appointment.TherapistID)
			total++
		}
	}
	require.Equal(t, 1, total)
}

func TestNavigateNextWeek(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newCalendarService(repo, &fakeFileStorage{})

	view, err := svc.Navigate(context.Background(), adminActor(), NavigateRequest{
		Date:   "2024-03-14",
		View:   calendar.ViewWeekly,
		Action: "next",
	})
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), view.Range.Start)
	require.Equal(t, time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC), view.Range.End)
	require.Equal(t, calendar.ViewWeekly, view.State.CurrentView)
}

func TestNavigateSelectDateDrillsDown(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newCalendarService(repo, &fakeFileStorage{})

	view, err := svc.Navigate(context.Background(), adminActor(), NavigateRequest{
		Date:       "2024-03-14",
		View:       calendar.ViewMonthly,
		Action:     "select_date",
		TargetDate: "2024-03-22",
	})
	require.NoError(t, err)

	require.Equal(t, calendar.ViewDaily, view.State.CurrentView)
	require.Equal(t, time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC), view.Range.Start)
	require.Equal(t, view.Range.Start, view.Range.End)
}

func TestNavigateTodayUsesClinicZone(t *testing.T) {
	clinic := time.FixedZone("clinic", -3*60*60)
	svc := NewCalendarService(
		newFakeAppointmentRepo(),
		newFakeTherapistRepo(1, 2),
		calendar.TimeGrid{StartHour: 6, PixelsPerMinute: 2},
		clinic,
		&fakeFileStorage{},
		zap.NewNop(),
	)

	view, err := svc.Navigate(context.Background(), adminActor(), NavigateRequest{
		Date:   "2020-01-01",
		View:   calendar.ViewDaily,
		Action: "today",
	})
	require.NoError(t, err)

	// "today" must be the clinic's day even when the host clock sits
	// in another zone.
	want := calendar.StartOfDay(time.Now().In(clinic))
	require.True(t, view.State.CurrentDate.Equal(want),
		"today = %v, want %v", view.State.CurrentDate, want)
	require.Equal(t, clinic, view.State.CurrentDate.Location())
}

func TestNavigateRejectsUnknownDate(t *testing.T) {
	svc := newCalendarService(newFakeAppointmentRepo(), &fakeFileStorage{})

	_, err := svc.Navigate(context.Background(), adminActor(), NavigateRequest{
		Date:   "14/03/2024",
		View:   calendar.ViewWeekly,
		Action: "next",
	})
	require.Error(t, err)
}

func TestExportICS(t *testing.T) {
	repo := newFakeAppointmentRepo()
	seedWeek(repo)
	svc := newCalendarService(repo, &fakeFileStorage{})

	icsText, err := svc.ExportICS(context.Background(), adminActor(), ViewRequest{
		Date: "2024-03-14",
		View: calendar.ViewWeekly,
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(icsText, "BEGIN:VCALENDAR"))
	require.Equal(t, 2, strings.Count(icsText, "BEGIN:VEVENT"))
}

func TestArchiveExportUploadsICS(t *testing.T) {
	repo := newFakeAppointmentRepo()
	seedWeek(repo)
	files := &fakeFileStorage{}
	svc := newCalendarService(repo, files)

	therapistID := int64(1)
	url, err := svc.ArchiveExport(context.Background(), adminActor(), ViewRequest{
		Date:        "2024-03-14",
		View:        calendar.ViewWeekly,
		TherapistID: &therapistID,
	})
	require.NoError(t, err)
	require.Contains(t, url, "exports/therapist-1/")
	require.Len(t, files.objects, 1)
}
