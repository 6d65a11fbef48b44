package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fisiocal/internal/domain"
)

// In-memory fakes for the repository interfaces.

type fakeAppointmentRepo struct {
	appointments map[int64]*domain.Appointment
	exclusions   map[string]bool
	nextID       int64
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[int64]*domain.Appointment),
		exclusions:   make(map[string]bool),
	}
}

func (f *fakeAppointmentRepo) seed(appt domain.Appointment) *domain.Appointment {
	if appt.ID == 0 {
		f.nextID++
		appt.ID = f.nextID
	} else if appt.ID > f.nextID {
		f.nextID = appt.ID
	}
	if appt.Version == 0 {
		appt.Version = 1
	}
	f.appointments[appt.ID] = &appt
	return f.appointments[appt.ID]
}

func exclusionKey(seriesID uuid.UUID, start time.Time) string {
	return fmt.Sprintf("%s|%d", seriesID, start.Unix())
}

func (f *fakeAppointmentRepo) Create(_ context.Context, dto domain.CreateAppointmentDTO) (int64, error) {
	created := f.seed(domain.Appointment{
		PatientID:     dto.PatientID,
		TherapistID:   dto.TherapistID,
		StartTime:     dto.StartTime,
		EndTime:       dto.EndTime,
		Status:        domain.AppointmentStatusScheduled,
		PaymentStatus: domain.PaymentStatusPending,
		Value:         dto.Value,
		Type:          dto.Type,
		Notes:         dto.Notes,
		SeriesID:      dto.SeriesID,
	})
	return created.ID, nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := f.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *appt
	return &copied, nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	out := make([]domain.Appointment, 0)
	for _, appt := range f.appointments {
		if matchesFilter(*appt, filter) {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	list, _ := f.List(ctx, filter)
	return len(list), nil
}

func (f *fakeAppointmentRepo) ListRange(_ context.Context, start, end time.Time, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	out := make([]domain.Appointment, 0)
	for _, appt := range f.appointments {
		if appt.StartTime.After(end) || appt.EndTime.Before(start) {
			continue
		}
		if matchesFilter(*appt, filter) {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) CountOverlapping(_ context.Context, therapistID int64, start, end time.Time, excludeID int64) (int, error) {
	count := 0
	for _, appt := range f.appointments {
		if appt.ID == excludeID || appt.TherapistID != therapistID {
			continue
		}
		if appt.Status == domain.AppointmentStatusCanceled || appt.Status == domain.AppointmentStatusNoShow {
			continue
		}
		if appt.StartTime.Before(end) && appt.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAppointmentRepo) UpdateTimes(_ context.Context, id int64, start, end time.Time, therapistID, version int64) error {
	appt, ok := f.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if appt.Version != version {
		return domain.ErrConflict
	}
	appt.StartTime, appt.EndTime, appt.TherapistID = start, end, therapistID
	appt.Version++
	return nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus, version int64) error {
	appt, ok := f.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if appt.Version != version {
		return domain.ErrConflict
	}
	appt.Status = status
	appt.Version++
	return nil
}

func (f *fakeAppointmentRepo) UpdatePayment(_ context.Context, id int64, payment domain.PaymentStatus, version int64) error {
	appt, ok := f.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if appt.Version != version {
		return domain.ErrConflict
	}
	appt.PaymentStatus = payment
	appt.Version++
	return nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.appointments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.appointments, id)
	return nil
}

func (f *fakeAppointmentRepo) InsertOccurrences(_ context.Context, occurrences []domain.Appointment) (int64, error) {
	var inserted int64
	for _, occ := range occurrences {
		if occ.SeriesID != nil {
			if f.exclusions[exclusionKey(*occ.SeriesID, occ.StartTime)] {
				continue
			}
			if f.hasOccurrence(*occ.SeriesID, occ.StartTime) {
				continue
			}
		}
		f.seed(occ)
		inserted++
	}
	return inserted, nil
}

func (f *fakeAppointmentRepo) DeleteOccurrence(_ context.Context, id int64) error {
	appt, ok := f.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if appt.SeriesID != nil {
		f.exclusions[exclusionKey(*appt.SeriesID, appt.StartTime)] = true
	}
	delete(f.appointments, id)
	return nil
}

func (f *fakeAppointmentRepo) DeleteSeriesFrom(_ context.Context, seriesID uuid.UUID, from time.Time) (int64, error) {
	var removed int64
	for id, appt := range f.appointments {
		if appt.SeriesID != nil && *appt.SeriesID == seriesID && !appt.StartTime.Before(from) {
			delete(f.appointments, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeAppointmentRepo) hasOccurrence(seriesID uuid.UUID, start time.Time) bool {
	for _, appt := range f.appointments {
		if appt.SeriesID != nil && *appt.SeriesID == seriesID && appt.StartTime.Equal(start) {
			return true
		}
	}
	return false
}

func matchesFilter(appt domain.Appointment, filter domain.AppointmentFilter) bool {
	if filter.PatientID != nil && appt.PatientID != *filter.PatientID {
		return false
	}
	if filter.TherapistID != nil && appt.TherapistID != *filter.TherapistID {
		return false
	}
	if filter.SeriesID != nil && (appt.SeriesID == nil || *appt.SeriesID != *filter.SeriesID) {
		return false
	}
	if filter.Status != nil && appt.Status != *filter.Status {
		return false
	}
	return true
}

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*domain.RecurrenceTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[uuid.UUID]*domain.RecurrenceTemplate)}
}

func (f *fakeTemplateRepo) Create(_ context.Context, tpl domain.RecurrenceTemplate) error {
	copied := tpl
	f.templates[tpl.ID] = &copied
	return nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *tpl
	return &copied, nil
}

func (f *fakeTemplateRepo) List(_ context.Context, filter domain.RecurrenceTemplateFilter) ([]domain.RecurrenceTemplate, error) {
	out := make([]domain.RecurrenceTemplate, 0)
	for _, tpl := range f.templates {
		if filter.PatientID != nil && tpl.PatientID != *filter.PatientID {
			continue
		}
		if filter.TherapistID != nil && tpl.TherapistID != *filter.TherapistID {
			continue
		}
		if filter.ActiveOnly && !tpl.IsActive {
			continue
		}
		out = append(out, *tpl)
	}
	return out, nil
}

func (f *fakeTemplateRepo) ListActive(ctx context.Context) ([]domain.RecurrenceTemplate, error) {
	return f.List(ctx, domain.RecurrenceTemplateFilter{ActiveOnly: true})
}

func (f *fakeTemplateRepo) SetUntil(_ context.Context, id uuid.UUID, until time.Time) error {
	tpl, ok := f.templates[id]
	if !ok {
		return domain.ErrNotFound
	}
	tpl.Until = &until
	return nil
}

func (f *fakeTemplateRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	tpl, ok := f.templates[id]
	if !ok {
		return domain.ErrNotFound
	}
	tpl.IsActive = false
	return nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.templates[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.templates, id)
	return nil
}

type fakePatientRepo struct {
	patients map[int64]*domain.Patient
}

func newFakePatientRepo(ids ...int64) *fakePatientRepo {
	f := &fakePatientRepo{patients: make(map[int64]*domain.Patient)}
	for _, id := range ids {
		f.patients[id] = &domain.Patient{ID: id, UserID: id + 100}
	}
	return f
}

func (f *fakePatientRepo) Create(_ context.Context, dto domain.CreatePatientDTO) (int64, error) {
	id := int64(len(f.patients) + 1)
	f.patients[id] = &domain.Patient{ID: id, UserID: dto.UserID}
	return id, nil
}

func (f *fakePatientRepo) GetByID(_ context.Context, id int64) (*domain.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePatientRepo) GetByUserID(_ context.Context, userID int64) (*domain.Patient, error) {
	for _, p := range f.patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePatientRepo) Update(_ context.Context, id int64, _ domain.UpdatePatientDTO) error {
	if _, ok := f.patients[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.patients[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) List(_ context.Context, _, _ int) ([]domain.Patient, error) {
	out := make([]domain.Patient, 0, len(f.patients))
	for _, p := range f.patients {
		out = append(out, *p)
	}
	return out, nil
}

type fakeTherapistRepo struct {
	therapists map[int64]*domain.Therapist
}

func newFakeTherapistRepo(ids ...int64) *fakeTherapistRepo {
	f := &fakeTherapistRepo{therapists: make(map[int64]*domain.Therapist)}
	for _, id := range ids {
		f.therapists[id] = &domain.Therapist{ID: id, UserID: id + 200, Kind: domain.TherapistKindFisioterapeuta}
	}
	return f
}

func (f *fakeTherapistRepo) Create(_ context.Context, dto domain.CreateTherapistDTO) (int64, error) {
	id := int64(len(f.therapists) + 1)
	f.therapists[id] = &domain.Therapist{ID: id, UserID: dto.UserID, Kind: dto.Kind}
	return id, nil
}

func (f *fakeTherapistRepo) GetByID(_ context.Context, id int64) (*domain.Therapist, error) {
	t, ok := f.therapists[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeTherapistRepo) GetByUserID(_ context.Context, userID int64) (*domain.Therapist, error) {
	for _, t := range f.therapists {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTherapistRepo) Update(_ context.Context, id int64, _ domain.UpdateTherapistDTO) error {
	if _, ok := f.therapists[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (f *fakeTherapistRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.therapists[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.therapists, id)
	return nil
}

func (f *fakeTherapistRepo) List(_ context.Context, _, _ int) ([]domain.Therapist, error) {
	out := make([]domain.Therapist, 0, len(f.therapists))
	for _, t := range f.therapists {
		out = append(out, *t)
	}
	return out, nil
}

type recordNotifier struct {
	events []domain.AppointmentEvent
}

func (r *recordNotifier) Broadcast(event domain.AppointmentEvent) {
	r.events = append(r.events, event)
}

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, dto domain.CreateUserDTO) (int64, error) {
	id := f.nextID
	f.nextID++
	f.users[id] = &domain.User{
		ID:           id,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		Phone:        dto.Phone,
		PasswordHash: dto.Password,
		Role:         dto.Role,
		IsActive:     true,
	}
	return id, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, id int64, _ domain.UpdateUserDTO) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeAuthRepo struct {
	sessions map[string]*domain.Session
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeAuthRepo) CreateSession(_ context.Context, session domain.Session) error {
	f.sessions[session.ID] = &session
	return nil
}

func (f *fakeAuthRepo) GetSessionByRefreshToken(_ context.Context, refreshToken string) (*domain.Session, error) {
	for _, s := range f.sessions {
		if s.RefreshToken == refreshToken {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAuthRepo) DeleteSession(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeAuthRepo) DeleteSessionsByUserID(_ context.Context, userID int64) error {
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeAuthRepo) DeleteExpiredSessions(_ context.Context) (int64, error) {
	var removed int64
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(time.Now()) {
			delete(f.sessions, id)
			removed++
		}
	}
	return removed, nil
}
