package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fisiocal/internal/domain"
)

const appointmentColumns = `
	a.id, a.patient_id, a.therapist_id, a.start_time, a.end_time,
	a.status, a.payment_status, a.value, a.type, a.notes, a.series_id,
	a.version, a.created_at, a.updated_at,
	pu.first_name || ' ' || pu.last_name AS patient_name,
	tu.first_name || ' ' || tu.last_name AS therapist_name
`

const appointmentJoins = `
	FROM appointments a
	JOIN patients p ON a.patient_id = p.id
	JOIN users pu ON p.user_id = pu.id
	JOIN therapists t ON a.therapist_id = t.id
	JOIN users tu ON t.user_id = tu.id
`

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

func (r *AppointmentRepo) Create(ctx context.Context, dto domain.CreateAppointmentDTO) (int64, error) {
	query := `
		INSERT INTO appointments (patient_id, therapist_id, start_time, end_time, status, payment_status, value, type, notes, series_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $11)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err := r.db.QueryRow(ctx, query,
		dto.PatientID,
		dto.TherapistID,
		dto.StartTime,
		dto.EndTime,
		domain.AppointmentStatusScheduled,
		domain.PaymentStatusPending,
		dto.Value,
		dto.Type,
		dto.Notes,
		dto.SeriesID,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create appointment: %w", err)
	}

	return id, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `SELECT` + appointmentColumns + appointmentJoins + `WHERE a.id = $1`

	appointment, err := r.scanRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointment %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	conditions, args := filterConditions(filter)

	query := `SELECT` + appointmentColumns + appointmentJoins
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.start_time"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return r.queryAppointments(ctx, query, args)
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	conditions, args := filterConditions(filter)

	query := "SELECT COUNT(*)" + appointmentJoins
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	return count, nil
}

// ListRange returns every appointment intersecting [start, end],
// ordered by start time.
func (r *AppointmentRepo) ListRange(ctx context.Context, start, end time.Time, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	conditions := []string{"a.start_time <= $1", "a.end_time >= $2"}
	args := []interface{}{end, start}
	argCount := 3

	if filter.TherapistID != nil {
		conditions = append(conditions, fmt.Sprintf("a.therapist_id = $%d", argCount))
		args = append(args, *filter.TherapistID)
		argCount++
	}

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("a.patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	query := `SELECT` + appointmentColumns + appointmentJoins +
		"WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY a.start_time"

	return r.queryAppointments(ctx, query, args)
}

func (r *AppointmentRepo) CountOverlapping(ctx context.Context, therapistID int64, start, end time.Time, excludeID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE therapist_id = $1
		AND start_time < $2
		AND end_time > $3
		AND id != $4
		AND status NOT IN ('canceled', 'no_show')
	`

	var count int
	err := r.db.QueryRow(ctx, query, therapistID, end, start, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check slot availability: %w", err)
	}

	return count, nil
}

func (r *AppointmentRepo) UpdateTimes(ctx context.Context, id int64, start, end time.Time, therapistID, version int64) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, therapist_id = $3, version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6
	`

	tag, err := r.db.Exec(ctx, query, start, end, therapistID, time.Now(), id, version)
	if err != nil {
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.versionedMiss(ctx, id)
	}

	return nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, version int64) error {
	query := `
		UPDATE appointments
		SET status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`

	tag, err := r.db.Exec(ctx, query, status, time.Now(), id, version)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.versionedMiss(ctx, id)
	}

	return nil
}

func (r *AppointmentRepo) UpdatePayment(ctx context.Context, id int64, payment domain.PaymentStatus, version int64) error {
	query := `
		UPDATE appointments
		SET payment_status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`

	tag, err := r.db.Exec(ctx, query, payment, time.Now(), id, version)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.versionedMiss(ctx, id)
	}

	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM appointments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("appointment %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// The conflict target repeats the predicate of the partial unique
// index idx_appointments_series_slot; Postgres cannot infer a partial
// index without it.
const insertOccurrenceQuery = `
	INSERT INTO appointments (patient_id, therapist_id, start_time, end_time, status, payment_status, value, type, notes, series_id, version, created_at, updated_at)
	SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $11
	WHERE NOT EXISTS (
		SELECT 1 FROM series_exclusions e
		WHERE e.series_id = $10 AND e.start_time = $3
	)
	ON CONFLICT (series_id, start_time) WHERE series_id IS NOT NULL DO NOTHING
`

// InsertOccurrences inserts generated series occurrences. A slot is
// skipped when the same (series_id, start_time) pair already exists or
// was excluded by DeleteOccurrence, which keeps materialization runs
// idempotent and deletions permanent.
func (r *AppointmentRepo) InsertOccurrences(ctx context.Context, occurrences []domain.Appointment) (int64, error) {
	if len(occurrences) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	var inserted int64
	for _, occ := range occurrences {
		tag, err := tx.Exec(ctx, insertOccurrenceQuery,
			occ.PatientID,
			occ.TherapistID,
			occ.StartTime,
			occ.EndTime,
			occ.Status,
			occ.PaymentStatus,
			occ.Value,
			occ.Type,
			occ.Notes,
			occ.SeriesID,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert occurrence: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// DeleteOccurrence removes a single series occurrence and records an
// exclusion so materialization never regenerates the slot.
func (r *AppointmentRepo) DeleteOccurrence(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	exclusion := `
		INSERT INTO series_exclusions (series_id, start_time, created_at)
		SELECT series_id, start_time, $2 FROM appointments
		WHERE id = $1 AND series_id IS NOT NULL
		ON CONFLICT (series_id, start_time) DO NOTHING
	`
	if _, err := tx.Exec(ctx, exclusion, id, time.Now()); err != nil {
		return fmt.Errorf("failed to record occurrence exclusion: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM appointments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete occurrence: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("appointment %d: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteSeriesFrom removes every occurrence of the series starting at
// or after the cutoff. Occurrences strictly before it are never
// touched: canceling the rest of a series is not retroactive.
func (r *AppointmentRepo) DeleteSeriesFrom(ctx context.Context, seriesID uuid.UUID, from time.Time) (int64, error) {
	query := `
		DELETE FROM appointments
		WHERE series_id = $1
		AND start_time >= $2
	`

	tag, err := r.db.Exec(ctx, query, seriesID, from)
	if err != nil {
		return 0, fmt.Errorf("failed to delete series occurrences: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *AppointmentRepo) versionedMiss(ctx context.Context, id int64) error {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to inspect appointment %d: %w", id, err)
	}

	if !exists {
		return fmt.Errorf("appointment %d: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("appointment %d: %w", id, domain.ErrConflict)
}

func (r *AppointmentRepo) queryAppointments(ctx context.Context, query string, args []interface{}) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		appointment, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment row: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointment rows: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) scanRow(row pgx.Row) (*domain.Appointment, error) {
	var appointment domain.Appointment
	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.TherapistID,
		&appointment.StartTime,
		&appointment.EndTime,
		&appointment.Status,
		&appointment.PaymentStatus,
		&appointment.Value,
		&appointment.Type,
		&appointment.Notes,
		&appointment.SeriesID,
		&appointment.Version,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
		&appointment.PatientName,
		&appointment.TherapistName,
	)
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func filterConditions(filter domain.AppointmentFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("a.patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.TherapistID != nil {
		conditions = append(conditions, fmt.Sprintf("a.therapist_id = $%d", argCount))
		args = append(args, *filter.TherapistID)
		argCount++
	}

	if filter.SeriesID != nil {
		conditions = append(conditions, fmt.Sprintf("a.series_id = $%d", argCount))
		args = append(args, *filter.SeriesID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.start_time >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.start_time <= $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	return conditions, args
}
