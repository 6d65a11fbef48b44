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

const templateColumns = `
	id, patient_id, therapist_id, frequency, weekdays, start_hour, start_minute,
	duration_minutes, starts_on, until, occurrence_count, type, value, notes,
	is_active, created_at, updated_at
`

type TemplateRepo struct {
	db *pgxpool.Pool
}

func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{
		db: db,
	}
}

func (r *TemplateRepo) Create(ctx context.Context, tpl domain.RecurrenceTemplate) error {
	query := `
		INSERT INTO recurrence_templates (id, patient_id, therapist_id, frequency, weekdays, start_hour, start_minute, duration_minutes, starts_on, until, occurrence_count, type, value, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
	`

	_, err := r.db.Exec(ctx, query,
		tpl.ID,
		tpl.PatientID,
		tpl.TherapistID,
		tpl.Frequency,
		weekdaysToInts(tpl.Weekdays),
		tpl.StartHour,
		tpl.StartMinute,
		tpl.DurationMinutes,
		tpl.StartsOn,
		tpl.Until,
		tpl.Count,
		tpl.Type,
		tpl.Value,
		tpl.Notes,
		tpl.IsActive,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create recurrence template: %w", err)
	}

	return nil
}

func (r *TemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error) {
	query := `SELECT` + templateColumns + `FROM recurrence_templates WHERE id = $1`

	tpl, err := r.scanRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recurrence template %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recurrence template: %w", err)
	}

	return tpl, nil
}

func (r *TemplateRepo) List(ctx context.Context, filter domain.RecurrenceTemplateFilter) ([]domain.RecurrenceTemplate, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.TherapistID != nil {
		conditions = append(conditions, fmt.Sprintf("therapist_id = $%d", argCount))
		args = append(args, *filter.TherapistID)
		argCount++
	}

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	query := `SELECT` + templateColumns + `FROM recurrence_templates`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return r.queryTemplates(ctx, query, args)
}

func (r *TemplateRepo) ListActive(ctx context.Context) ([]domain.RecurrenceTemplate, error) {
	query := `SELECT` + templateColumns + `FROM recurrence_templates WHERE is_active = TRUE ORDER BY created_at`
	return r.queryTemplates(ctx, query, nil)
}

// SetUntil caps the template at the given moment. Materialization past
// the cap produces nothing, which is how series cancellation stays
// effective without deactivating the whole template.
func (r *TemplateRepo) SetUntil(ctx context.Context, id uuid.UUID, until time.Time) error {
	query := `UPDATE recurrence_templates SET until = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, until, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to cap recurrence template: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recurrence template %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *TemplateRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE recurrence_templates SET is_active = FALSE, updated_at = $1 WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate recurrence template: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recurrence template %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *TemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM recurrence_templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete recurrence template: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recurrence template %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *TemplateRepo) queryTemplates(ctx context.Context, query string, args []interface{}) ([]domain.RecurrenceTemplate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurrence templates: %w", err)
	}
	defer rows.Close()

	templates := make([]domain.RecurrenceTemplate, 0)
	for rows.Next() {
		tpl, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurrence template row: %w", err)
		}
		templates = append(templates, *tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurrence template rows: %w", err)
	}

	return templates, nil
}

func (r *TemplateRepo) scanRow(row pgx.Row) (*domain.RecurrenceTemplate, error) {
	var tpl domain.RecurrenceTemplate
	var weekdays []int32

	err := row.Scan(
		&tpl.ID,
		&tpl.PatientID,
		&tpl.TherapistID,
		&tpl.Frequency,
		&weekdays,
		&tpl.StartHour,
		&tpl.StartMinute,
		&tpl.DurationMinutes,
		&tpl.StartsOn,
		&tpl.Until,
		&tpl.Count,
		&tpl.Type,
		&tpl.Value,
		&tpl.Notes,
		&tpl.IsActive,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tpl.Weekdays = intsToWeekdays(weekdays)
	return &tpl, nil
}

func weekdaysToInts(days []time.Weekday) []int32 {
	out := make([]int32, 0, len(days))
	for _, d := range days {
		out = append(out, int32(d))
	}
	return out
}

func intsToWeekdays(values []int32) []time.Weekday {
	out := make([]time.Weekday, 0, len(values))
	for _, v := range values {
		out = append(out, time.Weekday(v))
	}
	return out
}
