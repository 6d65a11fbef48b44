package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fisiocal/internal/domain"
)

const patientColumns = `
	p.id, p.user_id, p.birth_date, p.diagnosis, p.observation, p.created_at, p.updated_at,
	u.first_name, u.last_name, u.phone
`

const patientJoins = `
	FROM patients p
	JOIN users u ON p.user_id = u.id
`

type PatientRepo struct {
	db *pgxpool.Pool
}

func NewPatientRepository(db *pgxpool.Pool) *PatientRepo {
	return &PatientRepo{
		db: db,
	}
}

func (r *PatientRepo) Create(ctx context.Context, dto domain.CreatePatientDTO) (int64, error) {
	query := `
		INSERT INTO patients (user_id, birth_date, diagnosis, observation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		dto.UserID,
		dto.BirthDate,
		dto.Diagnosis,
		dto.Observation,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create patient: %w", err)
	}

	return id, nil
}

func (r *PatientRepo) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	return r.getBy(ctx, "p.id = $1", id)
}

func (r *PatientRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Patient, error) {
	return r.getBy(ctx, "p.user_id = $1", userID)
}

func (r *PatientRepo) Update(ctx context.Context, id int64, dto domain.UpdatePatientDTO) error {
	var setClauses []string
	var args []interface{}
	argCount := 1

	if dto.BirthDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("birth_date = $%d", argCount))
		args = append(args, *dto.BirthDate)
		argCount++
	}

	if dto.Diagnosis != nil {
		setClauses = append(setClauses, fmt.Sprintf("diagnosis = $%d", argCount))
		args = append(args, *dto.Diagnosis)
		argCount++
	}

	if dto.Observation != nil {
		setClauses = append(setClauses, fmt.Sprintf("observation = $%d", argCount))
		args = append(args, *dto.Observation)
		argCount++
	}

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE patients SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argCount)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PatientRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM patients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PatientRepo) List(ctx context.Context, limit, offset int) ([]domain.Patient, error) {
	query := `SELECT` + patientColumns + patientJoins + `ORDER BY u.first_name, u.last_name`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients := make([]domain.Patient, 0)
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient row: %w", err)
		}
		patients = append(patients, *patient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patient rows: %w", err)
	}

	return patients, nil
}

func (r *PatientRepo) getBy(ctx context.Context, condition string, arg interface{}) (*domain.Patient, error) {
	query := `SELECT` + patientColumns + patientJoins + `WHERE ` + condition

	patient, err := scanPatient(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("patient: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return patient, nil
}

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	var patient domain.Patient
	err := row.Scan(
		&patient.ID,
		&patient.UserID,
		&patient.BirthDate,
		&patient.Diagnosis,
		&patient.Observation,
		&patient.CreatedAt,
		&patient.UpdatedAt,
		&patient.FirstName,
		&patient.LastName,
		&patient.Phone,
	)
	if err != nil {
		return nil, err
	}
	return &patient, nil
}
