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

const therapistColumns = `
	t.id, t.user_id, t.kind, t.license, t.bio, t.created_at, t.updated_at,
	u.first_name, u.last_name
`

const therapistJoins = `
	FROM therapists t
	JOIN users u ON t.user_id = u.id
`

type TherapistRepo struct {
	db *pgxpool.Pool
}

func NewTherapistRepository(db *pgxpool.Pool) *TherapistRepo {
	return &TherapistRepo{
		db: db,
	}
}

func (r *TherapistRepo) Create(ctx context.Context, dto domain.CreateTherapistDTO) (int64, error) {
	query := `
		INSERT INTO therapists (user_id, kind, license, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		dto.UserID,
		dto.Kind,
		dto.License,
		dto.Bio,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create therapist: %w", err)
	}

	return id, nil
}

func (r *TherapistRepo) GetByID(ctx context.Context, id int64) (*domain.Therapist, error) {
	return r.getBy(ctx, "t.id = $1", id)
}

func (r *TherapistRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Therapist, error) {
	return r.getBy(ctx, "t.user_id = $1", userID)
}

func (r *TherapistRepo) Update(ctx context.Context, id int64, dto domain.UpdateTherapistDTO) error {
	var setClauses []string
	var args []interface{}
	argCount := 1

	if dto.Kind != nil {
		setClauses = append(setClauses, fmt.Sprintf("kind = $%d", argCount))
		args = append(args, *dto.Kind)
		argCount++
	}

	if dto.License != nil {
		setClauses = append(setClauses, fmt.Sprintf("license = $%d", argCount))
		args = append(args, *dto.License)
		argCount++
	}

	if dto.Bio != nil {
		setClauses = append(setClauses, fmt.Sprintf("bio = $%d", argCount))
		args = append(args, *dto.Bio)
		argCount++
	}

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE therapists SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argCount)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update therapist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("therapist %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *TherapistRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM therapists WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete therapist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("therapist %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *TherapistRepo) List(ctx context.Context, limit, offset int) ([]domain.Therapist, error) {
	query := `SELECT` + therapistColumns + therapistJoins + `ORDER BY u.first_name, u.last_name`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query therapists: %w", err)
	}
	defer rows.Close()

	therapists := make([]domain.Therapist, 0)
	for rows.Next() {
		therapist, err := scanTherapist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan therapist row: %w", err)
		}
		therapists = append(therapists, *therapist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate therapist rows: %w", err)
	}

	return therapists, nil
}

func (r *TherapistRepo) getBy(ctx context.Context, condition string, arg interface{}) (*domain.Therapist, error) {
	query := `SELECT` + therapistColumns + therapistJoins + `WHERE ` + condition

	therapist, err := scanTherapist(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("therapist: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get therapist: %w", err)
	}

	return therapist, nil
}

func scanTherapist(row pgx.Row) (*domain.Therapist, error) {
	var therapist domain.Therapist
	err := row.Scan(
		&therapist.ID,
		&therapist.UserID,
		&therapist.Kind,
		&therapist.License,
		&therapist.Bio,
		&therapist.CreatedAt,
		&therapist.UpdatedAt,
		&therapist.FirstName,
		&therapist.LastName,
	)
	if err != nil {
		return nil, err
	}
	return &therapist, nil
}
