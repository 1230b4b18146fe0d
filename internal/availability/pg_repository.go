package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
	"github.com/hackgods/medical-appointment-scheduling/internal/db"
)

type PgRepository struct {
	pool db.DBTX
}

func NewPgRepository(pool db.DBTX) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanWindow(row pgx.Row, withNames bool) (*Window, error) {
	var w Window
	var start, end int

	dest := []any{&w.ID, &w.DoctorID}
	if withNames {
		dest = append(dest, &w.DoctorName)
	}
	dest = append(dest, &w.SpecialtyID)
	if withNames {
		dest = append(dest, &w.SpecialtyName)
	}
	dest = append(dest, &w.DayOfWeek, &start, &end, &w.SlotMinutes, &w.CreatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}

	w.StartTime = clock.TimeOfDay(start)
	w.EndTime = clock.TimeOfDay(end)
	return &w, nil
}

func (r *PgRepository) ListWindows(ctx context.Context, f Filter) ([]Window, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.id, w.doctor_id, d.name, w.specialty_id, s.name,
		       w.day_of_week, w.start_minute, w.end_minute, w.slot_minutes, w.created_at
		FROM availability_windows w
		JOIN doctors d ON d.id = w.doctor_id
		JOIN specialties s ON s.id = w.specialty_id
		WHERE ($1::uuid IS NULL OR w.doctor_id = $1)
		  AND ($2::uuid IS NULL OR w.specialty_id = $2)
		  AND ($3::smallint IS NULL OR w.day_of_week = $3)
		ORDER BY w.day_of_week, w.start_minute, w.created_at, w.id
	`, f.DoctorID, f.SpecialtyID, f.DayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("query availability windows: %w", err)
	}
	defer rows.Close()

	var out []Window
	for rows.Next() {
		w, err := scanWindow(rows, true)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *PgRepository) CreateWindow(ctx context.Context, in WindowInput) (*Window, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO availability_windows
			(id, doctor_id, specialty_id, day_of_week, start_minute, end_minute, slot_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, doctor_id, specialty_id, day_of_week, start_minute, end_minute, slot_minutes, created_at
	`, uuid.New(), in.DoctorID, in.SpecialtyID, in.DayOfWeek, int(in.StartTime), int(in.EndTime), in.SlotMinutes)

	w, err := scanWindow(row, false)
	if err != nil {
		if db.IsExclusionViolation(err, "availability_windows_no_overlap") {
			return nil, ErrWindowOverlap
		}
		return nil, fmt.Errorf("insert availability window: %w", err)
	}
	return w, nil
}

func (r *PgRepository) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM availability_windows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete availability window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}
