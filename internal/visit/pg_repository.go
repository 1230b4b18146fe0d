package visit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/medical-appointment-scheduling/internal/appointment"
	"github.com/hackgods/medical-appointment-scheduling/internal/db"
)

type PgRepository struct {
	pool db.DBTX
}

func NewPgRepository(pool db.DBTX) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Record(ctx context.Context, appointmentID uuid.UUID, notes string) (*Visit, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = 'Completed',
		    updated_at = now()
		WHERE id = $1
	`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("complete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, appointment.ErrAppointmentNotFound
	}

	var v Visit
	err = tx.QueryRow(ctx, `
		INSERT INTO visits (id, appointment_id, notes)
		VALUES ($1, $2, $3)
		RETURNING id, appointment_id, attended_at, notes
	`, uuid.New(), appointmentID, notes).Scan(&v.ID, &v.AppointmentID, &v.AttendedAt, &v.Notes)
	if err != nil {
		if db.IsUniqueViolation(err, "visits_appointment_key") {
			return nil, ErrVisitAlreadyRecorded
		}
		return nil, fmt.Errorf("insert visit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit visit: %w", err)
	}
	return &v, nil
}

func (r *PgRepository) List(ctx context.Context, f Filter) ([]Visit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT v.id, v.appointment_id, v.attended_at, v.notes,
		       a.id, a.patient_id, p.name, a.doctor_id, d.name, a.specialty_id, s.name,
		       a.insurance_plan_id, pl.name, a.date_time, a.status, a.created_at, a.updated_at
		FROM visits v
		JOIN appointments a ON a.id = v.appointment_id
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors d ON d.id = a.doctor_id
		JOIN specialties s ON s.id = a.specialty_id
		JOIN insurance_plans pl ON pl.id = a.insurance_plan_id
		WHERE ($1::timestamptz IS NULL OR v.attended_at >= $1)
		  AND ($2::timestamptz IS NULL OR v.attended_at <= $2)
		  AND ($3 = '' OR p.name ILIKE $4)
		ORDER BY v.attended_at DESC, v.id
	`, f.From, f.To, f.PatientName, db.ContainsPattern(f.PatientName))
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	var status string
	a := &v.Appointment

	err := row.Scan(
		&v.ID, &v.AppointmentID, &v.AttendedAt, &v.Notes,
		&a.ID, &a.PatientID, &a.PatientName, &a.DoctorID, &a.DoctorName, &a.SpecialtyID, &a.SpecialtyName,
		&a.InsurancePlanID, &a.InsurancePlanName, &a.DateTime, &status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Status = appointment.Status(status)
	return &v, nil
}
