package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/medical-appointment-scheduling/internal/db"
)

type PgRepository struct {
	pool db.DBTX
}

func NewPgRepository(pool db.DBTX) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

const appointmentColumns = `
	a.id, a.patient_id, p.name, a.doctor_id, d.name, a.specialty_id, s.name,
	a.insurance_plan_id, pl.name, a.date_time, a.status, a.created_at, a.updated_at`

const appointmentJoins = `
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id
	JOIN specialties s ON s.id = a.specialty_id
	JOIN insurance_plans pl ON pl.id = a.insurance_plan_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PatientName,
		&a.DoctorID,
		&a.DoctorName,
		&a.SpecialtyID,
		&a.SpecialtyName,
		&a.InsurancePlanID,
		&a.InsurancePlanName,
		&a.DateTime,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Status = Status(status)
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgRepository) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a`+appointmentJoins+`
		WHERE a.id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindByDoctorAt(ctx context.Context, doctorID uuid.UUID, at time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a`+appointmentJoins+`
		WHERE a.doctor_id = $1 AND a.date_time = $2
	`, doctorID, at)
	return scanAppointment(row)
}

func (r *PgRepository) ListBooked(ctx context.Context, doctorIDs []uuid.UUID, from, to time.Time) ([]Booked, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.doctor_id, a.date_time, a.status, p.name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = ANY($1)
		  AND a.date_time >= $2
		  AND a.date_time < $3
	`, doctorIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("query booked appointments: %w", err)
	}
	defer rows.Close()

	var result []Booked
	for rows.Next() {
		var b Booked
		var status string
		if err := rows.Scan(&b.AppointmentID, &b.DoctorID, &b.DateTime, &status, &b.PatientName); err != nil {
			return nil, err
		}
		b.Status = Status(status)
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *PgRepository) Create(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		WITH a AS (
			INSERT INTO appointments
				(id, patient_id, doctor_id, specialty_id, insurance_plan_id, date_time, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT `+appointmentColumns+`
		FROM a`+appointmentJoins+`
	`, uuid.New(), a.PatientID, a.DoctorID, a.SpecialtyID, a.InsurancePlanID, a.DateTime, string(a.Status))

	created, err := scanAppointment(row)
	if err != nil {
		if db.IsUniqueViolation(err, "appointments_doctor_slot_key") {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return created, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		WITH a AS (
			UPDATE appointments
			SET status = $2,
			    updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+appointmentColumns+`
		FROM a`+appointmentJoins+`
	`, id, string(status))

	updated, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	return updated, nil
}

func (r *PgRepository) List(ctx context.Context, q ListQuery) ([]Appointment, error) {
	var status *string
	if q.Status != nil {
		s := string(*q.Status)
		status = &s
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a`+appointmentJoins+`
		WHERE ($1::timestamp IS NULL OR a.date_time >= $1)
		  AND ($2::timestamp IS NULL OR a.date_time <= $2)
		  AND ($3 = '' OR p.name ILIKE $4)
		  AND ($5::text IS NULL OR a.status = $5)
		ORDER BY a.date_time, a.id
	`, q.From, q.To, q.PatientName, db.ContainsPattern(q.PatientName), status)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	return collectAppointments(rows)
}

// MarkNoShows flips Scheduled and Confirmed appointments that started before
// the cutoff and have no visit on record.
func (r *PgRepository) MarkNoShows(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE appointments a
		SET status = 'NoShow',
		    updated_at = now()
		WHERE a.status IN ('Scheduled', 'Confirmed')
		  AND a.date_time < $1
		  AND NOT EXISTS (SELECT 1 FROM visits v WHERE v.appointment_id = a.id)
		RETURNING a.id
	`, before)
	if err != nil {
		return nil, fmt.Errorf("mark no-shows: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
