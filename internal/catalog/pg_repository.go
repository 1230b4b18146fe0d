package catalog

import (
	"context"
	"errors"
	"fmt"

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

func scanSpecialty(row pgx.Row) (*Specialty, error) {
	var s Specialty
	if err := row.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSpecialtyNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanPlan(row pgx.Row) (*InsurancePlan, error) {
	var p InsurancePlan
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.InsurancePlanID,
		&p.InsurancePlanName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

const patientColumns = `p.id, p.name, p.email, p.phone, p.insurance_plan_id, pl.name, p.created_at, p.updated_at`

// Specialties

func (r *PgRepository) CreateSpecialty(ctx context.Context, name string) (*Specialty, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO specialties (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at
	`, uuid.New(), name)

	s, err := scanSpecialty(row)
	if err != nil {
		if db.IsUniqueViolation(err, "specialties_name_key") {
			return nil, ErrSpecialtyExists
		}
		return nil, fmt.Errorf("insert specialty: %w", err)
	}
	return s, nil
}

func (r *PgRepository) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at
		FROM specialties
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query specialties: %w", err)
	}
	defer rows.Close()

	var out []Specialty
	for rows.Next() {
		s, err := scanSpecialty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PgRepository) GetSpecialty(ctx context.Context, id uuid.UUID) (*Specialty, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at
		FROM specialties
		WHERE id = $1
	`, id)
	return scanSpecialty(row)
}

func (r *PgRepository) CountSpecialties(ctx context.Context, ids []uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM specialties
		WHERE id = ANY($1)
	`, ids).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count specialties: %w", err)
	}
	return n, nil
}

// Insurance plans

func (r *PgRepository) CreatePlan(ctx context.Context, name string) (*InsurancePlan, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO insurance_plans (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at
	`, uuid.New(), name)

	p, err := scanPlan(row)
	if err != nil {
		if db.IsUniqueViolation(err, "insurance_plans_name_key") {
			return nil, ErrPlanExists
		}
		return nil, fmt.Errorf("insert insurance plan: %w", err)
	}
	return p, nil
}

func (r *PgRepository) ListPlans(ctx context.Context) ([]InsurancePlan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at
		FROM insurance_plans
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query insurance plans: %w", err)
	}
	defer rows.Close()

	var out []InsurancePlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PgRepository) GetPlan(ctx context.Context, id uuid.UUID) (*InsurancePlan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at
		FROM insurance_plans
		WHERE id = $1
	`, id)
	return scanPlan(row)
}

func (r *PgRepository) DeletePlan(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM insurance_plans WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return ErrPlanInUse
		}
		return fmt.Errorf("delete insurance plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Doctors

func (r *PgRepository) CreateDoctor(ctx context.Context, name string, specialtyIDs []uuid.UUID) (*Doctor, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	d, err := scanDoctor(tx.QueryRow(ctx, `
		INSERT INTO doctors (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at, updated_at
	`, uuid.New(), name))
	if err != nil {
		return nil, fmt.Errorf("insert doctor: %w", err)
	}

	if err := insertDoctorSpecialties(ctx, tx, d.ID, specialtyIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit doctor: %w", err)
	}

	return r.GetDoctor(ctx, d.ID)
}

func insertDoctorSpecialties(ctx context.Context, tx pgx.Tx, doctorID uuid.UUID, specialtyIDs []uuid.UUID) error {
	for _, sid := range specialtyIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO doctor_specialties (doctor_id, specialty_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, doctorID, sid)
		if err != nil {
			if db.IsForeignKeyViolation(err, "") {
				return ErrUnknownSpecialty
			}
			return fmt.Errorf("insert doctor specialty: %w", err)
		}
	}
	return nil
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM doctors
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}

	var doctors []Doctor
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[d.ID] = len(doctors)
		doctors = append(doctors, *d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		return doctors, nil
	}

	srows, err := r.pool.Query(ctx, `
		SELECT ds.doctor_id, s.id, s.name, s.created_at
		FROM doctor_specialties ds
		JOIN specialties s ON s.id = ds.specialty_id
		ORDER BY s.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query doctor specialties: %w", err)
	}
	defer srows.Close()

	for srows.Next() {
		var doctorID uuid.UUID
		var s Specialty
		if err := srows.Scan(&doctorID, &s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[doctorID]; ok {
			doctors[i].Specialties = append(doctors[i].Specialties, s)
		}
	}
	return doctors, srows.Err()
}

func (r *PgRepository) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.created_at
		FROM doctor_specialties ds
		JOIN specialties s ON s.id = ds.specialty_id
		WHERE ds.doctor_id = $1
		ORDER BY s.name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query doctor specialties: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSpecialty(rows)
		if err != nil {
			return nil, err
		}
		d.Specialties = append(d.Specialties, *s)
	}
	return d, rows.Err()
}

// SetDoctorSpecialties replaces the doctor's specialty set.
func (r *PgRepository) SetDoctorSpecialties(ctx context.Context, id uuid.UUID, specialtyIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE doctors SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM doctor_specialties WHERE doctor_id = $1`, id); err != nil {
		return fmt.Errorf("clear doctor specialties: %w", err)
	}

	if err := insertDoctorSpecialties(ctx, tx, id, specialtyIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit doctor specialties: %w", err)
	}
	return nil
}

func (r *PgRepository) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return ErrDoctorInUse
		}
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgRepository) DoctorHasSpecialty(ctx context.Context, doctorID, specialtyID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doctor_specialties
			WHERE doctor_id = $1 AND specialty_id = $2
		)
	`, doctorID, specialtyID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check doctor specialty: %w", err)
	}
	return ok, nil
}

// Patients

func (r *PgRepository) CreatePatient(ctx context.Context, p Patient) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		WITH p AS (
			INSERT INTO patients (id, name, email, phone, insurance_plan_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT `+patientColumns+`
		FROM p
		JOIN insurance_plans pl ON pl.id = p.insurance_plan_id
	`, uuid.New(), p.Name, p.Email, p.Phone, p.InsurancePlanID)

	created, err := scanPatient(row)
	if err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	return created, nil
}

// ListPatients returns patients ordered by name. An empty nameContains
// returns everyone.
func (r *PgRepository) ListPatients(ctx context.Context, nameContains string) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients p
		JOIN insurance_plans pl ON pl.id = p.insurance_plan_id
		WHERE $1 = '' OR p.name ILIKE $2
		ORDER BY p.name
	`, nameContains, db.ContainsPattern(nameContains))
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PgRepository) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients p
		JOIN insurance_plans pl ON pl.id = p.insurance_plan_id
		WHERE p.id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		WITH p AS (
			UPDATE patients SET
				name = COALESCE($2, name),
				email = COALESCE($3, email),
				phone = COALESCE($4, phone),
				insurance_plan_id = COALESCE($5, insurance_plan_id),
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+patientColumns+`
		FROM p
		JOIN insurance_plans pl ON pl.id = p.insurance_plan_id
	`, id, upd.Name, upd.Email, upd.Phone, upd.InsurancePlanID)

	updated, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		if db.IsForeignKeyViolation(err, "") {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return updated, nil
}

func (r *PgRepository) DeletePatient(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return ErrPatientInUse
		}
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}
