package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/medical-appointment-scheduling/internal/apperr"
)

// memRepo is an in-memory Repository used by the service tests.
type memRepo struct {
	mu          sync.Mutex
	specialties map[uuid.UUID]Specialty
	plans       map[uuid.UUID]InsurancePlan
	doctors     map[uuid.UUID]Doctor
	patients    map[uuid.UUID]Patient
}

func newMemRepo() *memRepo {
	return &memRepo{
		specialties: map[uuid.UUID]Specialty{},
		plans:       map[uuid.UUID]InsurancePlan{},
		doctors:     map[uuid.UUID]Doctor{},
		patients:    map[uuid.UUID]Patient{},
	}
}

func (m *memRepo) CreateSpecialty(_ context.Context, name string) (*Specialty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.specialties {
		if s.Name == name {
			return nil, ErrSpecialtyExists
		}
	}
	s := Specialty{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	m.specialties[s.ID] = s
	return &s, nil
}

func (m *memRepo) ListSpecialties(context.Context) ([]Specialty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Specialty
	for _, s := range m.specialties {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) GetSpecialty(_ context.Context, id uuid.UUID) (*Specialty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.specialties[id]
	if !ok {
		return nil, ErrSpecialtyNotFound
	}
	return &s, nil
}

func (m *memRepo) CountSpecialties(_ context.Context, ids []uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.specialties[id]; ok {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CreatePlan(_ context.Context, name string) (*InsurancePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.Name == name {
			return nil, ErrPlanExists
		}
	}
	p := InsurancePlan{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	m.plans[p.ID] = p
	return &p, nil
}

func (m *memRepo) ListPlans(context.Context) ([]InsurancePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []InsurancePlan
	for _, p := range m.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) GetPlan(_ context.Context, id uuid.UUID) (*InsurancePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return &p, nil
}

func (m *memRepo) DeletePlan(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return ErrPlanNotFound
	}
	for _, p := range m.patients {
		if p.InsurancePlanID == id {
			return ErrPlanInUse
		}
	}
	delete(m.plans, id)
	return nil
}

func (m *memRepo) CreateDoctor(_ context.Context, name string, specialtyIDs []uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := Doctor{ID: uuid.New(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	for _, id := range specialtyIDs {
		s, ok := m.specialties[id]
		if !ok {
			return nil, ErrUnknownSpecialty
		}
		d.Specialties = append(d.Specialties, s)
	}
	m.doctors[d.ID] = d
	return &d, nil
}

func (m *memRepo) ListDoctors(context.Context) ([]Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Doctor
	for _, d := range m.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) GetDoctor(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (m *memRepo) SetDoctorSpecialties(_ context.Context, id uuid.UUID, specialtyIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return ErrDoctorNotFound
	}
	d.Specialties = nil
	for _, sid := range specialtyIDs {
		d.Specialties = append(d.Specialties, m.specialties[sid])
	}
	m.doctors[id] = d
	return nil
}

func (m *memRepo) DeleteDoctor(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.doctors[id]; !ok {
		return ErrDoctorNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *memRepo) DoctorHasSpecialty(_ context.Context, doctorID, specialtyID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.doctors[doctorID]
	return d.HasSpecialty(specialtyID), nil
}

func (m *memRepo) CreatePatient(_ context.Context, p Patient) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	plan, ok := m.plans[p.InsurancePlanID]
	if !ok {
		return nil, ErrPlanNotFound
	}
	p.ID = uuid.New()
	p.InsurancePlanName = plan.Name
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	m.patients[p.ID] = p
	return &p, nil
}

func (m *memRepo) ListPatients(_ context.Context, nameContains string) ([]Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Patient
	for _, p := range m.patients {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(nameContains)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) GetPatient(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (m *memRepo) UpdatePatient(_ context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.InsurancePlanID != nil {
		p.InsurancePlanID = *upd.InsurancePlanID
		p.InsurancePlanName = m.plans[p.InsurancePlanID].Name
	}
	m.patients[id] = p
	return &p, nil
}

func (m *memRepo) DeletePatient(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[id]; !ok {
		return ErrPatientNotFound
	}
	delete(m.patients, id)
	return nil
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func TestCreateSpecialty_TrimsAndRejectsBlank(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s, err := svc.CreateSpecialty(ctx, "  Cardiologia ")
	require.NoError(t, err)
	assert.Equal(t, "Cardiologia", s.Name)

	_, err = svc.CreateSpecialty(ctx, "   ")
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateSpecialty(ctx, "Cardiologia")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateDoctor_NameLength(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateDoctor(ctx, "Ana", nil)
	assert.ErrorIs(t, err, ErrDoctorNameLength)

	_, err = svc.CreateDoctor(ctx, strings.Repeat("a", 126), nil)
	assert.ErrorIs(t, err, ErrDoctorNameLength)

	d, err := svc.CreateDoctor(ctx, "Dra. Ana Lima", nil)
	require.NoError(t, err)
	assert.Empty(t, d.Specialties)
}

func TestCreateDoctor_Specialties(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cardio, err := svc.CreateSpecialty(ctx, "Cardiologia")
	require.NoError(t, err)

	d, err := svc.CreateDoctor(ctx, "Dr. Paulo Reis", []uuid.UUID{cardio.ID, cardio.ID})
	require.NoError(t, err)
	require.Len(t, d.Specialties, 1)
	assert.True(t, d.HasSpecialty(cardio.ID))

	_, err = svc.CreateDoctor(ctx, "Dr. Paulo Reis", []uuid.UUID{cardio.ID, uuid.New()})
	assert.ErrorIs(t, err, ErrUnknownSpecialty)
}

func TestSetDoctorSpecialties_Replaces(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cardio, _ := svc.CreateSpecialty(ctx, "Cardiologia")
	derma, _ := svc.CreateSpecialty(ctx, "Dermatologia")
	d, err := svc.CreateDoctor(ctx, "Dr. Paulo Reis", []uuid.UUID{cardio.ID})
	require.NoError(t, err)

	d, err = svc.SetDoctorSpecialties(ctx, d.ID, []uuid.UUID{derma.ID})
	require.NoError(t, err)
	assert.False(t, d.HasSpecialty(cardio.ID))
	assert.True(t, d.HasSpecialty(derma.ID))

	_, err = svc.SetDoctorSpecialties(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestCreatePatient_RequiresExistingPlan(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, PatientInput{Name: "Maria", InsurancePlanID: uuid.New()})
	assert.ErrorIs(t, err, ErrPlanNotFound)

	plan, err := svc.CreatePlan(ctx, "Unimed")
	require.NoError(t, err)

	p, err := svc.CreatePatient(ctx, PatientInput{Name: " Maria Silva ", Email: "maria@example.com", InsurancePlanID: plan.ID})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", p.Name)
	assert.Equal(t, "Unimed", p.InsurancePlanName)
}

func TestUpdatePatient_Partial(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	unimed, _ := svc.CreatePlan(ctx, "Unimed")
	amil, _ := svc.CreatePlan(ctx, "Amil")
	p, err := svc.CreatePatient(ctx, PatientInput{Name: "Maria Silva", Phone: "1199999", InsurancePlanID: unimed.ID})
	require.NoError(t, err)

	email := "maria@example.com"
	p, err = svc.UpdatePatient(ctx, p.ID, PatientUpdate{Email: &email, InsurancePlanID: &amil.ID})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", p.Name)
	assert.Equal(t, "1199999", p.Phone)
	assert.Equal(t, email, p.Email)
	assert.Equal(t, "Amil", p.InsurancePlanName)

	blank := " "
	_, err = svc.UpdatePatient(ctx, p.ID, PatientUpdate{Name: &blank})
	assert.ErrorIs(t, err, ErrNameRequired)

	missing := uuid.New()
	_, err = svc.UpdatePatient(ctx, p.ID, PatientUpdate{InsurancePlanID: &missing})
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.UpdatePatient(ctx, uuid.New(), PatientUpdate{Email: &email})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestDeletePlan_InUse(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	plan, _ := svc.CreatePlan(ctx, "Unimed")
	p, err := svc.CreatePatient(ctx, PatientInput{Name: "Maria Silva", InsurancePlanID: plan.ID})
	require.NoError(t, err)

	err = svc.DeletePlan(ctx, plan.ID)
	assert.ErrorIs(t, err, ErrPlanInUse)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	require.NoError(t, svc.DeletePatient(ctx, p.ID))
	require.NoError(t, svc.DeletePlan(ctx, plan.ID))
	assert.ErrorIs(t, svc.DeletePlan(ctx, plan.ID), ErrPlanNotFound)
}

func TestListPatients_NameFilter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	plan, _ := svc.CreatePlan(ctx, "Unimed")
	for _, name := range []string{"Maria Silva", "João Souza", "Mariana Costa"} {
		_, err := svc.CreatePatient(ctx, PatientInput{Name: name, InsurancePlanID: plan.ID})
		require.NoError(t, err)
	}

	got, err := svc.ListPatients(ctx, " mari ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Maria Silva", got[0].Name)
	assert.Equal(t, "Mariana Costa", got[1].Name)

	all, err := svc.ListPatients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
