package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/medical-appointment-scheduling/internal/availability"
	"github.com/hackgods/medical-appointment-scheduling/internal/catalog"
	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
	"github.com/hackgods/medical-appointment-scheduling/internal/config"
	"github.com/hackgods/medical-appointment-scheduling/internal/db"
	"github.com/hackgods/medical-appointment-scheduling/internal/logging"
	redisclient "github.com/hackgods/medical-appointment-scheduling/internal/redis"
)

var specialtyNames = []string{
	"Cardiologia",
	"Dermatologia",
	"Clínica Geral",
	"Ortopedia",
	"Endocrinologia",
	"Neurologia",
	"Pediatria",
	"Psiquiatria",
	"Oftalmologia",
	"Otorrinolaringologia",
}

var planNames = []string{
	"Particular",
	"Unimed",
	"Amil",
	"Bradesco Saúde",
	"SulAmérica",
	"Hapvida",
}

type seeder struct {
	catalog *catalog.Service
	store   *availability.Store
	faker   *gofakeit.Faker
	logger  zerolog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("prod", "info")
		boot.Fatal().Err(err).Msg("config load error")
	}
	logger := logging.New(cfg.Env, cfg.LogLevel).With().Str("service", "seed").Logger()
	logger.Info().Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	catalogSvc := catalog.NewService(catalog.NewPgRepository(pool), zerolog.Nop())
	s := &seeder{
		catalog: catalogSvc,
		store:   availability.NewStore(availability.NewPgRepository(pool), catalogSvc, redisclient.LocalLocker{}, cfg, nil, zerolog.Nop()),
		faker:   gofakeit.New(0),
		logger:  logger,
	}

	doctors := envInt("SEED_DOCTORS", 20)
	patients := envInt("SEED_PATIENTS", 500)

	specialties, err := s.seedSpecialties(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed specialties")
	}
	plans, err := s.seedPlans(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed insurance plans")
	}
	if err := s.seedDoctors(ctx, doctors, specialties); err != nil {
		logger.Fatal().Err(err).Msg("seed doctors")
	}
	if err := s.seedPatients(ctx, patients, plans); err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}

	logger.Info().Msg("seed complete")
}

// seedSpecialties creates the missing specialties and returns all of them.
func (s *seeder) seedSpecialties(ctx context.Context) ([]catalog.Specialty, error) {
	for _, name := range specialtyNames {
		_, err := s.catalog.CreateSpecialty(ctx, name)
		if err != nil && !errors.Is(err, catalog.ErrSpecialtyExists) {
			return nil, fmt.Errorf("create specialty %q: %w", name, err)
		}
	}
	list, err := s.catalog.ListSpecialties(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("count", len(list)).Msg("specialties seeded")
	return list, nil
}

func (s *seeder) seedPlans(ctx context.Context) ([]catalog.InsurancePlan, error) {
	for _, name := range planNames {
		_, err := s.catalog.CreatePlan(ctx, name)
		if err != nil && !errors.Is(err, catalog.ErrPlanExists) {
			return nil, fmt.Errorf("create plan %q: %w", name, err)
		}
	}
	list, err := s.catalog.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("count", len(list)).Msg("insurance plans seeded")
	return list, nil
}

// seedDoctors gives every doctor one or two specialties and weekday windows:
// mornings for the first specialty, afternoons for the second.
func (s *seeder) seedDoctors(ctx context.Context, count int, specialties []catalog.Specialty) error {
	s.logger.Info().Int("count", count).Msg("seeding doctors")

	shifts := [][2]clock.TimeOfDay{
		{clock.NewTimeOfDay(8, 0), clock.NewTimeOfDay(12, 0)},
		{clock.NewTimeOfDay(13, 0), clock.NewTimeOfDay(17, 0)},
	}
	durations := []int{15, 20, 30, 45, 60}

	windows := 0
	for i := 0; i < count; i++ {
		picked := s.pickSpecialties(specialties, s.faker.Number(1, 2))
		ids := make([]uuid.UUID, 0, len(picked))
		for _, sp := range picked {
			ids = append(ids, sp.ID)
		}

		doc, err := s.catalog.CreateDoctor(ctx, "Dr(a). "+s.faker.Name(), ids)
		if err != nil {
			return fmt.Errorf("create doctor: %w", err)
		}

		for day := 1; day <= 5; day++ {
			for j, sp := range picked {
				_, err := s.store.Define(ctx, availability.WindowInput{
					DoctorID:    doc.ID,
					SpecialtyID: sp.ID,
					DayOfWeek:   day,
					StartTime:   shifts[j][0],
					EndTime:     shifts[j][1],
					SlotMinutes: durations[s.faker.Number(0, len(durations)-1)],
				})
				if err != nil {
					return fmt.Errorf("define window for %s: %w", doc.Name, err)
				}
				windows++
			}
		}
	}

	s.logger.Info().Int("doctors", count).Int("windows", windows).Msg("doctors seeded")
	return nil
}

func (s *seeder) pickSpecialties(all []catalog.Specialty, n int) []catalog.Specialty {
	if n > len(all) {
		n = len(all)
	}
	shuffled := make([]catalog.Specialty, len(all))
	copy(shuffled, all)
	s.faker.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}

func (s *seeder) seedPatients(ctx context.Context, count int, plans []catalog.InsurancePlan) error {
	s.logger.Info().Int("count", count).Msg("seeding patients")

	for i := 0; i < count; i++ {
		plan := plans[s.faker.Number(0, len(plans)-1)]
		_, err := s.catalog.CreatePatient(ctx, catalog.PatientInput{
			Name:            s.faker.Name(),
			Email:           s.faker.Email(),
			Phone:           s.faker.Phone(),
			InsurancePlanID: plan.ID,
		})
		if err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		if (i+1)%100 == 0 {
			s.logger.Info().Msgf("patients seeded: %d/%d", i+1, count)
		}
	}

	s.logger.Info().Msg("patients seeded")
	return nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
