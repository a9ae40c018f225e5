package main

import (
	"flag"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/medibook/booking-api/internal/config"
	"github.com/medibook/booking-api/internal/repository/postgres"
	"github.com/medibook/booking-api/pkg/security"
)

var specialties = []struct {
	name        string
	description string
	icon        string
}{
	{"General Medicine", "Primary care and general consultations", "stethoscope"},
	{"Dermatology", "Skin, hair and nail conditions", "hand"},
	{"Cardiology", "Heart and vascular conditions", "heart"},
	{"Pediatrics", "Care for infants, children and adolescents", "baby"},
	{"Psychiatry", "Mental health consultations", "brain"},
	{"Ophthalmology", "Eye care and vision", "eye"},
	{"Gynecology", "Women's health", "venus"},
	{"Dentistry", "Oral and dental care", "tooth"},
}

func main() {
	count := flag.Int("practitioners", 25, "number of practitioners to create")
	seed := flag.Uint64("seed", 0, "fake data seed, 0 for random")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(int64(*seed))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	hasher := security.NewBcryptHasher(10)
	passwordHash, err := hasher.Hash("password123")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash seed password")
	}

	specialtyIDs := seedSpecialties(db)
	seedPractitioners(db, specialtyIDs, passwordHash, *count)

	log.Info().Int("practitioners", *count).Msg("seed complete")
}

func seedSpecialties(db *sqlx.DB) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(specialties))
	for _, s := range specialties {
		var id uuid.UUID
		err := db.QueryRowx(`
			INSERT INTO specialties (name, description, icon)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
			RETURNING id`,
			s.name, s.description, s.icon,
		).Scan(&id)
		if err != nil {
			log.Fatal().Err(err).Str("specialty", s.name).Msg("failed to seed specialty")
		}
		ids = append(ids, id)
	}
	return ids
}

func seedPractitioners(db *sqlx.DB, specialtyIDs []uuid.UUID, passwordHash string, count int) {
	durations := []int{15, 20, 30, 45, 60}

	for i := 0; i < count; i++ {
		firstName := gofakeit.FirstName()
		lastName := gofakeit.LastName()
		email := fmt.Sprintf("%s.%s.%d@medibook-demo.local",
			gofakeit.Username(), lastName, i)

		var userID uuid.UUID
		err := db.QueryRowx(`
			INSERT INTO users (email, password_hash, first_name, last_name, phone, role, is_active)
			VALUES ($1, $2, $3, $4, $5, 'practitioner', true)
			RETURNING id`,
			email, passwordHash, firstName, lastName, gofakeit.Phone(),
		).Scan(&userID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed user")
		}

		var practitionerID uuid.UUID
		err = db.QueryRowx(`
			INSERT INTO practitioners (
				user_id, specialty_id, license_number, bio,
				consultation_duration, consultation_price,
				accepts_new_patients, teleconsultation_available,
				office_address, office_city, office_postal_code
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`,
			userID,
			specialtyIDs[gofakeit.Number(0, len(specialtyIDs)-1)],
			gofakeit.Numerify("##########"),
			gofakeit.Sentence(12),
			durations[gofakeit.Number(0, len(durations)-1)],
			gofakeit.Price(25, 150),
			gofakeit.Bool(),
			gofakeit.Bool(),
			gofakeit.Street(),
			gofakeit.City(),
			gofakeit.Zip(),
		).Scan(&practitionerID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed practitioner")
		}

		seedAvailability(db, practitionerID)
	}
}

// seedAvailability gives each practitioner a plausible weekly schedule:
// weekday mornings plus two or three afternoons.
func seedAvailability(db *sqlx.DB, practitionerID uuid.UUID) {
	for day := 1; day <= 5; day++ {
		insertWindow(db, practitionerID, day, "09:00", "12:00")
		if gofakeit.Number(0, 2) > 0 {
			insertWindow(db, practitionerID, day, "14:00", "18:00")
		}
	}
	if gofakeit.Bool() {
		insertWindow(db, practitionerID, 6, "09:00", "12:00")
	}
}

func insertWindow(db *sqlx.DB, practitionerID uuid.UUID, day int, start, end string) {
	_, err := db.Exec(`
		INSERT INTO availability_windows (practitioner_id, day_of_week, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4, true)`,
		practitionerID, day, start, end,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed availability window")
	}
}
