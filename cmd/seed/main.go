package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careloop/patient-intake/internal/db"
	"github.com/careloop/patient-intake/internal/roster"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedRegisteredPatients(context.Background(), pool, 500); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

// seedRegisteredPatients creates a user plus a completed registration record
// for each, the state a patient is in right before booking an appointment.
func seedRegisteredPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d registered patients", count)

	doctors := roster.Doctors()
	genders := []string{"male", "female", "other"}
	idTypes := []string{"Passport", "Driver's License", "National Identity Card"}

	const batchSize = 100

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			userID := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()
			phone := "+1" + gofakeit.Numerify("##########")

			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, userID, name, email, phone)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}

			patientID := uuid.New()
			physician := doctors[gofakeit.Number(0, len(doctors)-1)].Name
			birthDate := gofakeit.DateRange(
				time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2006, 12, 31, 0, 0, 0, 0, time.UTC),
			)

			_, err = tx.Exec(ctx, `
				INSERT INTO patients (
					id, user_id, name, email, phone,
					birth_date, gender, address, occupation,
					emergency_contact_name, emergency_contact_number,
					primary_physician, insurance_provider, insurance_policy_number,
					identification_type, identification_number,
					treatment_consent, disclosure_consent, privacy_consent,
					created_at, updated_at
				)
				VALUES (
					$1, $2, $3, $4, $5,
					$6, $7, $8, $9,
					$10, $11,
					$12, $13, $14,
					$15, $16,
					true, true, true,
					now(), now()
				)
			`,
				patientID, userID, name, email, phone,
				birthDate, genders[gofakeit.Number(0, len(genders)-1)],
				gofakeit.Street()+", "+gofakeit.City(), gofakeit.JobTitle(),
				gofakeit.Name(), "+1"+gofakeit.Numerify("##########"),
				physician, gofakeit.Company(), gofakeit.Numerify("POL-########"),
				idTypes[gofakeit.Number(0, len(idTypes)-1)], gofakeit.Numerify("ID########"),
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}
