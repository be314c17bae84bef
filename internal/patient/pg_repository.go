package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

const patientColumns = `
	id, user_id, name, email, phone,
	birth_date, gender, address, occupation,
	emergency_contact_name, emergency_contact_number,
	primary_physician, insurance_provider, insurance_policy_number,
	allergies, current_medication, family_medical_history, past_medical_history,
	identification_type, identification_number, identification_document_id,
	treatment_consent, disclosure_consent, privacy_consent,
	created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.BirthDate,
		&p.Gender,
		&p.Address,
		&p.Occupation,
		&p.EmergencyContactName,
		&p.EmergencyContactNumber,
		&p.PrimaryPhysician,
		&p.InsuranceProvider,
		&p.InsurancePolicyNumber,
		&p.Allergies,
		&p.CurrentMedication,
		&p.FamilyMedicalHistory,
		&p.PastMedicalHistory,
		&p.IdentificationType,
		&p.IdentificationNumber,
		&p.IdentificationDocumentID,
		&p.TreatmentConsent,
		&p.DisclosureConsent,
		&p.PrivacyConsent,
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

// Interface methods

func (r *PgRepository) CreateUser(ctx context.Context, name, email, phone string) (*User, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, name, email, phone, created_at, updated_at
	`, id, name, email, phone)

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return u, nil
}

func (r *PgRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *PgRepository) UpsertPatient(ctx context.Context, p *Patient) (*Patient, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (
			id, user_id, name, email, phone,
			birth_date, gender, address, occupation,
			emergency_contact_name, emergency_contact_number,
			primary_physician, insurance_provider, insurance_policy_number,
			allergies, current_medication, family_medical_history, past_medical_history,
			identification_type, identification_number, identification_document_id,
			treatment_consent, disclosure_consent, privacy_consent,
			created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11,
			$12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21,
			$22, $23, $24,
			now(), now()
		)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			birth_date = EXCLUDED.birth_date,
			gender = EXCLUDED.gender,
			address = EXCLUDED.address,
			occupation = EXCLUDED.occupation,
			emergency_contact_name = EXCLUDED.emergency_contact_name,
			emergency_contact_number = EXCLUDED.emergency_contact_number,
			primary_physician = EXCLUDED.primary_physician,
			insurance_provider = EXCLUDED.insurance_provider,
			insurance_policy_number = EXCLUDED.insurance_policy_number,
			allergies = EXCLUDED.allergies,
			current_medication = EXCLUDED.current_medication,
			family_medical_history = EXCLUDED.family_medical_history,
			past_medical_history = EXCLUDED.past_medical_history,
			identification_type = EXCLUDED.identification_type,
			identification_number = EXCLUDED.identification_number,
			identification_document_id = EXCLUDED.identification_document_id,
			treatment_consent = EXCLUDED.treatment_consent,
			disclosure_consent = EXCLUDED.disclosure_consent,
			privacy_consent = EXCLUDED.privacy_consent,
			updated_at = now()
		RETURNING `+patientColumns+`
	`,
		id, p.UserID, p.Name, p.Email, p.Phone,
		p.BirthDate, p.Gender, p.Address, p.Occupation,
		p.EmergencyContactName, p.EmergencyContactNumber,
		p.PrimaryPhysician, p.InsuranceProvider, p.InsurancePolicyNumber,
		p.Allergies, p.CurrentMedication, p.FamilyMedicalHistory, p.PastMedicalHistory,
		p.IdentificationType, p.IdentificationNumber, p.IdentificationDocumentID,
		p.TreatmentConsent, p.DisclosureConsent, p.PrivacyConsent,
	)

	return scanPatient(row)
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE user_id = $1
	`, userID)
	return scanPatient(row)
}
