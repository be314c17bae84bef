package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/roster"
	"github.com/careloop/patient-intake/internal/validate"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "patient").Logger(),
	}
}

type CreateUserInput struct {
	Name  string
	Email string
	Phone string
}

func (in CreateUserInput) Validate() error {
	v := validate.NewError()
	if !validate.Name(in.Name) {
		v.Add("name", "must be between 2 and 50 characters")
	}
	if !validate.Email(in.Email) {
		v.Add("email", "must be a valid email address")
	}
	if !validate.Phone(in.Phone) {
		v.Add("phone", "must be a valid phone number")
	}
	return v.Err()
}

// CreateUser creates the minimal first-contact record. If the email is
// already registered the existing user is looked up and reused so the intake
// flow continues with the same identity instead of failing.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.CreateUser(ctx, in.Name, in.Email, in.Phone)
	if err == nil {
		s.log.Info().Str("user_id", u.ID.String()).Msg("user created")
		return u, nil
	}

	if errors.Is(err, ErrEmailTaken) {
		existing, lookupErr := s.repo.GetUserByEmail(ctx, in.Email)
		if lookupErr != nil {
			return nil, fmt.Errorf("reuse existing user: %w", lookupErr)
		}
		s.log.Info().Str("user_id", existing.ID.String()).Msg("email already registered, reusing existing user")
		return existing, nil
	}

	return nil, fmt.Errorf("create user: %w", err)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetPatientByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *Service) GetPatientByUser(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetPatientByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get patient by user: %w", err)
	}
	return p, nil
}

type RegisterInput struct {
	Name  string
	Email string
	Phone string

	BirthDate              time.Time
	Gender                 Gender
	Address                string
	Occupation             string
	EmergencyContactName   string
	EmergencyContactNumber string
	PrimaryPhysician       string
	InsuranceProvider      string
	InsurancePolicyNumber  string

	Allergies            string
	CurrentMedication    string
	FamilyMedicalHistory string
	PastMedicalHistory   string

	IdentificationType       string
	IdentificationNumber     string
	IdentificationDocumentID *uuid.UUID

	TreatmentConsent  bool
	DisclosureConsent bool
	PrivacyConsent    bool
}

func (in RegisterInput) Validate() error {
	v := validate.NewError()
	if !validate.Name(in.Name) {
		v.Add("name", "must be between 2 and 50 characters")
	}
	if !validate.Email(in.Email) {
		v.Add("email", "must be a valid email address")
	}
	if !validate.Phone(in.Phone) {
		v.Add("phone", "must be a valid phone number")
	}
	if in.BirthDate.IsZero() {
		v.Add("birthDate", "is required")
	}
	switch in.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		v.Add("gender", "must be one of male, female, other")
	}
	if len(in.Address) < 5 || len(in.Address) > 500 {
		v.Add("address", "must be between 5 and 500 characters")
	}
	if len(in.Occupation) < 2 || len(in.Occupation) > 500 {
		v.Add("occupation", "must be between 2 and 500 characters")
	}
	if !validate.Name(in.EmergencyContactName) {
		v.Add("emergencyContactName", "must be between 2 and 50 characters")
	}
	if !validate.Phone(in.EmergencyContactNumber) {
		v.Add("emergencyContactNumber", "must be a valid phone number")
	}
	if !roster.IsKnown(in.PrimaryPhysician) {
		v.Add("primaryPhysician", "must be a physician from the roster")
	}
	if len(in.InsuranceProvider) < 2 || len(in.InsuranceProvider) > 50 {
		v.Add("insuranceProvider", "must be between 2 and 50 characters")
	}
	if len(in.InsurancePolicyNumber) < 2 || len(in.InsurancePolicyNumber) > 50 {
		v.Add("insurancePolicyNumber", "must be between 2 and 50 characters")
	}
	if in.IdentificationType != "" && !isIdentificationType(in.IdentificationType) {
		v.Add("identificationType", "is not a recognized identification type")
	}
	return v.Err()
}

func isIdentificationType(s string) bool {
	for _, t := range IdentificationTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Register enriches the user's record with the full registration details.
// Registration targets the same logical entity keyed by user id; submitting
// again updates the existing patient record.
func (s *Service) Register(ctx context.Context, userID uuid.UUID, in RegisterInput) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	p := &Patient{
		UserID:                 userID,
		Name:                   in.Name,
		Email:                  in.Email,
		Phone:                  in.Phone,
		BirthDate:              in.BirthDate,
		Gender:                 in.Gender,
		Address:                in.Address,
		Occupation:             in.Occupation,
		EmergencyContactName:   in.EmergencyContactName,
		EmergencyContactNumber: in.EmergencyContactNumber,
		PrimaryPhysician:       in.PrimaryPhysician,
		InsuranceProvider:      in.InsuranceProvider,
		InsurancePolicyNumber:  in.InsurancePolicyNumber,

		Allergies:            optional(in.Allergies),
		CurrentMedication:    optional(in.CurrentMedication),
		FamilyMedicalHistory: optional(in.FamilyMedicalHistory),
		PastMedicalHistory:   optional(in.PastMedicalHistory),

		IdentificationType:       optional(in.IdentificationType),
		IdentificationNumber:     optional(in.IdentificationNumber),
		IdentificationDocumentID: in.IdentificationDocumentID,

		TreatmentConsent:  in.TreatmentConsent,
		DisclosureConsent: in.DisclosureConsent,
		PrivacyConsent:    in.PrivacyConsent,
	}

	saved, err := s.repo.UpsertPatient(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("register patient: %w", err)
	}

	if !in.TreatmentConsent || !in.DisclosureConsent || !in.PrivacyConsent {
		// Consent capture, not consent enforcement: record and move on.
		s.log.Warn().Str("patient_id", saved.ID.String()).Msg("registration submitted with incomplete consent")
	}

	s.log.Info().
		Str("patient_id", saved.ID.String()).
		Str("user_id", userID.String()).
		Msg("patient registered")

	return saved, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
