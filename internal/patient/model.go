package patient

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// IdentificationTypes lists the accepted identification document kinds.
var IdentificationTypes = []string{
	"Birth Certificate",
	"Driver's License",
	"Medical Insurance Card/Policy",
	"Military ID Card",
	"National Identity Card",
	"Passport",
	"Resident Alien Card",
	"Social Security Card",
	"State ID Card",
	"Student ID Card",
	"Voter ID Card",
}

// User is the minimal first-contact record created from the intake form.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patient is the full registration record enriching a User. There is at most
// one Patient per User; registration upserts it rather than creating a
// second one.
type Patient struct {
	ID     uuid.UUID
	UserID uuid.UUID

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

	Allergies            *string
	CurrentMedication    *string
	FamilyMedicalHistory *string
	PastMedicalHistory   *string

	IdentificationType       *string
	IdentificationNumber     *string
	IdentificationDocumentID *uuid.UUID

	// Consent flags are captured as given; false values are recorded, not
	// rejected.
	TreatmentConsent  bool
	DisclosureConsent bool
	PrivacyConsent    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
