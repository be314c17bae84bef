package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/patient-intake/internal/appointment"
	"github.com/careloop/patient-intake/internal/patient"
)

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

// CreateUserResponse carries the navigation target for the next step of the
// flow alongside the created (or reused) user.
type CreateUserResponse struct {
	User     UserResponse `json:"user"`
	Redirect string       `json:"redirect"`
}

type RegisterPatientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	BirthDate              string `json:"birthDate"`
	Gender                 string `json:"gender"`
	Address                string `json:"address"`
	Occupation             string `json:"occupation"`
	EmergencyContactName   string `json:"emergencyContactName"`
	EmergencyContactNumber string `json:"emergencyContactNumber"`
	PrimaryPhysician       string `json:"primaryPhysician"`
	InsuranceProvider      string `json:"insuranceProvider"`
	InsurancePolicyNumber  string `json:"insurancePolicyNumber"`

	Allergies            string `json:"allergies,omitempty"`
	CurrentMedication    string `json:"currentMedication,omitempty"`
	FamilyMedicalHistory string `json:"familyMedicalHistory,omitempty"`
	PastMedicalHistory   string `json:"pastMedicalHistory,omitempty"`

	IdentificationType   string `json:"identificationType,omitempty"`
	IdentificationNumber string `json:"identificationNumber,omitempty"`

	TreatmentConsent  bool `json:"treatmentConsent"`
	DisclosureConsent bool `json:"disclosureConsent"`
	PrivacyConsent    bool `json:"privacyConsent"`
}

type PatientResponse struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`

	BirthDate              string `json:"birthDate"`
	Gender                 string `json:"gender"`
	Address                string `json:"address"`
	Occupation             string `json:"occupation"`
	EmergencyContactName   string `json:"emergencyContactName"`
	EmergencyContactNumber string `json:"emergencyContactNumber"`
	PrimaryPhysician       string `json:"primaryPhysician"`
	InsuranceProvider      string `json:"insuranceProvider"`
	InsurancePolicyNumber  string `json:"insurancePolicyNumber"`

	Allergies            *string `json:"allergies,omitempty"`
	CurrentMedication    *string `json:"currentMedication,omitempty"`
	FamilyMedicalHistory *string `json:"familyMedicalHistory,omitempty"`
	PastMedicalHistory   *string `json:"pastMedicalHistory,omitempty"`

	IdentificationType       *string    `json:"identificationType,omitempty"`
	IdentificationNumber     *string    `json:"identificationNumber,omitempty"`
	IdentificationDocumentID *uuid.UUID `json:"identificationDocumentId,omitempty"`

	TreatmentConsent  bool `json:"treatmentConsent"`
	DisclosureConsent bool `json:"disclosureConsent"`
	PrivacyConsent    bool `json:"privacyConsent"`
}

type RegisterPatientResponse struct {
	Patient  PatientResponse `json:"patient"`
	Redirect string          `json:"redirect"`
}

type CreateAppointmentRequest struct {
	UserID           string `json:"userId"`
	PatientID        string `json:"patientId"`
	PrimaryPhysician string `json:"primaryPhysician"`
	Schedule         string `json:"schedule"`
	Reason           string `json:"reason"`
	Note             string `json:"note,omitempty"`
}

type ScheduleAppointmentRequest struct {
	PrimaryPhysician string `json:"primaryPhysician"`
	Schedule         string `json:"schedule"`
}

type CancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

type AppointmentResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	PatientID        uuid.UUID `json:"patientId"`
	PrimaryPhysician string    `json:"primaryPhysician"`
	Schedule         time.Time `json:"schedule"`
	Status           string    `json:"status"`

	Reason             string `json:"reason,omitempty"`
	Note               string `json:"note,omitempty"`
	CancellationReason string `json:"cancellationReason,omitempty"`
}

type CreateAppointmentResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	Redirect    string              `json:"redirect"`
}

type ListAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

type VerifyPasskeyRequest struct {
	Passkey string `json:"passkey"`
}

type VerifyPasskeyResponse struct {
	AccessKey string `json:"accessKey"`
}

type DashboardResponse struct {
	Pending   int64                 `json:"pending"`
	Scheduled int64                 `json:"scheduled"`
	Cancelled int64                 `json:"cancelled"`
	Recent    []AppointmentResponse `json:"recent"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Response mappers

func toUserResponse(u *patient.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}

func toPatientResponse(p *patient.Patient) PatientResponse {
	return PatientResponse{
		ID:     p.ID,
		UserID: p.UserID,
		Name:   p.Name,
		Email:  p.Email,
		Phone:  p.Phone,

		BirthDate:              p.BirthDate.Format("2006-01-02"),
		Gender:                 string(p.Gender),
		Address:                p.Address,
		Occupation:             p.Occupation,
		EmergencyContactName:   p.EmergencyContactName,
		EmergencyContactNumber: p.EmergencyContactNumber,
		PrimaryPhysician:       p.PrimaryPhysician,
		InsuranceProvider:      p.InsuranceProvider,
		InsurancePolicyNumber:  p.InsurancePolicyNumber,

		Allergies:            p.Allergies,
		CurrentMedication:    p.CurrentMedication,
		FamilyMedicalHistory: p.FamilyMedicalHistory,
		PastMedicalHistory:   p.PastMedicalHistory,

		IdentificationType:       p.IdentificationType,
		IdentificationNumber:     p.IdentificationNumber,
		IdentificationDocumentID: p.IdentificationDocumentID,

		TreatmentConsent:  p.TreatmentConsent,
		DisclosureConsent: p.DisclosureConsent,
		PrivacyConsent:    p.PrivacyConsent,
	}
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		PatientID:        a.PatientID,
		PrimaryPhysician: a.PrimaryPhysician,
		Schedule:         a.Schedule,
		Status:           string(a.Status),

		Reason:             a.Reason,
		Note:               a.Note,
		CancellationReason: a.CancellationReason,
	}
}

// Write helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
