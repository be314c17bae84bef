package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/document"
	"github.com/careloop/patient-intake/internal/patient"
	"github.com/careloop/patient-intake/internal/validate"
)

// createUserHandler handles the intake form: minimal identity in, a user and
// the register-page navigation target out. A duplicate email silently reuses
// the existing identity, so the response is the same either way.
func createUserHandler(svc *patient.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		u, err := svc.CreateUser(r.Context(), patient.CreateUserInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		resp := CreateUserResponse{
			User:     toUserResponse(u),
			Redirect: fmt.Sprintf("/patients/%s/register", u.ID),
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

// registerPageHandler returns the data the register page renders: the user
// being enriched.
func registerPageHandler(svc *patient.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
			return
		}

		u, err := svc.GetUser(r.Context(), userID)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// registerPatientHandler accepts the registration form either as JSON or as
// multipart form data carrying the optional identification document. The
// document is stored first so its reference lands on the patient record.
func registerPatientHandler(svc *patient.Service, docs document.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
			return
		}

		var req RegisterPatientRequest
		var docUpload *upload

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			req, docUpload, err = parseRegisterMultipart(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
				return
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
		}

		in, err := registerInputFromRequest(req)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		if docUpload != nil {
			doc, err := docs.Put(r.Context(), docUpload.fileName, docUpload.contentType, docUpload.data)
			if err != nil {
				handleDomainError(w, r, log, err)
				return
			}
			in.IdentificationDocumentID = &doc.ID
		}

		p, err := svc.Register(r.Context(), userID, in)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		resp := RegisterPatientResponse{
			Patient:  toPatientResponse(p),
			Redirect: fmt.Sprintf("/patients/%s/new-appointment", userID),
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

type upload struct {
	fileName    string
	contentType string
	data        []byte
}

func parseRegisterMultipart(r *http.Request) (RegisterPatientRequest, *upload, error) {
	if err := r.ParseMultipartForm(document.MaxFileSize + 1024*1024); err != nil {
		return RegisterPatientRequest{}, nil, fmt.Errorf("could not parse multipart form: %w", err)
	}

	req := RegisterPatientRequest{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),

		BirthDate:              r.FormValue("birthDate"),
		Gender:                 r.FormValue("gender"),
		Address:                r.FormValue("address"),
		Occupation:             r.FormValue("occupation"),
		EmergencyContactName:   r.FormValue("emergencyContactName"),
		EmergencyContactNumber: r.FormValue("emergencyContactNumber"),
		PrimaryPhysician:       r.FormValue("primaryPhysician"),
		InsuranceProvider:      r.FormValue("insuranceProvider"),
		InsurancePolicyNumber:  r.FormValue("insurancePolicyNumber"),

		Allergies:            r.FormValue("allergies"),
		CurrentMedication:    r.FormValue("currentMedication"),
		FamilyMedicalHistory: r.FormValue("familyMedicalHistory"),
		PastMedicalHistory:   r.FormValue("pastMedicalHistory"),

		IdentificationType:   r.FormValue("identificationType"),
		IdentificationNumber: r.FormValue("identificationNumber"),

		TreatmentConsent:  r.FormValue("treatmentConsent") == "true",
		DisclosureConsent: r.FormValue("disclosureConsent") == "true",
		PrivacyConsent:    r.FormValue("privacyConsent") == "true",
	}

	file, header, err := r.FormFile("identificationDocument")
	if err != nil {
		if err == http.ErrMissingFile {
			return req, nil, nil
		}
		return RegisterPatientRequest{}, nil, fmt.Errorf("could not read identification document: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return RegisterPatientRequest{}, nil, fmt.Errorf("could not read identification document: %w", err)
	}

	return req, &upload{
		fileName:    header.Filename,
		contentType: header.Header.Get("Content-Type"),
		data:        data,
	}, nil
}

func registerInputFromRequest(req RegisterPatientRequest) (patient.RegisterInput, error) {
	in := patient.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,

		Gender:                 patient.Gender(req.Gender),
		Address:                req.Address,
		Occupation:             req.Occupation,
		EmergencyContactName:   req.EmergencyContactName,
		EmergencyContactNumber: req.EmergencyContactNumber,
		PrimaryPhysician:       req.PrimaryPhysician,
		InsuranceProvider:      req.InsuranceProvider,
		InsurancePolicyNumber:  req.InsurancePolicyNumber,

		Allergies:            req.Allergies,
		CurrentMedication:    req.CurrentMedication,
		FamilyMedicalHistory: req.FamilyMedicalHistory,
		PastMedicalHistory:   req.PastMedicalHistory,

		IdentificationType:   req.IdentificationType,
		IdentificationNumber: req.IdentificationNumber,

		TreatmentConsent:  req.TreatmentConsent,
		DisclosureConsent: req.DisclosureConsent,
		PrivacyConsent:    req.PrivacyConsent,
	}

	if req.BirthDate != "" {
		bd, err := parseDate(req.BirthDate)
		if err != nil {
			v := validate.NewError()
			v.Add("birthDate", "must be a valid date (YYYY-MM-DD or RFC 3339)")
			return patient.RegisterInput{}, v
		}
		in.BirthDate = bd
	}

	return in, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
