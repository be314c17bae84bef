package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/appointment"
	"github.com/careloop/patient-intake/internal/patient"
	"github.com/careloop/patient-intake/internal/roster"
	"github.com/careloop/patient-intake/internal/validate"
)

// newAppointmentPageHandler returns what the booking page needs: the patient
// being booked for and the physician roster.
func newAppointmentPageHandler(svc *patient.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
			return
		}

		p, err := svc.GetPatientByUser(r.Context(), userID)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"patient": toPatientResponse(p),
			"doctors": roster.Doctors(),
		})
	}
}

func createAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patientId must be a valid UUID")
			return
		}

		schedule, err := parseSchedule(req.Schedule)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		appt, err := svc.Create(r.Context(), appointment.Submission{
			UserID:           userID,
			PatientID:        patientID,
			PrimaryPhysician: req.PrimaryPhysician,
			Schedule:         schedule,
			Reason:           req.Reason,
			Note:             req.Note,
		})
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		resp := CreateAppointmentResponse{
			Appointment: toAppointmentResponse(appt),
			Redirect: fmt.Sprintf(
				"/patients/%s/new-appointment/success?appointmentId=%s",
				userID, appt.ID,
			),
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

// listAppointmentsHandler serves a patient's appointment history, newest
// schedule first. limit and offset are optional; the service applies its
// defaults and caps.
func listAppointmentsHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(r.URL.Query().Get("patientId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patientId must be a valid UUID")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		appts, err := svc.ListByPatient(r.Context(), patientID, limit, offset)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		resp := ListAppointmentsResponse{Appointments: make([]AppointmentResponse, 0, len(appts))}
		for i := range appts {
			resp.Appointments = append(resp.Appointments, toAppointmentResponse(&appts[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// appointmentSuccessHandler backs the confirmation view reached after a
// create: the appointment id arrives as a query parameter.
func appointmentSuccessHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.URL.Query().Get("appointmentId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointmentId must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func scheduleAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req ScheduleAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		schedule, err := parseSchedule(req.Schedule)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		appt, err := svc.Schedule(r.Context(), id, appointment.Submission{
			PrimaryPhysician: req.PrimaryPhysician,
			Schedule:         schedule,
		})
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req CancelAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Cancel(r.Context(), id, req.CancellationReason)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// parseSchedule accepts an RFC 3339 timestamp. An empty value passes through
// as the zero time so the variant requirements decide whether it is missing.
func parseSchedule(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		v := validate.NewError()
		v.Add("schedule", "must be a valid RFC 3339 date-time")
		return time.Time{}, v
	}
	return t, nil
}
