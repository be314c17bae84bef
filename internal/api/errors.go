package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/appointment"
	"github.com/careloop/patient-intake/internal/document"
	"github.com/careloop/patient-intake/internal/patient"
	redisclient "github.com/careloop/patient-intake/internal/redis"
	"github.com/careloop/patient-intake/internal/validate"
)

// handleDomainError maps domain errors to HTTP responses. Unknown errors get
// a generic retryable message so a store failure never surfaces internals;
// the client keeps the user's field state and offers a retry.
func handleDomainError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var ve *validate.Error
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Details: "one or more fields are invalid",
			Fields:  ve.Fields,
		})
	case errors.Is(err, patient.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, patient.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, document.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "document_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrUnknownVariant):
		writeError(w, http.StatusBadRequest, "unknown_variant", err.Error())
	case errors.Is(err, redisclient.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "submission_in_flight", "this form is already being submitted, please wait")
	case errors.Is(err, document.ErrFileTooLarge),
		errors.Is(err, document.ErrInvalidContentType),
		errors.Is(err, document.ErrMissingFileName):
		writeError(w, http.StatusBadRequest, "invalid_document", err.Error())
	default:
		log.Error().Err(err).
			Str("request_id", GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong, please try again")
	}
}
