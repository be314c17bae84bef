package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/admin"
	"github.com/careloop/patient-intake/internal/appointment"
)

const accessKeyCookie = "accessKey"

// verifyPasskeyHandler checks an entered passkey against the configured
// secret. On success the client gets the token both in the body and as a
// cookie, so a reload stays unlocked without re-prompting. No lockout or
// backoff: failed attempts are only logged.
func verifyPasskeyHandler(gate *admin.Gate, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyPasskeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		token, err := gate.Verify(req.Passkey)
		if err != nil {
			if errors.Is(err, admin.ErrInvalidPasskey) {
				log.Warn().Str("request_id", GetRequestID(r.Context())).Msg("admin passkey attempt failed")
				writeError(w, http.StatusUnauthorized, "invalid_passkey", "invalid passkey")
				return
			}
			handleDomainError(w, r, log, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:  accessKeyCookie,
			Value: token,
			Path:  "/",
		})

		writeJSON(w, http.StatusOK, VerifyPasskeyResponse{AccessKey: token})
	}
}

// adminDashboardHandler serves the gated admin view: status counts plus the
// most recent appointment requests.
func adminDashboardHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, recent, err := svc.Dashboard(r.Context(), 10)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		resp := DashboardResponse{
			Pending:   counts.Pending,
			Scheduled: counts.Scheduled,
			Cancelled: counts.Cancelled,
			Recent:    make([]AppointmentResponse, 0, len(recent)),
		}
		for i := range recent {
			resp.Recent = append(resp.Recent, toAppointmentResponse(&recent[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
