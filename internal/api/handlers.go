package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notarly/backoffice/internal/appointment"
	"github.com/notarly/backoffice/internal/credential"
)

func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not list appointments")
			return
		}

		writeJSON(w, http.StatusOK, appts)
	}
}

func addAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if _, err := svc.Create(r.Context(), req.AppointmentDate, req.AppointmentTime); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not add appointment")
			return
		}

		writeText(w, http.StatusOK, "appointment has been added")
	}
}

func updateAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "appointmentId"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointmentId must be an integer")
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			if errors.Is(err, appointment.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", "no appointment with that id")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "could not update appointment")
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func deleteAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "appointmentId"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointmentId must be an integer")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, appointment.ErrAppointmentNotFound):
				writeError(w, http.StatusNotFound, "appointment_not_found", "no appointment with that id")
			case errors.Is(err, appointment.ErrDeleteInProgress):
				writeError(w, http.StatusConflict, "delete_in_progress", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", "could not delete appointment")
			}
			return
		}

		writeText(w, http.StatusOK, "appointment has been deleted")
	}
}

func credentialsHandler(verifier CredentialVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := verifier.Verify(r.Context(), req.Username, req.Password); err != nil {
			if errors.Is(err, credential.ErrInvalidCredentials) {
				// One body for wrong password and unknown user alike.
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "could not verify credentials")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Login Successful"})
	}
}
