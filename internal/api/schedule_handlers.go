package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/notarly/backoffice/internal/schedule"
)

// Reads return the stored document as-is.

func businessHoursHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.BusinessHours(r.Context())
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func blockedDatesHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.BlockedDates(r.Context())
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func blockedTimesHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.BlockedTimes(r.Context())
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func pendingAppointmentsHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.PendingAppointments(r.Context())
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// Mutations echo the resulting document so the front-end can re-render
// without a second fetch.

func updateHoursHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BusinessHourRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, err := svc.AppendBusinessHour(r.Context(), req.Day, req.Time)
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func deleteHoursHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BusinessHourRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, err := svc.RemoveBusinessHour(r.Context(), req.Day, req.Time)
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func updateBlockedDatesHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlockedDatesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, err := svc.AddBlockedDates(r.Context(), req.BlockedDates)
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func deleteSelectedDatesHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlockedDatesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, err := svc.RemoveBlockedDates(r.Context(), req.BlockedDates)
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func updateBlockedTimeHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlockedTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, err := svc.AddBlockedTime(r.Context(), schedule.TimeSlot{Date: req.Date, Time: req.Time, Buffer: req.Buffer})
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func deleteBlockedTimeHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlockedTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, err := svc.RemoveBlockedTime(r.Context(), schedule.TimeSlot{Date: req.Date, Time: req.Time, Buffer: req.Buffer})
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func updatePendingAppointmentsHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PendingAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, err := svc.EnqueuePending(r.Context(), schedule.PendingRequest{
			Name:          req.Name,
			Appointment:   req.Appointment,
			AppointmentID: req.AppointmentID,
		})
		if err != nil {
			if errors.Is(err, schedule.ErrAlreadyQueued) {
				writeJSON(w, http.StatusOK, MessageResponse{Message: "Appointment already exists"})
				return
			}
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func removePendingAppointmentHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RemovePendingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, err := svc.DequeuePending(r.Context(), req.AppointmentID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func handleScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrDayNotFound):
		writeError(w, http.StatusNotFound, "day_not_found", err.Error())
	case errors.Is(err, schedule.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "document changed while updating, please retry")
	case errors.Is(err, schedule.ErrBusy):
		writeError(w, http.StatusConflict, "busy", "document is being updated, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "could not access config document")
	}
}
