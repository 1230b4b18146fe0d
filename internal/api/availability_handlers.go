package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hackgods/medical-appointment-scheduling/internal/availability"
	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
)

func defineAvailabilityHandler(svc AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DefineAvailabilityRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		doctorID, ok := parseID(w, "doctor_id", req.DoctorID)
		if !ok {
			return
		}
		specialtyID, ok := parseID(w, "specialty_id", req.SpecialtyID)
		if !ok {
			return
		}
		if req.DayOfWeek == nil {
			writeError(w, http.StatusBadRequest, "invalid_day_of_week", "day_of_week is required")
			return
		}
		start, err := clock.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "start_time must be HH:mm")
			return
		}
		end, err := clock.ParseTimeOfDay(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "end_time must be HH:mm")
			return
		}

		win, err := svc.Define(r.Context(), availability.WindowInput{
			DoctorID:    doctorID,
			SpecialtyID: specialtyID,
			DayOfWeek:   *req.DayOfWeek,
			StartTime:   start,
			EndTime:     end,
			SlotMinutes: req.SlotDurationMinutes,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAvailabilityResponse(*win))
	}
}

func listAvailabilityHandler(svc AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var f availability.Filter
		var ok bool
		if f.DoctorID, ok = parseOptionalID(w, "doctor_id", q.Get("doctor_id")); !ok {
			return
		}
		if f.SpecialtyID, ok = parseOptionalID(w, "specialty_id", q.Get("specialty_id")); !ok {
			return
		}
		if raw := strings.TrimSpace(q.Get("day_of_week")); raw != "" {
			day, err := strconv.Atoi(raw)
			if err != nil || day < 0 || day > 6 {
				writeError(w, http.StatusBadRequest, "invalid_day_of_week", "day_of_week must be between 0 and 6")
				return
			}
			f.DayOfWeek = &day
		}

		list, err := svc.List(r.Context(), f)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(list, toAvailabilityResponse))
	}
}

func removeAvailabilityHandler(svc AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		if err := svc.Remove(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
