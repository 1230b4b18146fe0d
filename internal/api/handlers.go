package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hackgods/medical-appointment-scheduling/internal/appointment"
	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
)

func listSlotsHandler(svc SchedulerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		specialtyID, ok := parseID(w, "specialty_id", q.Get("specialty_id"))
		if !ok {
			return
		}
		date, err := clock.ParseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		doctorID, ok := parseOptionalID(w, "doctor_id", q.Get("doctor_id"))
		if !ok {
			return
		}

		slots, err := svc.ListSlots(r.Context(), specialtyID, date, doctorID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(slots, toSlotResponse))
	}
}

func bookAppointmentHandler(svc SchedulerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		patientID, ok := parseID(w, "patient_id", req.PatientID)
		if !ok {
			return
		}
		planID, ok := parseID(w, "insurance_plan_id", req.InsurancePlanID)
		if !ok {
			return
		}
		specialtyID, ok := parseID(w, "specialty_id", req.SpecialtyID)
		if !ok {
			return
		}

		// An empty date_time is left zero and rejected by the scheduler.
		var at time.Time
		if strings.TrimSpace(req.DateTime) != "" {
			var err error
			at, err = clock.ParseDateTime(req.DateTime)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date_time", "date_time must be an ISO-8601 datetime")
				return
			}
		}

		appt, err := svc.Book(r.Context(), appointment.BookingRequest{
			PatientID:       patientID,
			InsurancePlanID: planID,
			SpecialtyID:     specialtyID,
			DateTime:        at,
			Status:          req.Status,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

func listAppointmentsHandler(svc SchedulerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		from, to, ok := parseRange(w, q)
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), appointment.ListFilter{
			From:        from,
			To:          to,
			PatientName: strings.TrimSpace(q.Get("patient")),
			Status:      q.Get("status"),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(list, toAppointmentResponse))
	}
}

func getAppointmentHandler(svc SchedulerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func changeStatusHandler(svc SchedulerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		var req ChangeStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		appt, err := svc.ChangeStatus(r.Context(), id, req.Status)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

// parseRange reads the optional from/to query bounds. A bare date in "to"
// covers the whole day.
func parseRange(w http.ResponseWriter, q url.Values) (from, to *time.Time, ok bool) {
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		t, err := clock.ParseDateTime(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be a date or datetime")
			return nil, nil, false
		}
		from = &t
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		t, err := clock.ParseDateTime(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to", "to must be a date or datetime")
			return nil, nil, false
		}
		if len(raw) == len(clock.DateLayout) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}
	return from, to, true
}
