package api

import (
	"net/http"
	"strings"

	"github.com/hackgods/medical-appointment-scheduling/internal/visit"
)

func recordVisitHandler(svc VisitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordVisitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		appointmentID, ok := parseID(w, "appointment_id", req.AppointmentID)
		if !ok {
			return
		}

		v, err := svc.Record(r.Context(), appointmentID, req.Notes)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVisitResponse(*v))
	}
}

func listVisitsHandler(svc VisitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		from, to, ok := parseRange(w, q)
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), visit.Filter{
			From:        from,
			To:          to,
			PatientName: strings.TrimSpace(q.Get("patient")),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(list, toVisitResponse))
	}
}
