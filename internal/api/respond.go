package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/medical-appointment-scheduling/internal/apperr"
	"github.com/hackgods/medical-appointment-scheduling/internal/appointment"
	"github.com/hackgods/medical-appointment-scheduling/internal/availability"
	"github.com/hackgods/medical-appointment-scheduling/internal/catalog"
	"github.com/hackgods/medical-appointment-scheduling/internal/visit"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	return true
}

func urlID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// parseID parses a required UUID field and writes a 400 naming the field.
func parseID(w http.ResponseWriter, field, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+field, field+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalID returns nil for an empty value.
func parseOptionalID(w http.ResponseWriter, field, raw string) (*uuid.UUID, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	id, ok := parseID(w, field, raw)
	if !ok {
		return nil, false
	}
	return &id, true
}

func parseIDs(w http.ResponseWriter, field string, raw []string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, ok := parseID(w, field, s)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

var errorCodes = []struct {
	err  error
	code string
}{
	{appointment.ErrSlotBeingBooked, "slot_being_booked"},
	{availability.ErrWindowBeingDefined, "availability_being_defined"},
	{appointment.ErrSlotAlreadyBooked, "slot_already_booked"},
	{availability.ErrWindowOverlap, "availability_overlap"},
	{visit.ErrVisitAlreadyRecorded, "visit_already_recorded"},
	{catalog.ErrSpecialtyExists, "duplicate_name"},
	{catalog.ErrPlanExists, "duplicate_name"},
	{catalog.ErrPlanInUse, "in_use"},
	{catalog.ErrDoctorInUse, "in_use"},
	{catalog.ErrPatientInUse, "in_use"},
	{appointment.ErrPlanMismatch, "plan_mismatch"},
	{appointment.ErrNoMatchingWindow, "no_matching_availability"},
	{appointment.ErrInvalidStatus, "invalid_status"},
	{availability.ErrTimeOrder, "invalid_time_order"},
	{availability.ErrDoctorLacksSpecialty, "doctor_lacks_specialty"},
	{catalog.ErrUnknownSpecialty, "unknown_specialty"},
}

// writeServiceError maps a service error to a response by its kind. Errors
// of no known kind are logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch apperr.Kind(err) {
	case apperr.ErrNotFound:
		status = http.StatusNotFound
	case apperr.ErrInvalidInput:
		status = http.StatusBadRequest
	case apperr.ErrConflict:
		status = http.StatusConflict
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, status, "internal_error", "internal server error")
		return
	}

	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			writeError(w, status, c.code, err.Error())
			return
		}
	}

	code := "invalid_input"
	switch status {
	case http.StatusNotFound:
		code = strings.ReplaceAll(err.Error(), " ", "_")
	case http.StatusConflict:
		code = "conflict"
	}
	writeError(w, status, code, err.Error())
}
