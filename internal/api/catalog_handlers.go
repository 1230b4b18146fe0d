package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/catalog"
)

// Specialties

func createSpecialtyHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NameRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		s, err := svc.CreateSpecialty(r.Context(), req.Name)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSpecialtyResponse(*s))
	}
}

func listSpecialtiesHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListSpecialties(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(list, toSpecialtyResponse))
	}
}

func getSpecialtyHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		s, err := svc.GetSpecialty(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSpecialtyResponse(*s))
	}
}

// Insurance plans

func createPlanHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NameRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.CreatePlan(r.Context(), req.Name)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPlanResponse(*p))
	}
}

func listPlansHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPlans(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(list, toPlanResponse))
	}
}

func getPlanHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		p, err := svc.GetPlan(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanResponse(*p))
	}
}

func deletePlanHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		if err := svc.DeletePlan(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Doctors

func createDoctorHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDoctorRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		ids, ok := parseIDs(w, "specialty_id", req.SpecialtyIDs)
		if !ok {
			return
		}

		d, err := svc.CreateDoctor(r.Context(), req.Name, ids)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDoctorResponse(*d))
	}
}

func listDoctorsHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListDoctors(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(list, toDoctorResponse))
	}
}

func getDoctorHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		d, err := svc.GetDoctor(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponse(*d))
	}
}

func setDoctorSpecialtiesHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		var req SetSpecialtiesRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		ids, ok := parseIDs(w, "specialty_id", req.SpecialtyIDs)
		if !ok {
			return
		}

		d, err := svc.SetDoctorSpecialties(r.Context(), id, ids)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponse(*d))
	}
}

func deleteDoctorHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteDoctor(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Patients

func createPatientHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		planID, ok := parseID(w, "insurance_plan_id", req.InsurancePlanID)
		if !ok {
			return
		}

		p, err := svc.CreatePatient(r.Context(), catalog.PatientInput{
			Name:            req.Name,
			Email:           req.Email,
			Phone:           req.Phone,
			InsurancePlanID: planID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPatientResponse(*p))
	}
}

func listPatientsHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPatients(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(list, toPatientResponse))
	}
}

func getPatientHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		p, err := svc.GetPatient(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(*p))
	}
}

func updatePatientHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		var req UpdatePatientRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		upd := catalog.PatientUpdate{Name: req.Name, Email: req.Email, Phone: req.Phone}
		if req.InsurancePlanID != nil {
			planID, err := uuid.Parse(strings.TrimSpace(*req.InsurancePlanID))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_insurance_plan_id", "insurance_plan_id must be a valid UUID")
				return
			}
			upd.InsurancePlanID = &planID
		}

		p, err := svc.UpdatePatient(r.Context(), id, upd)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(*p))
	}
}

func deletePatientHandler(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		if err := svc.DeletePatient(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
