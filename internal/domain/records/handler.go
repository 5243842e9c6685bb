package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/middleware"
	"pet-medical-records/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/records", func(rr chi.Router) {
		rr.Post("/vaccinations", createVaccinationHandler(svc))
		rr.Get("/vaccinations", listVaccinationsHandler(svc))
		rr.Post("/medications", createMedicationHandler(svc))
		rr.Get("/medications", listMedicationsHandler(svc))
	})
}

type createVaccinationRequest struct {
	VaccineName string `json:"vaccine_name"`
	Batch       string `json:"batch"`
	ValidFrom   string `json:"valid_from"`  // YYYY-MM-DD opcional
	ValidUntil  string `json:"valid_until"` // YYYY-MM-DD
}

type createMedicationRequest struct {
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	ValidUntil     string `json:"valid_until"` // YYYY-MM-DD
}

type vaccinationResponse struct {
	ID          string     `json:"id"`
	PetID       string     `json:"pet_id"`
	VaccineName string     `json:"vaccine_name"`
	Batch       string     `json:"batch,omitempty"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  time.Time  `json:"valid_until"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

type medicationResponse struct {
	ID             string    `json:"id"`
	PetID          string    `json:"pet_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage,omitempty"`
	ValidUntil     time.Time `json:"valid_until"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

func actorFromClaims(c auth.Claims) identity.Identity {
	role := identity.Role(strings.TrimSpace(c.Role))
	if role == "" {
		role = identity.RoleOwner
	}
	return identity.Identity{ID: c.UserID, Role: role, Email: c.Email, Language: c.Language}
}

// createVaccinationHandler godoc
// @Summary Registrar vacunación
// @Description Crea una vacunación para la mascota. Requiere clínica con vet access vigente (vía código o QR).
// @Tags records
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 201 {object} vaccinationResponse
// @Router /pets/{petID}/records/vaccinations [post]
func createVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		validUntil, err := parseDate(req.ValidUntil)
		if err != nil {
			http.Error(w, "valid_until must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		var validFrom *time.Time
		if strings.TrimSpace(req.ValidFrom) != "" {
			t, err := parseDate(req.ValidFrom)
			if err != nil {
				http.Error(w, "valid_from must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			validFrom = &t
		}

		rec, err := svc.AddVaccination(r.Context(), actorFromClaims(claims), chi.URLParam(r, "petID"), VaccinationInput{
			VaccineName: req.VaccineName,
			Batch:       req.Batch,
			ValidFrom:   validFrom,
			ValidUntil:  validUntil,
		})
		if err != nil {
			writeRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toVaccinationResponse(rec))
	}
}

// createMedicationHandler godoc
// @Summary Registrar medicación
// @Description Crea una medicación para la mascota. Requiere clínica con vet access vigente.
// @Tags records
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 201 {object} medicationResponse
// @Router /pets/{petID}/records/medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		validUntil, err := parseDate(req.ValidUntil)
		if err != nil {
			http.Error(w, "valid_until must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		rec, err := svc.AddMedication(r.Context(), actorFromClaims(claims), chi.URLParam(r, "petID"), MedicationInput{
			MedicationName: req.MedicationName,
			Dosage:         req.Dosage,
			ValidUntil:     validUntil,
		})
		if err != nil {
			writeRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(rec))
	}
}

func listVaccinationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListVaccinations(r.Context(), actorFromClaims(claims), chi.URLParam(r, "petID"))
		if err != nil {
			writeRecordError(w, err)
			return
		}

		out := make([]vaccinationResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toVaccinationResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListMedications(r.Context(), actorFromClaims(claims), chi.URLParam(r, "petID"))
		if err != nil {
			writeRecordError(w, err)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toMedicationResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toVaccinationResponse(rec VaccinationRecord) vaccinationResponse {
	return vaccinationResponse{
		ID:          rec.ID,
		PetID:       rec.PetID,
		VaccineName: rec.VaccineName,
		Batch:       rec.Batch,
		ValidFrom:   rec.ValidFrom,
		ValidUntil:  rec.ValidUntil,
		CreatedBy:   rec.CreatedBy,
		CreatedAt:   rec.CreatedAt,
	}
}

func toMedicationResponse(rec MedicationRecord) medicationResponse {
	return medicationResponse{
		ID:             rec.ID,
		PetID:          rec.PetID,
		MedicationName: rec.MedicationName,
		Dosage:         rec.Dosage,
		ValidUntil:     rec.ValidUntil,
		CreatedBy:      rec.CreatedBy,
		CreatedAt:      rec.CreatedAt,
	}
}

func writeRecordError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
