package pets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-medical-records/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// ClinicAccess responde si una clínica tiene acceso vigente a la mascota.
// Lo implementa el validador de grants; interface acá para evitar ciclos.
type ClinicAccess interface {
	HasActiveAccess(ctx context.Context, vetUserID, petID string) (bool, error)
}

func RegisterRoutes(r chi.Router, svc *Service, clinicAccess ClinicAccess) {
	r.Route("/pets", func(rr chi.Router) {
		rr.Post("/", createPetHandler(svc))
		rr.Get("/", listPetsHandler(svc))
		rr.Get("/{petID}", getPetHandler(svc, clinicAccess))
		rr.Delete("/{petID}", deletePetHandler(svc))
		rr.Post("/{petID}/owners/{userID}/approve", approvePendingOwnerHandler(svc))
	})
}

type createPetRequest struct {
	Name      string `json:"name"`
	Species   string `json:"species"`
	Breed     string `json:"breed"`
	Sex       string `json:"sex"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD opcional
	Microchip string `json:"microchip"`
	Notes     string `json:"notes"`
}

type petResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Species       string     `json:"species"`
	Breed         string     `json:"breed,omitempty"`
	Sex           string     `json:"sex,omitempty"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Microchip     string     `json:"microchip,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Owners        []string   `json:"owners"`
	PendingOwners []string   `json:"pending_owners,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description Crea una mascota; el usuario autenticado queda como primer dueño.
// @Tags pets
// @Accept json
// @Produce json
// @Success 201 {object} petResponse
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var birthDate *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(req.BirthDate))
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			birthDate = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			BirthDate: birthDate,
			Microchip: req.Microchip,
			Notes:     req.Notes,
		})
		if err != nil {
			writePetError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas del usuario
// @Tags pets
// @Produce json
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writePetError(w, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Ver mascota
// @Description Visible para dueños, o para clínicas con vet access vigente.
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, clinicAccess ClinicAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		p, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			writePetError(w, err)
			return
		}

		if !p.HasOwner(claims.UserID) {
			allowed := false
			if clinicAccess != nil {
				allowed, err = clinicAccess.HasActiveAccess(r.Context(), claims.UserID, petID)
				if err != nil {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
			}
			if !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Solo un dueño actual. Arrastra grants y registros.
// @Tags pets
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), claims.UserID); err != nil {
			writePetError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// approvePendingOwnerHandler godoc
// @Summary Aprobar co-dueño pendiente
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param userID path string true "ID del usuario pendiente"
// @Success 200 {object} petResponse
// @Router /pets/{petID}/owners/{userID}/approve [post]
func approvePendingOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.ApprovePendingOwner(r.Context(), chi.URLParam(r, "petID"), claims.UserID, chi.URLParam(r, "userID"))
		if err != nil {
			writePetError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:            p.ID,
		Name:          p.Name,
		Species:       string(p.Species),
		Breed:         p.Breed,
		Sex:           string(p.Sex),
		BirthDate:     p.BirthDate,
		Microchip:     p.Microchip,
		Notes:         p.Notes,
		Owners:        p.Owners,
		PendingOwners: p.PendingOwners,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func writePetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
