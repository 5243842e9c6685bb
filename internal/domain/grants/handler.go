package grants

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/middleware"
	"pet-medical-records/internal/platform/metrics"
	"pet-medical-records/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// PetOwnerLookup evita importar el paquete pets en los handlers de emisión.
type PetOwnerLookup interface {
	IsOwner(ctx context.Context, petID, userID string) (bool, error)
}

func RegisterRoutes(r chi.Router, issuer *Issuer, validator *Validator, petOwners PetOwnerLookup) {
	// Emisión: solo dueños de la mascota
	r.Route("/pets/{petID}/access", func(ar chi.Router) {
		ar.Post("/code", issueCodeHandler(issuer, petOwners))
		ar.Post("/share-token", issueShareTokenHandler(issuer, petOwners))
		ar.Post("/vet-token", issueVetTokenHandler(issuer, petOwners))
	})

	// Redención / verificación
	r.Post("/access/code/verify", verifyCodeHandler(validator))
	r.Post("/access/share/{token}", redeemShareHandler(validator))
	r.Post("/access/vet/{token}", redeemVetHandler(validator))
}

type codeResponse struct {
	Code      string    `json:"code"`
	PetID     string    `json:"pet_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	PetID     string    `json:"pet_id"`
	Kind      TokenKind `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

type verifyCodeRequest struct {
	Code string `json:"code"`
}

type petSummaryResponse struct {
	PetID   string   `json:"pet_id"`
	Name    string   `json:"name"`
	Species string   `json:"species"`
	Breed   string   `json:"breed"`
	Owners  []string `json:"owners"`
}

type redeemResponse struct {
	Outcome  RedeemOutcome      `json:"outcome"`
	Pet      petSummaryResponse `json:"pet"`
	Redirect string             `json:"redirect"`
}

func actorFromClaims(c auth.Claims) identity.Identity {
	role := identity.Role(strings.TrimSpace(c.Role))
	if role == "" {
		role = identity.RoleOwner
	}
	return identity.Identity{
		ID:       c.UserID,
		Role:     role,
		Email:    c.Email,
		Language: c.Language,
	}
}

// issueCodeHandler godoc
// @Summary Emitir (o reusar) access code
// @Description Devuelve el código vigente de la mascota o genera uno nuevo de 6 dígitos válido por 240 minutos. Idempotente mientras el código siga vigente. Solo dueños.
// @Tags access
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} codeResponse
// @Router /pets/{petID}/access/code [post]
func issueCodeHandler(issuer *Issuer, petOwners PetOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		isOwner, err := petOwners.IsOwner(r.Context(), petID, claims.UserID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if !isOwner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		c, err := issuer.IssueOrReuseCode(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		metrics.GrantsIssued.WithLabelValues("access_code").Inc()
		writeJSON(w, http.StatusOK, codeResponse{
			Code:      c.Code,
			PetID:     c.PetID,
			ExpiresAt: c.ExpiresAt,
		})
	}
}

// issueShareTokenHandler godoc
// @Summary Emitir share token (QR)
// @Description Crea un token de un solo uso, válido 10 minutos, para compartir la mascota. Siempre genera uno nuevo. Solo dueños.
// @Tags access
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 201 {object} tokenResponse
// @Router /pets/{petID}/access/share-token [post]
func issueShareTokenHandler(issuer *Issuer, petOwners PetOwnerLookup) http.HandlerFunc {
	return issueTokenHandler(petOwners, "share_token", func(ctx context.Context, petID string) (Token, error) {
		return issuer.IssueShareToken(ctx, petID)
	})
}

// issueVetTokenHandler godoc
// @Summary Emitir vet access token (QR)
// @Description Crea un token de un solo uso, válido 10 minutos, para el fast-path de clínica. Solo dueños.
// @Tags access
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 201 {object} tokenResponse
// @Router /pets/{petID}/access/vet-token [post]
func issueVetTokenHandler(issuer *Issuer, petOwners PetOwnerLookup) http.HandlerFunc {
	return issueTokenHandler(petOwners, "vet_token", func(ctx context.Context, petID string) (Token, error) {
		return issuer.IssueVetToken(ctx, petID)
	})
}

func issueTokenHandler(petOwners PetOwnerLookup, metric string, issue func(ctx context.Context, petID string) (Token, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		isOwner, err := petOwners.IsOwner(r.Context(), petID, claims.UserID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if !isOwner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		t, err := issue(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		metrics.GrantsIssued.WithLabelValues(metric).Inc()
		writeJSON(w, http.StatusCreated, tokenResponse{
			Token:     t.Value,
			PetID:     t.PetID,
			Kind:      t.Kind,
			ExpiresAt: t.CreatedAt.Add(TokenLifetime),
		})
	}
}

// verifyCodeHandler godoc
// @Summary Verificar access code
// @Description Resuelve un código vigente a su mascota y abre una ventana de acceso de 10 minutos para la clínica actuante. Falla con "invalid access code" sin distinguir inexistente de expirado.
// @Tags access
// @Accept json
// @Produce json
// @Success 200 {object} petSummaryResponse
// @Router /access/code/verify [post]
func verifyCodeHandler(validator *Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req verifyCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := validator.VerifyAccessCode(r.Context(), req.Code, actorFromClaims(claims))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrInvalidCode):
				metrics.GrantsRedeemed.WithLabelValues("access_code", "rejected").Inc()
				http.Error(w, err.Error(), http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		metrics.GrantsRedeemed.WithLabelValues("access_code", "ok").Inc()
		writeJSON(w, http.StatusOK, petSummaryResponse{
			PetID:   p.ID,
			Name:    p.Name,
			Species: string(p.Species),
			Breed:   p.Breed,
			Owners:  p.Owners,
		})
	}
}

// redeemShareHandler godoc
// @Summary Canjear share token
// @Description Un solo uso. Un owner gana co-ownership de la mascota; una clínica gana un vet access de 10 minutos. Token consumido o expirado: mismo mensaje, sin distinguir causa.
// @Tags access
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} redeemResponse
// @Router /access/share/{token} [post]
func redeemShareHandler(validator *Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		tokenValue := chi.URLParam(r, "token")
		p, outcome, err := validator.RedeemShareToken(r.Context(), tokenValue, actorFromClaims(claims))
		if err != nil {
			writeRedeemError(w, "share_token", err)
			return
		}

		redirect := "/pets/" + p.ID
		metrics.GrantsRedeemed.WithLabelValues("share_token", "ok").Inc()
		writeJSON(w, http.StatusOK, redeemResponse{
			Outcome:  outcome,
			Pet:      petSummaryResponse{PetID: p.ID, Name: p.Name, Species: string(p.Species), Breed: p.Breed, Owners: p.Owners},
			Redirect: redirect,
		})
	}
}

// redeemVetHandler godoc
// @Summary Canjear vet access token
// @Description Un solo uso, solo clínicas. Marca el token como usado, abre la ventana de acceso y redirige al flujo de carga de examen de la mascota.
// @Tags access
// @Produce json
// @Param token path string true "Vet access token"
// @Success 200 {object} redeemResponse
// @Router /access/vet/{token} [post]
func redeemVetHandler(validator *Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		tokenValue := chi.URLParam(r, "token")
		p, err := validator.RedeemVetToken(r.Context(), tokenValue, actorFromClaims(claims))
		if err != nil {
			writeRedeemError(w, "vet_token", err)
			return
		}

		metrics.GrantsRedeemed.WithLabelValues("vet_token", "ok").Inc()
		writeJSON(w, http.StatusOK, redeemResponse{
			Outcome:  OutcomeVetAccess,
			Pet:      petSummaryResponse{PetID: p.ID, Name: p.Name, Species: string(p.Species), Breed: p.Breed, Owners: p.Owners},
			Redirect: "/exams/new?source=pet&id=" + p.ID,
		})
	}
}

func writeRedeemError(w http.ResponseWriter, kind string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		metrics.GrantsRedeemed.WithLabelValues(kind, "forbidden").Inc()
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		metrics.GrantsRedeemed.WithLabelValues(kind, "rejected").Inc()
		http.Error(w, "invalid or expired token", http.StatusNotFound)
	case errors.Is(err, ErrExpiredOrUsed):
		metrics.GrantsRedeemed.WithLabelValues(kind, "rejected").Inc()
		http.Error(w, err.Error(), http.StatusGone)
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
