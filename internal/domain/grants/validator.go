package grants

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/domain/pets"
)

// PetRegistry es la vista de pets que necesita el validador
// (la implementa *pets.Service; interface acá para no acoplar de más).
type PetRegistry interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
	AddOwner(ctx context.Context, petID, userID string) (pets.Pet, error)
}

// RedeemOutcome describe el efecto de redimir un share token,
// que depende del rol de quien lo canjea.
type RedeemOutcome string

const (
	OutcomeCoOwner   RedeemOutcome = "co_owner"
	OutcomeVetAccess RedeemOutcome = "vet_access"
)

// Validator consume grants: chequea validez y ejecuta la transición
// (marcar usado, extender ownership, crear vet access) de forma atómica.
type Validator struct {
	store  Store
	pets   PetRegistry
	issuer *Issuer

	now func() time.Time
}

func NewValidator(store Store, petsReg PetRegistry, issuer *Issuer) *Validator {
	return &Validator{
		store:  store,
		pets:   petsReg,
		issuer: issuer,
		now:    time.Now,
	}
}

// RedeemShareToken canjea un share token. El mismo token sirve dos
// semánticas según el rol del caller: un owner gana co-ownership,
// una clínica gana un VetPetAccess de 10 minutos (granted_by=qr).
// Un token consumido pero no expirado falla con el MISMO mensaje que
// uno expirado; las dos causas no se distinguen hacia afuera.
func (v *Validator) RedeemShareToken(ctx context.Context, tokenValue string, actor identity.Identity) (pets.Pet, RedeemOutcome, error) {
	tokenValue = strings.TrimSpace(tokenValue)
	if tokenValue == "" {
		return pets.Pet{}, "", ErrInvalidInput
	}
	if strings.TrimSpace(actor.ID) == "" {
		return pets.Pet{}, "", ErrForbidden
	}
	// Un rol sin semántica de canje se rechaza ANTES del CAS: el token
	// sigue vivo para quien sí pueda usarlo.
	if !actor.CanOwnPets() && !actor.CanAccessClinicFlows() {
		return pets.Pet{}, "", ErrForbidden
	}

	t, err := v.store.GetToken(ctx, TokenKindShare, tokenValue)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return pets.Pet{}, "", ErrNotFound
		}
		return pets.Pet{}, "", err
	}
	if !t.IsValid(v.now()) {
		return pets.Pet{}, "", ErrExpiredOrUsed
	}

	// Consumir primero: el CAS decide el ganador si hay carrera.
	if err := v.store.ConsumeToken(ctx, TokenKindShare, tokenValue); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pets.Pet{}, "", ErrNotFound
		}
		return pets.Pet{}, "", ErrExpiredOrUsed
	}

	if actor.CanOwnPets() {
		p, err := v.pets.AddOwner(ctx, t.PetID, actor.ID)
		if err != nil {
			return pets.Pet{}, "", err
		}
		return p, OutcomeCoOwner, nil
	}

	// Clínica: abre la ventana de acceso en vez de sumar un dueño.
	if _, err := v.issuer.GrantVetAccess(ctx, actor.ID, t.PetID, GrantedByQR); err != nil {
		return pets.Pet{}, "", err
	}
	p, err := v.pets.GetByID(ctx, t.PetID)
	if err != nil {
		return pets.Pet{}, "", err
	}
	return p, OutcomeVetAccess, nil
}

// RedeemVetToken canjea un vet access token y deja al caller en el flujo
// de carga de examen de esa mascota. Los owners no pueden usar vet links.
func (v *Validator) RedeemVetToken(ctx context.Context, tokenValue string, actor identity.Identity) (pets.Pet, error) {
	tokenValue = strings.TrimSpace(tokenValue)
	if tokenValue == "" {
		return pets.Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(actor.ID) == "" || !actor.CanAccessClinicFlows() {
		return pets.Pet{}, ErrForbidden
	}

	t, err := v.store.GetToken(ctx, TokenKindVet, tokenValue)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return pets.Pet{}, ErrNotFound
		}
		return pets.Pet{}, err
	}
	if !t.IsValid(v.now()) {
		return pets.Pet{}, ErrExpiredOrUsed
	}

	if err := v.store.ConsumeToken(ctx, TokenKindVet, tokenValue); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pets.Pet{}, ErrNotFound
		}
		return pets.Pet{}, ErrExpiredOrUsed
	}

	// El fast-path también abre la ventana de acceso: sin esto la clínica
	// no podría cargar el examen al que el token la redirige.
	if _, err := v.issuer.GrantVetAccess(ctx, actor.ID, t.PetID, GrantedByQR); err != nil {
		return pets.Pet{}, err
	}

	return v.pets.GetByID(ctx, t.PetID)
}

// VerifyAccessCode resuelve un código vigente a su mascota y upsertea un
// VetPetAccess de 10 minutos (granted_by=code) para la clínica actuante.
// Un código inexistente y uno expirado-y-borrado son indistinguibles:
// ambos devuelven ErrInvalidCode.
func (v *Validator) VerifyAccessCode(ctx context.Context, code string, actor identity.Identity) (pets.Pet, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return pets.Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(actor.ID) == "" || !actor.CanAccessClinicFlows() {
		return pets.Pet{}, ErrForbidden
	}

	c, err := v.store.FindValidCode(ctx, code, v.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return pets.Pet{}, ErrInvalidCode
		}
		return pets.Pet{}, err
	}

	if _, err := v.issuer.GrantVetAccess(ctx, actor.ID, c.PetID, GrantedByCode); err != nil {
		return pets.Pet{}, err
	}

	return v.pets.GetByID(ctx, c.PetID)
}

// HasActiveAccess indica si la clínica tiene un vet-pet access vigente.
// Lo usan pets y records para autorizar lecturas/escrituras de clínica.
func (v *Validator) HasActiveAccess(ctx context.Context, vetUserID, petID string) (bool, error) {
	vetUserID = strings.TrimSpace(vetUserID)
	petID = strings.TrimSpace(petID)
	if vetUserID == "" || petID == "" {
		return false, nil
	}

	a, err := v.store.GetVetAccess(ctx, vetUserID, petID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return a.IsActive(v.now()), nil
}
