package grants

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxCodeAttempts acota el retry-on-collision del generador de códigos.
// Con ~900k valores posibles y pocos códigos vigentes a la vez, agotar
// los intentos indica un problema real, no mala suerte.
const maxCodeAttempts = 25

// Issuer implementa la política de emisión sobre el Store:
// códigos idempotentes con regeneración al expirar, tokens siempre nuevos,
// y vet access con semántica "el último grant gana y extiende la ventana".
type Issuer struct {
	store Store

	now      func() time.Time
	randCode func() string
}

func NewIssuer(store Store) *Issuer {
	return &Issuer{
		store: store,
		now:   time.Now,
		randCode: func() string {
			return fmt.Sprintf("%06d", rand.IntN(900000)+100000)
		},
	}
}

// IssueOrReuseCode devuelve el código vigente de la mascota si existe
// (sin efectos, para soportar llamadas repetidas tipo refresh de página);
// si el existente expiró lo borra y genera uno nuevo con ventana fresca.
func (i *Issuer) IssueOrReuseCode(ctx context.Context, petID string) (AccessCode, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return AccessCode{}, ErrInvalidInput
	}

	now := i.now()

	existing, err := i.store.GetCode(ctx, petID)
	switch {
	case err == nil:
		if existing.IsValid(now) {
			return existing, nil
		}
		if err := i.store.DeleteCode(ctx, petID); err != nil {
			return AccessCode{}, err
		}
	case errors.Is(err, ErrNotFound):
		// no hay código previo
	default:
		return AccessCode{}, err
	}

	// Generar con reintento: un código nunca debe coincidir con el código
	// vigente de otra mascota, porque la verificación resuelve code -> pet
	// por lookup y un duplicado la volvería ambigua.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		c := AccessCode{
			Code:      i.randCode(),
			PetID:     petID,
			CreatedAt: now,
			ExpiresAt: now.Add(CodeLifetime),
		}

		err := i.store.CreateCode(ctx, c)
		if errors.Is(err, ErrCodeTaken) {
			continue
		}
		if err != nil {
			return AccessCode{}, err
		}
		return c, nil
	}

	return AccessCode{}, fmt.Errorf("issue access code: %w after %d attempts", ErrCodeTaken, maxCodeAttempts)
}

// IssueShareToken crea siempre un token nuevo: pueden coexistir varios
// share links vigentes para la misma mascota.
func (i *Issuer) IssueShareToken(ctx context.Context, petID string) (Token, error) {
	return i.issueToken(ctx, petID, TokenKindShare)
}

// IssueVetToken crea siempre un token nuevo para el quick-access de clínica.
func (i *Issuer) IssueVetToken(ctx context.Context, petID string) (Token, error) {
	return i.issueToken(ctx, petID, TokenKindVet)
}

func (i *Issuer) issueToken(ctx context.Context, petID string, kind TokenKind) (Token, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Token{}, ErrInvalidInput
	}

	t := Token{
		Value:     uuid.NewString(),
		PetID:     petID,
		Kind:      kind,
		CreatedAt: i.now(),
		Used:      false,
	}

	if err := i.store.CreateToken(ctx, t); err != nil {
		return Token{}, err
	}
	return t, nil
}

// GrantVetAccess upsertea el grant (vet, pet) con expires_at = now + 10min,
// pisando cualquier grant previo para el par. Política deliberada:
// el grant más reciente gana y extiende la ventana, no se acumulan filas.
func (i *Issuer) GrantVetAccess(ctx context.Context, vetUserID, petID string, grantedBy GrantedBy) (VetPetAccess, error) {
	vetUserID = strings.TrimSpace(vetUserID)
	petID = strings.TrimSpace(petID)
	if vetUserID == "" || petID == "" {
		return VetPetAccess{}, ErrInvalidInput
	}

	now := i.now()
	a := VetPetAccess{
		VetUserID: vetUserID,
		PetID:     petID,
		GrantedBy: grantedBy,
		CreatedAt: now,
		ExpiresAt: now.Add(AccessLifetime),
	}

	if err := i.store.UpsertVetAccess(ctx, a); err != nil {
		return VetPetAccess{}, err
	}
	return a, nil
}
