package grants

import (
	"context"
	"time"
)

// Store persiste los grants. Los métodos de consumo son atómicos
// (compare-and-set): dos redenciones concurrentes del mismo token
// no pueden ganar las dos.
type Store interface {
	// GetCode devuelve el código de la mascota, vigente o no.
	// El issuer decide si reutiliza o regenera.
	GetCode(ctx context.Context, petID string) (AccessCode, error)

	// CreateCode persiste un código nuevo. Devuelve ErrCodeTaken si otra
	// mascota tiene el mismo código vigente a c.CreatedAt (invariante de
	// unicidad entre códigos no expirados).
	CreateCode(ctx context.Context, c AccessCode) error

	DeleteCode(ctx context.Context, petID string) error

	// FindValidCode resuelve un código vigente a su AccessCode.
	// Los códigos expirados no matchean aunque sigan en la tabla.
	FindValidCode(ctx context.Context, code string, now time.Time) (AccessCode, error)

	CreateToken(ctx context.Context, t Token) error
	GetToken(ctx context.Context, kind TokenKind, value string) (Token, error)

	// ConsumeToken marca used=true solo si estaba en false.
	// Devuelve ErrExpiredOrUsed si ya estaba consumido, ErrNotFound si no existe.
	ConsumeToken(ctx context.Context, kind TokenKind, value string) error

	// UpsertVetAccess reemplaza el grant existente para (vet, pet).
	UpsertVetAccess(ctx context.Context, a VetPetAccess) error
	GetVetAccess(ctx context.Context, vetUserID, petID string) (VetPetAccess, error)

	// PurgeExpiredUnused borra tokens con used=false creados antes de
	// olderThan, hasta limit filas por llamada. Devuelve cuántas borró;
	// el job de limpieza llama en loop hasta agotar.
	PurgeExpiredUnused(ctx context.Context, kind TokenKind, olderThan time.Time, limit int) (int, error)

	// DeleteByPet borra todos los grants de la mascota (cascade).
	DeleteByPet(ctx context.Context, petID string) error
}
