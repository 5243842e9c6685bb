package grants

import "time"

const (
	// CodeLifetime es la ventana de validez de un access code.
	CodeLifetime = 240 * time.Minute

	// TokenLifetime es la ventana de validez de share/vet tokens.
	TokenLifetime = 10 * time.Minute

	// AccessLifetime es la ventana de un vet-pet access grant.
	AccessLifetime = 10 * time.Minute
)

// AccessCode es el código numérico de 6 dígitos que una clínica puede
// canjear para ver el registro de una mascota. A lo sumo un código
// vigente por mascota; los códigos vigentes son únicos entre mascotas.
type AccessCode struct {
	Code  string
	PetID string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsValid indica si el código sigue vigente en el instante now.
func (c AccessCode) IsValid(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// TokenKind distingue los dos tipos de token opaco de un solo uso.
// @Enum share, vet
type TokenKind string

const (
	// TokenKindShare transfiere/extiende ownership vía link/QR compartido.
	TokenKindShare TokenKind = "share"
	// TokenKindVet habilita el fast-path de entrada a examen para clínicas.
	TokenKindVet TokenKind = "vet"
)

// Token es un token opaco (UUID) de un solo uso ligado a una mascota.
// Validez: !used && (now - created_at) < TokenLifetime. Consumirlo es permanente.
type Token struct {
	Value string
	PetID string
	Kind  TokenKind

	CreatedAt time.Time
	Used      bool
}

// IsValid indica si el token puede canjearse en el instante now.
func (t Token) IsValid(now time.Time) bool {
	return !t.Used && now.Sub(t.CreatedAt) < TokenLifetime
}

// GrantedBy registra la procedencia de un vet-pet access grant.
// @Enum code, qr
type GrantedBy string

const (
	GrantedByCode GrantedBy = "code"
	GrantedByQR   GrantedBy = "qr"
)

// VetPetAccess permite a una clínica ver/editar los registros de una
// mascota por una ventana acotada. Upsert por (vet, pet): un nuevo grant
// reemplaza el anterior en vez de acumular filas.
type VetPetAccess struct {
	VetUserID string
	PetID     string

	GrantedBy GrantedBy

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsActive indica si el grant sigue activo en el instante now.
func (a VetPetAccess) IsActive(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}
