package pets

import (
	"strings"
	"time"
)

// Species define las especies soportadas.
// @Enum dog, cat
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// ParseSpecies normaliza y valida la especie contra el enum.
func ParseSpecies(s string) (Species, bool) {
	switch Species(strings.ToLower(strings.TrimSpace(s))) {
	case SpeciesDog:
		return SpeciesDog, true
	case SpeciesCat:
		return SpeciesCat, true
	}
	return "", false
}

// ParseSex normaliza y valida el sexo. Vacío cae a unknown.
func ParseSex(s string) (Sex, bool) {
	v := Sex(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "":
		return SexUnknown, true
	case SexMale, SexFemale, SexUnknown:
		return v, true
	}
	return "", false
}

// Pet representa el perfil de una mascota registrada en el sistema.
// Una mascota puede tener varios dueños (co-ownership vía share tokens)
// y dueños pendientes a la espera de aprobación.
type Pet struct {
	ID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	BirthDate *time.Time
	Microchip string
	Notes     string

	Owners        []string // user IDs; set semántico, sin duplicados
	PendingOwners []string // user IDs a la espera de aprobación

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOwner indica si userID es dueño actual de la mascota.
func (p Pet) HasOwner(userID string) bool {
	for _, id := range p.Owners {
		if id == userID {
			return true
		}
	}
	return false
}

// HasPendingOwner indica si userID está pendiente de aprobación.
func (p Pet) HasPendingOwner(userID string) bool {
	for _, id := range p.PendingOwners {
		if id == userID {
			return true
		}
	}
	return false
}
