package identity

import "context"

// Role distingue los tipos de cuenta del sistema.
// Reemplaza el patrón "misma tabla + flag" por una variante explícita:
// el comportamiento por rol se resuelve con switch, no con herencia.
// @Enum owner, clinic, groomer, store
type Role string

const (
	RoleOwner   Role = "owner"
	RoleClinic  Role = "clinic"
	RoleGroomer Role = "groomer"
	RoleStore   Role = "store"
)

// Identity es la representación mínima de un usuario para el core:
// grants (ramas por rol en la redención) y scanner (email + idioma).
type Identity struct {
	ID       string
	Role     Role
	Email    string
	Name     string
	Language string // "en", "bg", etc. para el texto de la notificación
}

// CanOwnPets indica si el rol puede figurar como dueño de una mascota.
func (i Identity) CanOwnPets() bool {
	return i.Role == RoleOwner
}

// CanAccessClinicFlows indica si el rol puede usar los flujos de clínica
// (verificar códigos, redimir vet tokens, cargar registros).
func (i Identity) CanAccessClinicFlows() bool {
	switch i.Role {
	case RoleClinic, RoleGroomer, RoleStore:
		return true
	default:
		return false
	}
}

// Directory resuelve identidades por ID.
// El scanner lo usa para obtener email + idioma de cada dueño.
type Directory interface {
	GetByID(ctx context.Context, id string) (Identity, error)
}
