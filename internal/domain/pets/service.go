package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

// Cascade borra entidades dependientes de una mascota (grants, registros).
// Se inyecta para que el borrado de una mascota arrastre todo lo que la referencia.
type Cascade interface {
	DeleteByPet(ctx context.Context, petID string) error
}

type Service struct {
	repo     Repository
	cascades []Cascade
	now      func() time.Time
}

func NewService(repo Repository, cascades ...Cascade) *Service {
	return &Service{
		repo:     repo,
		cascades: cascades,
		now:      time.Now,
	}
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	Sex       string
	BirthDate *time.Time
	Microchip string
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	species, ok := ParseSpecies(in.Species)
	if !ok {
		return Pet{}, ErrInvalidInput
	}
	sex, ok := ParseSex(in.Sex)
	if !ok {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		Species:       species,
		Breed:         strings.TrimSpace(in.Breed),
		Sex:           sex,
		BirthDate:     in.BirthDate,
		Microchip:     strings.TrimSpace(in.Microchip),
		Notes:         strings.TrimSpace(in.Notes),
		Owners:        []string{ownerUserID},
		PendingOwners: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// AddOwner agrega userID al set de dueños. Idempotente: si ya es dueño, no hace nada.
// Si estaba pendiente, lo saca de pendientes.
func (s *Service) AddOwner(ctx context.Context, petID, userID string) (Pet, error) {
	petID = strings.TrimSpace(petID)
	userID = strings.TrimSpace(userID)
	if petID == "" || userID == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	if p.HasOwner(userID) {
		return p, nil
	}

	p.Owners = append(p.Owners, userID)
	p.PendingOwners = removeID(p.PendingOwners, userID)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// AddPendingOwner registra una solicitud de co-ownership a la espera
// de aprobación de un dueño actual. Idempotente.
func (s *Service) AddPendingOwner(ctx context.Context, petID, userID string) (Pet, error) {
	petID = strings.TrimSpace(petID)
	userID = strings.TrimSpace(userID)
	if petID == "" || userID == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	if p.HasOwner(userID) || p.HasPendingOwner(userID) {
		return p, nil
	}

	p.PendingOwners = append(p.PendingOwners, userID)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// ApprovePendingOwner promueve un pendiente a dueño. Solo un dueño actual puede aprobar.
func (s *Service) ApprovePendingOwner(ctx context.Context, petID, actingUserID, pendingUserID string) (Pet, error) {
	petID = strings.TrimSpace(petID)
	actingUserID = strings.TrimSpace(actingUserID)
	pendingUserID = strings.TrimSpace(pendingUserID)
	if petID == "" || actingUserID == "" || pendingUserID == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if !p.HasOwner(actingUserID) {
		return Pet{}, ErrForbidden
	}
	if !p.HasPendingOwner(pendingUserID) {
		return Pet{}, ErrNotFound
	}

	p.PendingOwners = removeID(p.PendingOwners, pendingUserID)
	p.Owners = append(p.Owners, pendingUserID)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Delete borra la mascota y arrastra grants y registros vía cascades.
// Solo un dueño actual puede borrar.
func (s *Service) Delete(ctx context.Context, petID, actingUserID string) error {
	petID = strings.TrimSpace(petID)
	if petID == "" || strings.TrimSpace(actingUserID) == "" {
		return ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return err
	}
	if !p.HasOwner(actingUserID) {
		return ErrForbidden
	}

	for _, c := range s.cascades {
		if err := c.DeleteByPet(ctx, petID); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, petID)
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == id {
			continue
		}
		out = append(out, v)
	}
	return out
}
