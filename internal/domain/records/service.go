package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// AccessChecker responde si una clínica tiene un vet-pet access vigente.
// La implementa el validador de grants; interface acá para evitar ciclos.
type AccessChecker interface {
	HasActiveAccess(ctx context.Context, vetUserID, petID string) (bool, error)
}

// PetOwnership es la vista mínima de pets que necesita records.
type PetOwnership interface {
	IsOwner(ctx context.Context, petID, userID string) (bool, error)
	OwnersOf(ctx context.Context, petID string) ([]string, error)
	PetName(ctx context.Context, petID string) (string, error)
}

type Service struct {
	repo      Repository
	access    AccessChecker
	ownership PetOwnership
	directory identity.Directory
	gateway   notify.Gateway

	now func() time.Time
}

func NewService(repo Repository, access AccessChecker, ownership PetOwnership, directory identity.Directory, gateway notify.Gateway) *Service {
	return &Service{
		repo:      repo,
		access:    access,
		ownership: ownership,
		directory: directory,
		gateway:   gateway,
		now:       time.Now,
	}
}

type VaccinationInput struct {
	VaccineName string
	Batch       string
	ValidFrom   *time.Time
	ValidUntil  time.Time
}

type MedicationInput struct {
	MedicationName string
	Dosage         string
	ValidUntil     time.Time
}

// AddVaccination crea una vacunación. Solo clínicas con acceso vigente.
// Al crear, emite un aviso one-shot a cada dueño vía gateway (emisión
// explícita, sin hooks implícitos).
func (s *Service) AddVaccination(ctx context.Context, actor identity.Identity, petID string, in VaccinationInput) (VaccinationRecord, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" || strings.TrimSpace(in.VaccineName) == "" || in.ValidUntil.IsZero() {
		return VaccinationRecord{}, ErrInvalidInput
	}
	if err := s.authorizeWrite(ctx, actor, petID); err != nil {
		return VaccinationRecord{}, err
	}

	rec := VaccinationRecord{
		ID:          uuid.NewString(),
		PetID:       petID,
		VaccineName: strings.TrimSpace(in.VaccineName),
		Batch:       strings.TrimSpace(in.Batch),
		ValidFrom:   in.ValidFrom,
		ValidUntil:  DateOnly(in.ValidUntil),
		CreatedBy:   actor.ID,
		CreatedAt:   s.now(),
	}

	if err := s.repo.CreateVaccination(ctx, rec); err != nil {
		return VaccinationRecord{}, err
	}

	s.notifyRecordAdded(ctx, petID, rec.VaccineName, notify.KindVaccination)
	return rec, nil
}

// AddMedication crea una medicación. Misma autorización que AddVaccination.
func (s *Service) AddMedication(ctx context.Context, actor identity.Identity, petID string, in MedicationInput) (MedicationRecord, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" || strings.TrimSpace(in.MedicationName) == "" || in.ValidUntil.IsZero() {
		return MedicationRecord{}, ErrInvalidInput
	}
	if err := s.authorizeWrite(ctx, actor, petID); err != nil {
		return MedicationRecord{}, err
	}

	rec := MedicationRecord{
		ID:             uuid.NewString(),
		PetID:          petID,
		MedicationName: strings.TrimSpace(in.MedicationName),
		Dosage:         strings.TrimSpace(in.Dosage),
		ValidUntil:     DateOnly(in.ValidUntil),
		CreatedBy:      actor.ID,
		CreatedAt:      s.now(),
	}

	if err := s.repo.CreateMedication(ctx, rec); err != nil {
		return MedicationRecord{}, err
	}

	s.notifyRecordAdded(ctx, petID, rec.MedicationName, notify.KindMedication)
	return rec, nil
}

// ListVaccinations devuelve las vacunaciones visibles para el actor
// (dueño, o clínica con acceso vigente).
func (s *Service) ListVaccinations(ctx context.Context, actor identity.Identity, petID string) ([]VaccinationRecord, error) {
	if err := s.authorizeRead(ctx, actor, petID); err != nil {
		return nil, err
	}
	return s.repo.ListVaccinationsByPet(ctx, petID)
}

func (s *Service) ListMedications(ctx context.Context, actor identity.Identity, petID string) ([]MedicationRecord, error) {
	if err := s.authorizeRead(ctx, actor, petID); err != nil {
		return nil, err
	}
	return s.repo.ListMedicationsByPet(ctx, petID)
}

func (s *Service) authorizeWrite(ctx context.Context, actor identity.Identity, petID string) error {
	if strings.TrimSpace(actor.ID) == "" {
		return ErrForbidden
	}
	if !actor.CanAccessClinicFlows() {
		return ErrForbidden
	}
	ok, err := s.access.HasActiveAccess(ctx, actor.ID, petID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *Service) authorizeRead(ctx context.Context, actor identity.Identity, petID string) error {
	if strings.TrimSpace(actor.ID) == "" {
		return ErrForbidden
	}
	if actor.CanOwnPets() {
		isOwner, err := s.ownership.IsOwner(ctx, petID, actor.ID)
		if err != nil {
			return err
		}
		if isOwner {
			return nil
		}
		return ErrForbidden
	}
	return s.authorizeWrite(ctx, actor, petID)
}

// notifyRecordAdded es best-effort: un gateway caído no revierte el
// registro ya persistido. Solo se loguea desde el gateway async.
func (s *Service) notifyRecordAdded(ctx context.Context, petID, itemName string, kind notify.RecordKind) {
	petName, err := s.ownership.PetName(ctx, petID)
	if err != nil {
		return
	}
	ownerIDs, err := s.ownership.OwnersOf(ctx, petID)
	if err != nil {
		return
	}

	for _, ownerID := range ownerIDs {
		ident, err := s.directory.GetByID(ctx, ownerID)
		if err != nil || strings.TrimSpace(ident.Email) == "" {
			continue
		}
		_ = s.gateway.SendRecordAddedNotice(ctx, notify.RecordAddedNotice{
			RecipientEmail: ident.Email,
			PetName:        petName,
			ItemName:       itemName,
			Kind:           kind,
		})
	}
}
