package records

import (
	"context"
	"time"
)

type Repository interface {
	CreateVaccination(ctx context.Context, rec VaccinationRecord) error
	CreateMedication(ctx context.Context, rec MedicationRecord) error

	ListVaccinationsByPet(ctx context.Context, petID string) ([]VaccinationRecord, error)
	ListMedicationsByPet(ctx context.Context, petID string) ([]MedicationRecord, error)

	// Queries del scanner: igualdad exacta de fecha, no rango.
	ListVaccinationsExpiringOn(ctx context.Context, date time.Time) ([]VaccinationRecord, error)
	ListMedicationsExpiringOn(ctx context.Context, date time.Time) ([]MedicationRecord, error)

	// DeleteByPet borra los registros de la mascota (cascade).
	DeleteByPet(ctx context.Context, petID string) error
}
