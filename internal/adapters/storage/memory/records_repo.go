package memory

import (
	"context"
	"sync"
	"time"

	"pet-medical-records/internal/domain/records"
)

// RecordRepo es la implementación en memoria del repositorio de
// registros médicos.
type RecordRepo struct {
	mu          sync.RWMutex
	vaccines    map[string]records.VaccinationRecord
	medications map[string]records.MedicationRecord
}

func NewRecordRepo() *RecordRepo {
	return &RecordRepo{
		vaccines:    make(map[string]records.VaccinationRecord),
		medications: make(map[string]records.MedicationRecord),
	}
}

func (r *RecordRepo) CreateVaccination(ctx context.Context, rec records.VaccinationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vaccines[rec.ID] = rec
	return nil
}

func (r *RecordRepo) CreateMedication(ctx context.Context, rec records.MedicationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.medications[rec.ID] = rec
	return nil
}

func (r *RecordRepo) ListVaccinationsByPet(ctx context.Context, petID string) ([]records.VaccinationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.VaccinationRecord, 0)
	for _, rec := range r.vaccines {
		if rec.PetID == petID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *RecordRepo) ListMedicationsByPet(ctx context.Context, petID string) ([]records.MedicationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.MedicationRecord, 0)
	for _, rec := range r.medications {
		if rec.PetID == petID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *RecordRepo) ListVaccinationsExpiringOn(ctx context.Context, date time.Time) ([]records.VaccinationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := records.DateOnly(date)
	out := make([]records.VaccinationRecord, 0)
	for _, rec := range r.vaccines {
		if records.DateOnly(rec.ValidUntil).Equal(day) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *RecordRepo) ListMedicationsExpiringOn(ctx context.Context, date time.Time) ([]records.MedicationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := records.DateOnly(date)
	out := make([]records.MedicationRecord, 0)
	for _, rec := range r.medications {
		if records.DateOnly(rec.ValidUntil).Equal(day) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *RecordRepo) DeleteByPet(ctx context.Context, petID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.vaccines {
		if rec.PetID == petID {
			delete(r.vaccines, id)
		}
	}
	for id, rec := range r.medications {
		if rec.PetID == petID {
			delete(r.medications, id)
		}
	}
	return nil
}
