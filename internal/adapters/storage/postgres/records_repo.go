package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pet-medical-records/internal/domain/records"
)

// RecordRepo implementa records.Repository sobre Postgres.
//
// Esquema esperado:
//
//	vaccinations (id text primary key, pet_id text, vaccine_name text, batch text,
//	              valid_from date null, valid_until date, created_by text, created_at timestamptz)
//	medications  (id text primary key, pet_id text, medication_name text, dosage text,
//	              valid_until date, created_by text, created_at timestamptz)
type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

func (r *RecordRepo) CreateVaccination(ctx context.Context, rec records.VaccinationRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccinations (id, pet_id, vaccine_name, batch, valid_from, valid_until, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.PetID, rec.VaccineName, rec.Batch, rec.ValidFrom, rec.ValidUntil, rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating vaccination: %w", err)
	}
	return nil
}

func (r *RecordRepo) CreateMedication(ctx context.Context, rec records.MedicationRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (id, pet_id, medication_name, dosage, valid_until, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.PetID, rec.MedicationName, rec.Dosage, rec.ValidUntil, rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating medication: %w", err)
	}
	return nil
}

func (r *RecordRepo) ListVaccinationsByPet(ctx context.Context, petID string) ([]records.VaccinationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, vaccine_name, batch, valid_from, valid_until, created_by, created_at
		FROM vaccinations WHERE pet_id = $1 ORDER BY created_at`,
		petID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing vaccinations: %w", err)
	}
	defer rows.Close()
	return scanVaccinations(rows)
}

func (r *RecordRepo) ListMedicationsByPet(ctx context.Context, petID string) ([]records.MedicationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, medication_name, dosage, valid_until, created_by, created_at
		FROM medications WHERE pet_id = $1 ORDER BY created_at`,
		petID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	defer rows.Close()
	return scanMedications(rows)
}

func (r *RecordRepo) ListVaccinationsExpiringOn(ctx context.Context, date time.Time) ([]records.VaccinationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, vaccine_name, batch, valid_from, valid_until, created_by, created_at
		FROM vaccinations WHERE valid_until = $1`,
		records.DateOnly(date),
	)
	if err != nil {
		return nil, fmt.Errorf("listing expiring vaccinations: %w", err)
	}
	defer rows.Close()
	return scanVaccinations(rows)
}

func (r *RecordRepo) ListMedicationsExpiringOn(ctx context.Context, date time.Time) ([]records.MedicationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, medication_name, dosage, valid_until, created_by, created_at
		FROM medications WHERE valid_until = $1`,
		records.DateOnly(date),
	)
	if err != nil {
		return nil, fmt.Errorf("listing expiring medications: %w", err)
	}
	defer rows.Close()
	return scanMedications(rows)
}

func (r *RecordRepo) DeleteByPet(ctx context.Context, petID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting records by pet: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vaccinations WHERE pet_id = $1`, petID); err != nil {
		return fmt.Errorf("deleting records by pet: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM medications WHERE pet_id = $1`, petID); err != nil {
		return fmt.Errorf("deleting records by pet: %w", err)
	}
	return tx.Commit()
}

func scanVaccinations(rows *sql.Rows) ([]records.VaccinationRecord, error) {
	out := make([]records.VaccinationRecord, 0)
	for rows.Next() {
		var rec records.VaccinationRecord
		if err := rows.Scan(&rec.ID, &rec.PetID, &rec.VaccineName, &rec.Batch, &rec.ValidFrom, &rec.ValidUntil, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning vaccination: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanMedications(rows *sql.Rows) ([]records.MedicationRecord, error) {
	out := make([]records.MedicationRecord, 0)
	for rows.Next() {
		var rec records.MedicationRecord
		if err := rows.Scan(&rec.ID, &rec.PetID, &rec.MedicationName, &rec.Dosage, &rec.ValidUntil, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning medication: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
