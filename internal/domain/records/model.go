package records

import "time"

// VaccinationRecord es una vacunación registrada por una clínica.
// valid_until es fecha (día), no instante: el scanner matchea por
// igualdad exacta de fecha.
type VaccinationRecord struct {
	ID    string
	PetID string

	VaccineName string
	Batch       string

	ValidFrom  *time.Time
	ValidUntil time.Time

	CreatedBy string // clinic user ID
	CreatedAt time.Time
}

// MedicationRecord es una medicación registrada por una clínica.
type MedicationRecord struct {
	ID    string
	PetID string

	MedicationName string
	Dosage         string

	ValidUntil time.Time

	CreatedBy string
	CreatedAt time.Time
}

// DateOnly normaliza un instante al día (UTC, medianoche).
// Todas las comparaciones de expiración del scanner se hacen sobre esto.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
