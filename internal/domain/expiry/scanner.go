package expiry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/domain/records"
	"pet-medical-records/internal/platform/logger"
	"pet-medical-records/internal/platform/metrics"
	"pet-medical-records/internal/ports/notify"
)

// Horizon es un punto de aviso: exactamente Days días antes del
// vencimiento, con la etiqueta que va en el texto de la notificación.
type Horizon struct {
	Days  int
	Label string
}

// DefaultVaccinationHorizons son los avisos de vacunas:
// 4 semanas, 2 semanas, 1 semana y el día anterior.
var DefaultVaccinationHorizons = []Horizon{
	{Days: 28, Label: "in 4 weeks"},
	{Days: 14, Label: "in 2 weeks"},
	{Days: 7, Label: "in 1 week"},
	{Days: 1, Label: "tomorrow"},
}

// DefaultMedicationHorizons son los avisos de medicaciones.
var DefaultMedicationHorizons = []Horizon{
	{Days: 7, Label: "in 1 week"},
	{Days: 1, Label: "tomorrow"},
}

// RecordSource es la vista de records que consume el scanner.
type RecordSource interface {
	ListVaccinationsExpiringOn(ctx context.Context, date time.Time) ([]records.VaccinationRecord, error)
	ListMedicationsExpiringOn(ctx context.Context, date time.Time) ([]records.MedicationRecord, error)
}

// PetSource resuelve nombre y dueños de una mascota.
type PetSource interface {
	PetName(ctx context.Context, petID string) (string, error)
	OwnersOf(ctx context.Context, petID string) ([]string, error)
}

// Ledger deduplica avisos entre corridas. Add devuelve true si la clave
// no se había visto dentro del TTL (el aviso debe salir) y false si ya
// salió. Con ledger nil el scanner depende solo del scheduling diario:
// dos corridas el mismo día duplican avisos.
type Ledger interface {
	Add(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Scanner struct {
	recs   RecordSource
	pets   PetSource
	dir    identity.Directory
	gw     notify.Gateway
	ledger Ledger // opcional

	vaccHorizons []Horizon
	medHorizons  []Horizon

	today func() time.Time
}

func NewScanner(recs RecordSource, pets PetSource, dir identity.Directory, gw notify.Gateway, ledger Ledger) *Scanner {
	return &Scanner{
		recs:         recs,
		pets:         pets,
		dir:          dir,
		gw:           gw,
		ledger:       ledger,
		vaccHorizons: DefaultVaccinationHorizons,
		medHorizons:  DefaultMedicationHorizons,
		today:        time.Now,
	}
}

// Scan recorre todos los horizontes y emite un aviso por cada
// (registro, horizonte, dueño) cuyo valid_until cae exactamente en
// hoy+Days. Devuelve la cantidad de avisos enviados.
//
// Cada aviso se aisla: un gateway que falla para un dueño no frena el
// resto de la corrida, solo se loguea y se sigue.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	log := logger.Get()
	today := records.DateOnly(s.today())
	sent := 0

	for _, h := range s.vaccHorizons {
		target := today.AddDate(0, 0, h.Days)
		items, err := s.recs.ListVaccinationsExpiringOn(ctx, target)
		if err != nil {
			return sent, fmt.Errorf("listing vaccinations expiring on %s: %w", target.Format("2006-01-02"), err)
		}
		for _, rec := range items {
			sent += s.emit(ctx, rec.PetID, rec.ID, rec.VaccineName, notify.KindVaccination, rec.ValidUntil, h)
		}
	}

	for _, h := range s.medHorizons {
		target := today.AddDate(0, 0, h.Days)
		items, err := s.recs.ListMedicationsExpiringOn(ctx, target)
		if err != nil {
			return sent, fmt.Errorf("listing medications expiring on %s: %w", target.Format("2006-01-02"), err)
		}
		for _, rec := range items {
			sent += s.emit(ctx, rec.PetID, rec.ID, rec.MedicationName, notify.KindMedication, rec.ValidUntil, h)
		}
	}

	log.Info().Int("sent", sent).Msg("expiry scan finished")
	return sent, nil
}

func (s *Scanner) emit(ctx context.Context, petID, recordID, itemName string, kind notify.RecordKind, expiresOn time.Time, h Horizon) int {
	log := logger.Get()

	petName, err := s.pets.PetName(ctx, petID)
	if err != nil {
		log.Warn().Err(err).Str("pet_id", petID).Msg("skipping expiry notice, pet lookup failed")
		return 0
	}
	ownerIDs, err := s.pets.OwnersOf(ctx, petID)
	if err != nil {
		log.Warn().Err(err).Str("pet_id", petID).Msg("skipping expiry notice, owners lookup failed")
		return 0
	}

	sent := 0
	for _, ownerID := range ownerIDs {
		if s.ledger != nil {
			key := dedupKey(kind, recordID, ownerID, h)
			fresh, err := s.ledger.Add(ctx, key, time.Duration(h.Days+1)*24*time.Hour)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("dedup ledger unavailable, emitting anyway")
			} else if !fresh {
				continue
			}
		}

		ident, err := s.dir.GetByID(ctx, ownerID)
		if err != nil || strings.TrimSpace(ident.Email) == "" {
			log.Warn().Err(err).Str("owner_id", ownerID).Msg("skipping owner without resolvable email")
			continue
		}

		err = s.gw.SendExpiryNotice(ctx, notify.ExpiryNotice{
			RecipientEmail:    ident.Email,
			RecipientLanguage: ident.Language,
			PetName:           petName,
			ItemName:          itemName,
			Kind:              kind,
			ExpiresOn:         expiresOn,
			Horizon:           h.Label,
		})
		if err != nil {
			// Aislamiento por notificación: se loguea y se sigue con el resto.
			log.Error().Err(err).
				Str("owner_id", ownerID).
				Str("pet_id", petID).
				Str("kind", string(kind)).
				Msg("expiry notice failed")
			continue
		}

		metrics.ExpiryNotices.WithLabelValues(string(kind)).Inc()
		sent++
	}
	return sent
}

func dedupKey(kind notify.RecordKind, recordID, ownerID string, h Horizon) string {
	return fmt.Sprintf("expiry:%s:%s:%s:%d", kind, recordID, ownerID, h.Days)
}
