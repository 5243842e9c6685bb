package expiry

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/domain/records"
	"pet-medical-records/internal/ports/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecords struct {
	vaccines    []records.VaccinationRecord
	medications []records.MedicationRecord
}

func (f *fakeRecords) ListVaccinationsExpiringOn(ctx context.Context, date time.Time) ([]records.VaccinationRecord, error) {
	day := records.DateOnly(date)
	out := []records.VaccinationRecord{}
	for _, r := range f.vaccines {
		if records.DateOnly(r.ValidUntil).Equal(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) ListMedicationsExpiringOn(ctx context.Context, date time.Time) ([]records.MedicationRecord, error) {
	day := records.DateOnly(date)
	out := []records.MedicationRecord{}
	for _, r := range f.medications {
		if records.DateOnly(r.ValidUntil).Equal(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakePets struct {
	names  map[string]string
	owners map[string][]string
}

func (f *fakePets) PetName(ctx context.Context, petID string) (string, error) {
	n, ok := f.names[petID]
	if !ok {
		return "", errors.New("pet not found")
	}
	return n, nil
}

func (f *fakePets) OwnersOf(ctx context.Context, petID string) ([]string, error) {
	return f.owners[petID], nil
}

type fakeDirectory struct {
	byID map[string]identity.Identity
}

func (f *fakeDirectory) GetByID(ctx context.Context, id string) (identity.Identity, error) {
	i, ok := f.byID[id]
	if !ok {
		return identity.Identity{}, errors.New("identity not found")
	}
	return i, nil
}

type fakeGateway struct {
	sent    []notify.ExpiryNotice
	failFor map[string]error // por email
}

func (f *fakeGateway) SendExpiryNotice(ctx context.Context, n notify.ExpiryNotice) error {
	if err := f.failFor[n.RecipientEmail]; err != nil {
		return err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeGateway) SendRecordAddedNotice(ctx context.Context, n notify.RecordAddedNotice) error {
	return nil
}

type fakeLedger struct {
	seen map[string]bool
}

func (f *fakeLedger) Add(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newFixture() (*fakeRecords, *fakePets, *fakeDirectory, *fakeGateway) {
	recs := &fakeRecords{}
	pets := &fakePets{
		names:  map[string]string{"pet-1": "Milo"},
		owners: map[string][]string{"pet-1": {"owner-a"}},
	}
	dir := &fakeDirectory{byID: map[string]identity.Identity{
		"owner-a": {ID: "owner-a", Role: identity.RoleOwner, Email: "a@example.com", Language: "en"},
	}}
	gw := &fakeGateway{failFor: map[string]error{}}
	return recs, pets, dir, gw
}

func TestScanner_MatchesExactDateOnly(t *testing.T) {
	recs, pets, dir, gw := newFixture()
	today := date(2026, 3, 10)

	recs.vaccines = []records.VaccinationRecord{
		{ID: "v-hit", PetID: "pet-1", VaccineName: "Rabies", ValidUntil: today.AddDate(0, 0, 7)},
		{ID: "v-miss", PetID: "pet-1", VaccineName: "Parvo", ValidUntil: today.AddDate(0, 0, 8)},
	}

	s := NewScanner(recs, pets, dir, gw, nil)
	s.today = func() time.Time { return today }

	sent, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	assert.Equal(t, "Rabies", gw.sent[0].ItemName)
	assert.Equal(t, "in 1 week", gw.sent[0].Horizon)
	assert.Equal(t, notify.KindVaccination, gw.sent[0].Kind)
}

func TestScanner_VaccinationHorizons(t *testing.T) {
	recs, pets, dir, gw := newFixture()
	today := date(2026, 3, 10)

	for _, days := range []int{28, 14, 7, 1} {
		recs.vaccines = append(recs.vaccines, records.VaccinationRecord{
			ID: "v-" + strconv.Itoa(days), PetID: "pet-1",
			VaccineName: "Rabies", ValidUntil: today.AddDate(0, 0, days),
		})
	}

	s := NewScanner(recs, pets, dir, gw, nil)
	s.today = func() time.Time { return today }

	sent, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, sent)

	labels := make([]string, 0, len(gw.sent))
	for _, n := range gw.sent {
		labels = append(labels, n.Horizon)
	}
	assert.ElementsMatch(t, []string{"in 4 weeks", "in 2 weeks", "in 1 week", "tomorrow"}, labels)
}

func TestScanner_MedicationHorizonsAreShorter(t *testing.T) {
	recs, pets, dir, gw := newFixture()
	today := date(2026, 3, 10)

	// 14 días: horizonte de vacunas, no de medicaciones.
	recs.medications = []records.MedicationRecord{
		{ID: "m-14", PetID: "pet-1", MedicationName: "Antibiotic", ValidUntil: today.AddDate(0, 0, 14)},
		{ID: "m-1", PetID: "pet-1", MedicationName: "Painkiller", ValidUntil: today.AddDate(0, 0, 1)},
	}

	s := NewScanner(recs, pets, dir, gw, nil)
	s.today = func() time.Time { return today }

	sent, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	assert.Equal(t, "Painkiller", gw.sent[0].ItemName)
	assert.Equal(t, "tomorrow", gw.sent[0].Horizon)
}

func TestScanner_FailureIsolation(t *testing.T) {
	recs, pets, dir, gw := newFixture()
	today := date(2026, 3, 10)

	pets.owners["pet-1"] = []string{"owner-a", "owner-b"}
	dir.byID["owner-b"] = identity.Identity{ID: "owner-b", Email: "b@example.com"}
	gw.failFor["a@example.com"] = errors.New("smtp down")

	recs.vaccines = []records.VaccinationRecord{
		{ID: "v-1", PetID: "pet-1", VaccineName: "Rabies", ValidUntil: today.AddDate(0, 0, 1)},
	}

	s := NewScanner(recs, pets, dir, gw, nil)
	s.today = func() time.Time { return today }

	// La falla para owner-a no frena el envío a owner-b ni el scan.
	sent, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	assert.Equal(t, "b@example.com", gw.sent[0].RecipientEmail)
}

func TestScanner_LedgerDeduplicatesReruns(t *testing.T) {
	recs, pets, dir, gw := newFixture()
	today := date(2026, 3, 10)

	recs.vaccines = []records.VaccinationRecord{
		{ID: "v-1", PetID: "pet-1", VaccineName: "Rabies", ValidUntil: today.AddDate(0, 0, 1)},
	}

	s := NewScanner(recs, pets, dir, gw, &fakeLedger{seen: map[string]bool{}})
	s.today = func() time.Time { return today }

	sent, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	// Segunda corrida el mismo día: el ledger la deja en cero.
	sent, err = s.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestScanner_SkipsOwnersWithoutEmail(t *testing.T) {
	recs, pets, dir, gw := newFixture()
	today := date(2026, 3, 10)

	dir.byID["owner-a"] = identity.Identity{ID: "owner-a"} // sin email

	recs.vaccines = []records.VaccinationRecord{
		{ID: "v-1", PetID: "pet-1", VaccineName: "Rabies", ValidUntil: today.AddDate(0, 0, 1)},
	}

	s := NewScanner(recs, pets, dir, gw, nil)
	s.today = func() time.Time { return today }

	sent, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}
