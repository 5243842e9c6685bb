package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/ports/notify"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	vaccines    []VaccinationRecord
	medications []MedicationRecord
}

func (r *testRepo) CreateVaccination(ctx context.Context, rec VaccinationRecord) error {
	r.vaccines = append(r.vaccines, rec)
	return nil
}

func (r *testRepo) CreateMedication(ctx context.Context, rec MedicationRecord) error {
	r.medications = append(r.medications, rec)
	return nil
}

func (r *testRepo) ListVaccinationsByPet(ctx context.Context, petID string) ([]VaccinationRecord, error) {
	return r.vaccines, nil
}

func (r *testRepo) ListMedicationsByPet(ctx context.Context, petID string) ([]MedicationRecord, error) {
	return r.medications, nil
}

func (r *testRepo) ListVaccinationsExpiringOn(ctx context.Context, date time.Time) ([]VaccinationRecord, error) {
	return nil, nil
}

func (r *testRepo) ListMedicationsExpiringOn(ctx context.Context, date time.Time) ([]MedicationRecord, error) {
	return nil, nil
}

func (r *testRepo) DeleteByPet(ctx context.Context, petID string) error { return nil }

type testAccess struct {
	allowed map[string]bool // vetID
}

func (a *testAccess) HasActiveAccess(ctx context.Context, vetUserID, petID string) (bool, error) {
	return a.allowed[vetUserID], nil
}

type testOwnership struct {
	owners map[string][]string
}

func (o *testOwnership) IsOwner(ctx context.Context, petID, userID string) (bool, error) {
	for _, id := range o.owners[petID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (o *testOwnership) OwnersOf(ctx context.Context, petID string) ([]string, error) {
	return o.owners[petID], nil
}

func (o *testOwnership) PetName(ctx context.Context, petID string) (string, error) {
	return "Milo", nil
}

type testDirectory struct {
	byID map[string]identity.Identity
}

func (d *testDirectory) GetByID(ctx context.Context, id string) (identity.Identity, error) {
	i, ok := d.byID[id]
	if !ok {
		return identity.Identity{}, errors.New("not found")
	}
	return i, nil
}

type testGateway struct {
	added []notify.RecordAddedNotice
}

func (g *testGateway) SendExpiryNotice(ctx context.Context, n notify.ExpiryNotice) error { return nil }

func (g *testGateway) SendRecordAddedNotice(ctx context.Context, n notify.RecordAddedNotice) error {
	g.added = append(g.added, n)
	return nil
}

func newTestService() (*Service, *testRepo, *testAccess, *testGateway) {
	repo := &testRepo{}
	access := &testAccess{allowed: map[string]bool{}}
	ownership := &testOwnership{owners: map[string][]string{"pet-1": {"owner-a"}}}
	dir := &testDirectory{byID: map[string]identity.Identity{
		"owner-a": {ID: "owner-a", Email: "a@example.com"},
	}}
	gw := &testGateway{}
	return NewService(repo, access, ownership, dir, gw), repo, access, gw
}

func vet(id string) identity.Identity {
	return identity.Identity{ID: id, Role: identity.RoleClinic}
}

// -------------------------
// Tests
// -------------------------

func TestService_AddVaccination_RequiresActiveAccess(t *testing.T) {
	svc, _, access, _ := newTestService()
	until := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.AddVaccination(context.Background(), vet("vet-1"), "pet-1", VaccinationInput{VaccineName: "Rabies", ValidUntil: until})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("without access: err = %v, want ErrForbidden", err)
	}

	access.allowed["vet-1"] = true
	rec, err := svc.AddVaccination(context.Background(), vet("vet-1"), "pet-1", VaccinationInput{VaccineName: "Rabies", ValidUntil: until})
	if err != nil {
		t.Fatalf("with access: %v", err)
	}
	if rec.CreatedBy != "vet-1" {
		t.Fatalf("created_by = %q", rec.CreatedBy)
	}
}

func TestService_AddVaccination_OwnersCannotWrite(t *testing.T) {
	svc, _, _, _ := newTestService()
	until := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	actor := identity.Identity{ID: "owner-a", Role: identity.RoleOwner}
	_, err := svc.AddVaccination(context.Background(), actor, "pet-1", VaccinationInput{VaccineName: "Rabies", ValidUntil: until})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestService_AddMedication_NotifiesOwners(t *testing.T) {
	svc, _, access, gw := newTestService()
	access.allowed["vet-1"] = true
	until := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.AddMedication(context.Background(), vet("vet-1"), "pet-1", MedicationInput{MedicationName: "Antibiotic", ValidUntil: until})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(gw.added) != 1 {
		t.Fatalf("expected 1 owner notice, got %d", len(gw.added))
	}
	if gw.added[0].RecipientEmail != "a@example.com" || gw.added[0].Kind != notify.KindMedication {
		t.Fatalf("notice = %+v", gw.added[0])
	}
}

func TestService_List_AuthzBranches(t *testing.T) {
	svc, repo, access, _ := newTestService()
	repo.vaccines = []VaccinationRecord{{ID: "v-1", PetID: "pet-1"}}

	ownerActor := identity.Identity{ID: "owner-a", Role: identity.RoleOwner}
	if _, err := svc.ListVaccinations(context.Background(), ownerActor, "pet-1"); err != nil {
		t.Fatalf("owner list: %v", err)
	}

	strangerActor := identity.Identity{ID: "stranger", Role: identity.RoleOwner}
	if _, err := svc.ListVaccinations(context.Background(), strangerActor, "pet-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger list: err = %v", err)
	}

	if _, err := svc.ListVaccinations(context.Background(), vet("vet-1"), "pet-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("vet without access: err = %v", err)
	}
	access.allowed["vet-1"] = true
	if _, err := svc.ListVaccinations(context.Background(), vet("vet-1"), "pet-1"); err != nil {
		t.Fatalf("vet with access: %v", err)
	}
}

func TestService_DatesAreNormalizedToDay(t *testing.T) {
	svc, repo, access, _ := newTestService()
	access.allowed["vet-1"] = true

	until := time.Date(2026, 6, 1, 17, 45, 12, 0, time.FixedZone("X", 3*3600))
	_, err := svc.AddVaccination(context.Background(), vet("vet-1"), "pet-1", VaccinationInput{VaccineName: "Rabies", ValidUntil: until})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got := repo.vaccines[0].ValidUntil
	want := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("valid_until = %v, want normalized %v", got, want)
	}
}
