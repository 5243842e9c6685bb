package pets

import (
	"context"
	"errors"
	"testing"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.HasOwner(ownerUserID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type testCascade struct {
	deleted []string
}

func (c *testCascade) DeleteByPet(ctx context.Context, petID string) error {
	c.deleted = append(c.deleted, petID)
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_SetsFirstOwner(t *testing.T) {
	svc := NewService(newTestRepo())

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Milo", Species: "dog"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !p.HasOwner("owner-1") {
		t.Fatalf("creator must be first owner, owners=%v", p.Owners)
	}
	if p.ID == "" {
		t.Fatal("missing id")
	}
}

func TestService_Create_RequiresNameAndSpecies(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Create(context.Background(), "owner-1", CreateInput{Species: "dog"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing name: err = %v", err)
	}
	if _, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Milo"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing species: err = %v", err)
	}
}

func TestService_Create_ValidatesSpeciesAndSex(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Milo", Species: "hamster"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown species: err = %v", err)
	}
	if _, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Milo", Species: "dog", Sex: "other"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown sex: err = %v", err)
	}

	// Normaliza mayúsculas y espacios; sexo vacío cae a unknown.
	p, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Milo", Species: " Dog "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Species != SpeciesDog {
		t.Fatalf("species = %q, want %q", p.Species, SpeciesDog)
	}
	if p.Sex != SexUnknown {
		t.Fatalf("sex = %q, want %q", p.Sex, SexUnknown)
	}
}

func TestService_AddOwner_Idempotent(t *testing.T) {
	svc := NewService(newTestRepo())
	p, _ := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Milo", Species: "dog"})

	p2, err := svc.AddOwner(context.Background(), p.ID, "owner-2")
	if err != nil {
		t.Fatalf("add owner: %v", err)
	}
	if len(p2.Owners) != 2 {
		t.Fatalf("owners = %v", p2.Owners)
	}

	p3, err := svc.AddOwner(context.Background(), p.ID, "owner-2")
	if err != nil {
		t.Fatalf("re-add owner: %v", err)
	}
	if len(p3.Owners) != 2 {
		t.Fatalf("add owner must be idempotent, owners = %v", p3.Owners)
	}
}

func TestService_ApprovePendingOwner(t *testing.T) {
	svc := NewService(newTestRepo())
	p, _ := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Milo", Species: "dog"})

	if _, err := svc.AddPendingOwner(context.Background(), p.ID, "owner-2"); err != nil {
		t.Fatalf("add pending: %v", err)
	}

	// Un no-dueño no puede aprobar.
	if _, err := svc.ApprovePendingOwner(context.Background(), p.ID, "stranger", "owner-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger approve: err = %v", err)
	}

	p2, err := svc.ApprovePendingOwner(context.Background(), p.ID, "owner-1", "owner-2")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !p2.HasOwner("owner-2") || p2.HasPendingOwner("owner-2") {
		t.Fatalf("owner-2 must be promoted, owners=%v pending=%v", p2.Owners, p2.PendingOwners)
	}
}

func TestService_Delete_RunsCascades(t *testing.T) {
	grantsCascade := &testCascade{}
	recordsCascade := &testCascade{}
	svc := NewService(newTestRepo(), grantsCascade, recordsCascade)

	p, _ := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Milo", Species: "dog"})

	if err := svc.Delete(context.Background(), p.ID, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete: err = %v", err)
	}

	if err := svc.Delete(context.Background(), p.ID, "owner-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(grantsCascade.deleted) != 1 || len(recordsCascade.deleted) != 1 {
		t.Fatalf("cascades must run once each: %v %v", grantsCascade.deleted, recordsCascade.deleted)
	}
	if _, err := svc.GetByID(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pet must be gone, err = %v", err)
	}
}
