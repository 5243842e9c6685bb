package grants

import (
	"context"
	"time"
)

// -------------------------
// Test store (in-memory)
// -------------------------

type tokenID struct {
	kind  TokenKind
	value string
}

type accessID struct {
	vet string
	pet string
}

type testStore struct {
	codes     map[string]AccessCode
	tokens    map[tokenID]Token
	vetAccess map[accessID]VetPetAccess

	createCodeCalls int
}

func newTestStore() *testStore {
	return &testStore{
		codes:     map[string]AccessCode{},
		tokens:    map[tokenID]Token{},
		vetAccess: map[accessID]VetPetAccess{},
	}
}

func (s *testStore) GetCode(ctx context.Context, petID string) (AccessCode, error) {
	c, ok := s.codes[petID]
	if !ok {
		return AccessCode{}, ErrNotFound
	}
	return c, nil
}

func (s *testStore) CreateCode(ctx context.Context, c AccessCode) error {
	s.createCodeCalls++
	for petID, existing := range s.codes {
		if petID != c.PetID && existing.Code == c.Code && existing.IsValid(c.CreatedAt) {
			return ErrCodeTaken
		}
	}
	s.codes[c.PetID] = c
	return nil
}

func (s *testStore) DeleteCode(ctx context.Context, petID string) error {
	delete(s.codes, petID)
	return nil
}

func (s *testStore) FindValidCode(ctx context.Context, code string, now time.Time) (AccessCode, error) {
	for _, c := range s.codes {
		if c.Code == code && c.IsValid(now) {
			return c, nil
		}
	}
	return AccessCode{}, ErrNotFound
}

func (s *testStore) CreateToken(ctx context.Context, t Token) error {
	s.tokens[tokenID{t.Kind, t.Value}] = t
	return nil
}

func (s *testStore) GetToken(ctx context.Context, kind TokenKind, value string) (Token, error) {
	t, ok := s.tokens[tokenID{kind, value}]
	if !ok {
		return Token{}, ErrNotFound
	}
	return t, nil
}

func (s *testStore) ConsumeToken(ctx context.Context, kind TokenKind, value string) error {
	k := tokenID{kind, value}
	t, ok := s.tokens[k]
	if !ok {
		return ErrNotFound
	}
	if t.Used {
		return ErrExpiredOrUsed
	}
	t.Used = true
	s.tokens[k] = t
	return nil
}

func (s *testStore) UpsertVetAccess(ctx context.Context, a VetPetAccess) error {
	s.vetAccess[accessID{a.VetUserID, a.PetID}] = a
	return nil
}

func (s *testStore) GetVetAccess(ctx context.Context, vetUserID, petID string) (VetPetAccess, error) {
	a, ok := s.vetAccess[accessID{vetUserID, petID}]
	if !ok {
		return VetPetAccess{}, ErrNotFound
	}
	return a, nil
}

func (s *testStore) PurgeExpiredUnused(ctx context.Context, kind TokenKind, olderThan time.Time, limit int) (int, error) {
	purged := 0
	for k, t := range s.tokens {
		if purged >= limit {
			break
		}
		if k.kind == kind && !t.Used && t.CreatedAt.Before(olderThan) {
			delete(s.tokens, k)
			purged++
		}
	}
	return purged, nil
}

func (s *testStore) DeleteByPet(ctx context.Context, petID string) error {
	delete(s.codes, petID)
	for k, t := range s.tokens {
		if t.PetID == petID {
			delete(s.tokens, k)
		}
	}
	for k, a := range s.vetAccess {
		if a.PetID == petID {
			delete(s.vetAccess, k)
		}
	}
	return nil
}
