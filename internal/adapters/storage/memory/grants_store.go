package memory

import (
	"context"
	"sync"
	"time"

	"pet-medical-records/internal/domain/grants"
)

// GrantStore es la implementación en memoria del store de grants.
// Pensada para dev y tests; el mutex único da la misma atomicidad
// que las queries condicionales del adapter de Postgres.
type GrantStore struct {
	mu sync.Mutex

	codes     map[string]grants.AccessCode // petID -> code
	tokens    map[tokenKey]grants.Token
	vetAccess map[accessKey]grants.VetPetAccess
}

type tokenKey struct {
	kind  grants.TokenKind
	value string
}

type accessKey struct {
	vetUserID string
	petID     string
}

func NewGrantStore() *GrantStore {
	return &GrantStore{
		codes:     make(map[string]grants.AccessCode),
		tokens:    make(map[tokenKey]grants.Token),
		vetAccess: make(map[accessKey]grants.VetPetAccess),
	}
}

func (s *GrantStore) GetCode(ctx context.Context, petID string) (grants.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[petID]
	if !ok {
		return grants.AccessCode{}, grants.ErrNotFound
	}
	return c, nil
}

func (s *GrantStore) CreateCode(ctx context.Context, c grants.AccessCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Unicidad entre códigos vigentes: otra mascota con el mismo código
	// todavía válido bloquea la inserción.
	for petID, existing := range s.codes {
		if petID == c.PetID {
			continue
		}
		if existing.Code == c.Code && existing.IsValid(c.CreatedAt) {
			return grants.ErrCodeTaken
		}
	}

	s.codes[c.PetID] = c
	return nil
}

func (s *GrantStore) DeleteCode(ctx context.Context, petID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, petID)
	return nil
}

func (s *GrantStore) FindValidCode(ctx context.Context, code string, now time.Time) (grants.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.codes {
		if c.Code == code && c.IsValid(now) {
			return c, nil
		}
	}
	return grants.AccessCode{}, grants.ErrNotFound
}

func (s *GrantStore) CreateToken(ctx context.Context, t grants.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[tokenKey{kind: t.Kind, value: t.Value}] = t
	return nil
}

func (s *GrantStore) GetToken(ctx context.Context, kind grants.TokenKind, value string) (grants.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenKey{kind: kind, value: value}]
	if !ok {
		return grants.Token{}, grants.ErrNotFound
	}
	return t, nil
}

func (s *GrantStore) ConsumeToken(ctx context.Context, kind grants.TokenKind, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := tokenKey{kind: kind, value: value}
	t, ok := s.tokens[k]
	if !ok {
		return grants.ErrNotFound
	}
	if t.Used {
		return grants.ErrExpiredOrUsed
	}

	t.Used = true
	s.tokens[k] = t
	return nil
}

func (s *GrantStore) UpsertVetAccess(ctx context.Context, a grants.VetPetAccess) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vetAccess[accessKey{vetUserID: a.VetUserID, petID: a.PetID}] = a
	return nil
}

func (s *GrantStore) GetVetAccess(ctx context.Context, vetUserID, petID string) (grants.VetPetAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.vetAccess[accessKey{vetUserID: vetUserID, petID: petID}]
	if !ok {
		return grants.VetPetAccess{}, grants.ErrNotFound
	}
	return a, nil
}

func (s *GrantStore) PurgeExpiredUnused(ctx context.Context, kind grants.TokenKind, olderThan time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for k, t := range s.tokens {
		if purged >= limit {
			break
		}
		if k.kind != kind || t.Used {
			continue
		}
		if t.CreatedAt.Before(olderThan) {
			delete(s.tokens, k)
			purged++
		}
	}
	return purged, nil
}

func (s *GrantStore) DeleteByPet(ctx context.Context, petID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

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
