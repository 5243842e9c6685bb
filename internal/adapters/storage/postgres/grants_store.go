package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pet-medical-records/internal/domain/grants"
)

// GrantStore implementa grants.Store sobre Postgres.
//
// Esquema esperado:
//
//	access_codes  (pet_id text primary key, code text, created_at timestamptz, expires_at timestamptz)
//	tokens        (kind text, value text, pet_id text, created_at timestamptz, used boolean, primary key (kind, value))
//	vet_access    (vet_user_id text, pet_id text, granted_by text, created_at timestamptz, expires_at timestamptz, primary key (vet_user_id, pet_id))
type GrantStore struct {
	db *sql.DB
}

func NewGrantStore(db *sql.DB) *GrantStore {
	return &GrantStore{db: db}
}

func (s *GrantStore) GetCode(ctx context.Context, petID string) (grants.AccessCode, error) {
	var c grants.AccessCode
	err := s.db.QueryRowContext(ctx,
		`SELECT pet_id, code, created_at, expires_at FROM access_codes WHERE pet_id = $1`,
		petID,
	).Scan(&c.PetID, &c.Code, &c.CreatedAt, &c.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return grants.AccessCode{}, grants.ErrNotFound
	}
	if err != nil {
		return grants.AccessCode{}, fmt.Errorf("getting access code: %w", err)
	}
	return c, nil
}

// CreateCode inserta solo si ningún otro pet tiene el mismo código
// vigente. El INSERT condicional resuelve la carrera en una sola
// sentencia, sin lock explícito.
func (s *GrantStore) CreateCode(ctx context.Context, c grants.AccessCode) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO access_codes (pet_id, code, created_at, expires_at)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM access_codes
			WHERE code = $2 AND pet_id <> $1 AND expires_at > $3
		)
		ON CONFLICT (pet_id) DO UPDATE
		SET code = EXCLUDED.code, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`,
		c.PetID, c.Code, c.CreatedAt, c.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("creating access code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("creating access code: %w", err)
	}
	if n == 0 {
		return grants.ErrCodeTaken
	}
	return nil
}

func (s *GrantStore) DeleteCode(ctx context.Context, petID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM access_codes WHERE pet_id = $1`, petID)
	if err != nil {
		return fmt.Errorf("deleting access code: %w", err)
	}
	return nil
}

func (s *GrantStore) FindValidCode(ctx context.Context, code string, now time.Time) (grants.AccessCode, error) {
	var c grants.AccessCode
	err := s.db.QueryRowContext(ctx,
		`SELECT pet_id, code, created_at, expires_at FROM access_codes WHERE code = $1 AND expires_at > $2`,
		code, now,
	).Scan(&c.PetID, &c.Code, &c.CreatedAt, &c.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return grants.AccessCode{}, grants.ErrNotFound
	}
	if err != nil {
		return grants.AccessCode{}, fmt.Errorf("finding valid code: %w", err)
	}
	return c, nil
}

func (s *GrantStore) CreateToken(ctx context.Context, t grants.Token) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (kind, value, pet_id, created_at, used) VALUES ($1, $2, $3, $4, $5)`,
		t.Kind, t.Value, t.PetID, t.CreatedAt, t.Used,
	)
	if err != nil {
		return fmt.Errorf("creating token: %w", err)
	}
	return nil
}

func (s *GrantStore) GetToken(ctx context.Context, kind grants.TokenKind, value string) (grants.Token, error) {
	var t grants.Token
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, value, pet_id, created_at, used FROM tokens WHERE kind = $1 AND value = $2`,
		kind, value,
	).Scan(&t.Kind, &t.Value, &t.PetID, &t.CreatedAt, &t.Used)
	if errors.Is(err, sql.ErrNoRows) {
		return grants.Token{}, grants.ErrNotFound
	}
	if err != nil {
		return grants.Token{}, fmt.Errorf("getting token: %w", err)
	}
	return t, nil
}

// ConsumeToken hace el flip used=false -> true con un UPDATE condicional.
// Cero filas afectadas significa "ya usado" o "no existe"; un SELECT
// posterior desambigua.
func (s *GrantStore) ConsumeToken(ctx context.Context, kind grants.TokenKind, value string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tokens SET used = TRUE WHERE kind = $1 AND value = $2 AND used = FALSE`,
		kind, value,
	)
	if err != nil {
		return fmt.Errorf("consuming token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consuming token: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tokens WHERE kind = $1 AND value = $2)`,
		kind, value,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("consuming token: %w", err)
	}
	if !exists {
		return grants.ErrNotFound
	}
	return grants.ErrExpiredOrUsed
}

func (s *GrantStore) UpsertVetAccess(ctx context.Context, a grants.VetPetAccess) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vet_access (vet_user_id, pet_id, granted_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (vet_user_id, pet_id) DO UPDATE
		SET granted_by = EXCLUDED.granted_by, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`,
		a.VetUserID, a.PetID, a.GrantedBy, a.CreatedAt, a.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upserting vet access: %w", err)
	}
	return nil
}

func (s *GrantStore) GetVetAccess(ctx context.Context, vetUserID, petID string) (grants.VetPetAccess, error) {
	var a grants.VetPetAccess
	err := s.db.QueryRowContext(ctx,
		`SELECT vet_user_id, pet_id, granted_by, created_at, expires_at FROM vet_access WHERE vet_user_id = $1 AND pet_id = $2`,
		vetUserID, petID,
	).Scan(&a.VetUserID, &a.PetID, &a.GrantedBy, &a.CreatedAt, &a.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return grants.VetPetAccess{}, grants.ErrNotFound
	}
	if err != nil {
		return grants.VetPetAccess{}, fmt.Errorf("getting vet access: %w", err)
	}
	return a, nil
}

func (s *GrantStore) PurgeExpiredUnused(ctx context.Context, kind grants.TokenKind, olderThan time.Time, limit int) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tokens
		WHERE ctid IN (
			SELECT ctid FROM tokens
			WHERE kind = $1 AND used = FALSE AND created_at < $2
			LIMIT $3
		)`,
		kind, olderThan, limit,
	)
	if err != nil {
		return 0, fmt.Errorf("purging tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging tokens: %w", err)
	}
	return int(n), nil
}

func (s *GrantStore) DeleteByPet(ctx context.Context, petID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting grants by pet: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM access_codes WHERE pet_id = $1`,
		`DELETE FROM tokens WHERE pet_id = $1`,
		`DELETE FROM vet_access WHERE pet_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, petID); err != nil {
			return fmt.Errorf("deleting grants by pet: %w", err)
		}
	}
	return tx.Commit()
}
