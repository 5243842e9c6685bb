package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pet-medical-records/internal/domain/pets"
)

// PetRepo implementa pets.Repository sobre Postgres.
//
// Esquema esperado:
//
//	pets       (id text primary key, name text, species text, breed text, sex text,
//	            birth_date date null, microchip text, notes text,
//	            created_at timestamptz, updated_at timestamptz)
//	pet_owners (pet_id text references pets(id), user_id text, pending boolean,
//	            primary key (pet_id, user_id))
type PetRepo struct {
	db *sql.DB
}

func NewPetRepo(db *sql.DB) *PetRepo {
	return &PetRepo{db: db}
}

func (r *PetRepo) Create(ctx context.Context, p pets.Pet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("creating pet: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pets (id, name, species, breed, sex, birth_date, microchip, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.Species, p.Breed, p.Sex, p.BirthDate, p.Microchip, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating pet: %w", err)
	}

	if err := replaceOwners(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PetRepo) Update(ctx context.Context, p pets.Pet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("updating pet: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE pets
		SET name = $2, species = $3, breed = $4, sex = $5, birth_date = $6,
		    microchip = $7, notes = $8, updated_at = $9
		WHERE id = $1`,
		p.ID, p.Name, p.Species, p.Breed, p.Sex, p.BirthDate, p.Microchip, p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating pet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating pet: %w", err)
	}
	if n == 0 {
		return pets.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pet_owners WHERE pet_id = $1`, p.ID); err != nil {
		return fmt.Errorf("updating pet owners: %w", err)
	}
	if err := replaceOwners(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	var p pets.Pet
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, species, breed, sex, birth_date, microchip, notes, created_at, updated_at
		FROM pets WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Species, &p.Breed, &p.Sex, &p.BirthDate, &p.Microchip, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	if err != nil {
		return pets.Pet{}, fmt.Errorf("getting pet: %w", err)
	}

	if err := r.loadOwners(ctx, &p); err != nil {
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.species, p.breed, p.sex, p.birth_date, p.microchip, p.notes, p.created_at, p.updated_at
		FROM pets p
		JOIN pet_owners o ON o.pet_id = p.id
		WHERE o.user_id = $1 AND o.pending = FALSE
		ORDER BY p.created_at`,
		ownerUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pets: %w", err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		var p pets.Pet
		if err := rows.Scan(&p.ID, &p.Name, &p.Species, &p.Breed, &p.Sex, &p.BirthDate, &p.Microchip, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("listing pets: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing pets: %w", err)
	}

	for i := range out {
		if err := r.loadOwners(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PetRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting pet: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pet_owners WHERE pet_id = $1`, id); err != nil {
		return fmt.Errorf("deleting pet owners: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting pet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting pet: %w", err)
	}
	if n == 0 {
		return pets.ErrNotFound
	}
	return tx.Commit()
}

func replaceOwners(ctx context.Context, tx *sql.Tx, p pets.Pet) error {
	for _, userID := range p.Owners {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pet_owners (pet_id, user_id, pending) VALUES ($1, $2, FALSE)`,
			p.ID, userID,
		); err != nil {
			return fmt.Errorf("inserting pet owner: %w", err)
		}
	}
	for _, userID := range p.PendingOwners {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pet_owners (pet_id, user_id, pending) VALUES ($1, $2, TRUE)`,
			p.ID, userID,
		); err != nil {
			return fmt.Errorf("inserting pending owner: %w", err)
		}
	}
	return nil
}

func (r *PetRepo) loadOwners(ctx context.Context, p *pets.Pet) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, pending FROM pet_owners WHERE pet_id = $1 ORDER BY user_id`,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("loading pet owners: %w", err)
	}
	defer rows.Close()

	p.Owners = make([]string, 0)
	p.PendingOwners = make([]string, 0)
	for rows.Next() {
		var userID string
		var pending bool
		if err := rows.Scan(&userID, &pending); err != nil {
			return fmt.Errorf("loading pet owners: %w", err)
		}
		if pending {
			p.PendingOwners = append(p.PendingOwners, userID)
		} else {
			p.Owners = append(p.Owners, userID)
		}
	}
	return rows.Err()
}
