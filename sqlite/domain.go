package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meikuraledutech/narrative"
)

// SaveDomain stores a full domain in one transaction, replacing any domain
// of the same name. Domains that fail narrative.Validate are rejected with a
// *narrative.BuildError.
func (s *Store) SaveDomain(ctx context.Context, d *narrative.Domain) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if problems := narrative.Validate(d); len(problems) > 0 {
		return &narrative.BuildError{Problems: problems}
	}

	characters, err := encodeJSON(d.Characters, d.Characters == nil)
	if err != nil {
		return err
	}
	locations, err := encodeJSON(d.Locations, d.Locations == nil)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("narrative: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO narrative_domains (name, description, characters, locations)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE
		 SET description = excluded.description, characters = excluded.characters, locations = excluded.locations`,
		d.Name, d.Description, characters, locations,
	); err != nil {
		return fmt.Errorf("narrative: upsert domain: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM narrative_dependencies WHERE domain = ?`, d.Name); err != nil {
		return fmt.Errorf("narrative: delete dependencies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM narrative_intentions WHERE domain = ?`, d.Name); err != nil {
		return fmt.Errorf("narrative: delete intentions: %w", err)
	}

	for i, in := range d.Intentions {
		meta, err := encodeJSON(in.Metadata, in.Metadata == nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO narrative_intentions (domain, position, id, character, target, location, description, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.Name, i, in.ID, in.Character, in.Target, in.Location, in.Description, meta,
		); err != nil {
			return fmt.Errorf("narrative: insert intention %s: %w", in.ID, err)
		}
	}

	for i, dep := range d.Dependencies {
		meta, err := encodeJSON(dep.Metadata, dep.Metadata == nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO narrative_dependencies (domain, position, from_intention, to_intention, type, description, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.Name, i, dep.From, dep.To, string(dep.Type), dep.Description, meta,
		); err != nil {
			return fmt.Errorf("narrative: insert dependency %s -> %s: %w", dep.From, dep.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("narrative: commit: %w", err)
	}
	return nil
}

// GetDomain retrieves a full domain by name, in its original order.
// Returns nil, nil if the domain doesn't exist.
func (s *Store) GetDomain(ctx context.Context, name string) (*narrative.Domain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := &narrative.Domain{Name: name}
	var characters, locations sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT description, characters, locations FROM narrative_domains WHERE name = ?`, name,
	).Scan(&d.Description, &characters, &locations)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("narrative: get domain: %w", err)
	}
	if err := decodeJSON(characters, &d.Characters); err != nil {
		return nil, err
	}
	if err := decodeJSON(locations, &d.Locations); err != nil {
		return nil, err
	}

	if d.Intentions, err = s.listIntentions(ctx, name); err != nil {
		return nil, err
	}
	if d.Dependencies, err = s.listDependencies(ctx, name); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) listIntentions(ctx context.Context, domain string) ([]narrative.Intention, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, character, target, location, description, metadata
		 FROM narrative_intentions WHERE domain = ? ORDER BY position`, domain)
	if err != nil {
		return nil, fmt.Errorf("narrative: query intentions: %w", err)
	}
	defer rows.Close()

	var out []narrative.Intention
	for rows.Next() {
		var in narrative.Intention
		var meta sql.NullString
		if err := rows.Scan(&in.ID, &in.Character, &in.Target, &in.Location, &in.Description, &meta); err != nil {
			return nil, fmt.Errorf("narrative: scan intention: %w", err)
		}
		if err := decodeJSON(meta, &in.Metadata); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("narrative: rows intentions: %w", err)
	}
	return out, nil
}

func (s *Store) listDependencies(ctx context.Context, domain string) ([]narrative.Dependency, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT from_intention, to_intention, type, description, metadata
		 FROM narrative_dependencies WHERE domain = ? ORDER BY position`, domain)
	if err != nil {
		return nil, fmt.Errorf("narrative: query dependencies: %w", err)
	}
	defer rows.Close()

	var out []narrative.Dependency
	for rows.Next() {
		var dep narrative.Dependency
		var typ string
		var meta sql.NullString
		if err := rows.Scan(&dep.From, &dep.To, &typ, &dep.Description, &meta); err != nil {
			return nil, fmt.Errorf("narrative: scan dependency: %w", err)
		}
		dep.Type = narrative.DependencyType(typ)
		if err := decodeJSON(meta, &dep.Metadata); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("narrative: rows dependencies: %w", err)
	}
	return out, nil
}

// DeleteDomain removes a domain with its intentions, dependencies and rankings.
// No error if the domain doesn't exist.
func (s *Store) DeleteDomain(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("narrative: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM narrative_ranking_entries WHERE ranking_id IN (SELECT id FROM narrative_rankings WHERE domain = ?)`,
		`DELETE FROM narrative_rankings WHERE domain = ?`,
		`DELETE FROM narrative_dependencies WHERE domain = ?`,
		`DELETE FROM narrative_intentions WHERE domain = ?`,
		`DELETE FROM narrative_domains WHERE name = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, name); err != nil {
			return fmt.Errorf("narrative: delete domain: %w", err)
		}
	}
	return tx.Commit()
}

// ListDomains returns every domain name, sorted.
// Returns an empty slice (not nil) if none found.
func (s *Store) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM narrative_domains ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("narrative: list domains: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("narrative: scan domain: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("narrative: rows domains: %w", err)
	}
	return names, nil
}
