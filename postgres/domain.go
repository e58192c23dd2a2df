package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/narrative"
)

// SaveDomain stores a full domain (intentions + dependencies) in one
// transaction, replacing any domain of the same name. Rankings of a replaced
// domain are kept. Domains that fail narrative.Validate are rejected with a
// *narrative.BuildError.
func (s *PGStore) SaveDomain(ctx context.Context, d *narrative.Domain) error {
	if problems := narrative.Validate(d); len(problems) > 0 {
		return &narrative.BuildError{Problems: problems}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("narrative: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO narrative_domains (name, description, characters, locations)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE
		 SET description = EXCLUDED.description, characters = EXCLUDED.characters, locations = EXCLUDED.locations`,
		d.Name, d.Description, d.Characters, d.Locations,
	); err != nil {
		return fmt.Errorf("narrative: upsert domain: %w", err)
	}

	// Replace semantics for the domain's contents.
	if _, err := tx.Exec(ctx, `DELETE FROM narrative_dependencies WHERE domain = $1`, d.Name); err != nil {
		return fmt.Errorf("narrative: delete dependencies: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM narrative_intentions WHERE domain = $1`, d.Name); err != nil {
		return fmt.Errorf("narrative: delete intentions: %w", err)
	}

	for i, in := range d.Intentions {
		meta, err := encodeMetadata(in.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO narrative_intentions (domain, position, id, character, target, location, description, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			d.Name, i, in.ID, in.Character, in.Target, in.Location, in.Description, meta,
		); err != nil {
			return fmt.Errorf("narrative: insert intention %s: %w", in.ID, err)
		}
	}

	for i, dep := range d.Dependencies {
		meta, err := encodeMetadata(dep.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO narrative_dependencies (domain, position, from_intention, to_intention, type, description, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			d.Name, i, dep.From, dep.To, string(dep.Type), dep.Description, meta,
		); err != nil {
			return fmt.Errorf("narrative: insert dependency %s -> %s: %w", dep.From, dep.To, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("narrative: commit: %w", err)
	}
	return nil
}

// GetDomain retrieves a full domain by name, in its original order.
// Returns nil, nil if the domain doesn't exist.
func (s *PGStore) GetDomain(ctx context.Context, name string) (*narrative.Domain, error) {
	d := &narrative.Domain{Name: name}
	err := s.db.QueryRow(ctx,
		`SELECT description, characters, locations FROM narrative_domains WHERE name = $1`, name,
	).Scan(&d.Description, &d.Characters, &d.Locations)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("narrative: get domain: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, character, target, location, description, metadata
		 FROM narrative_intentions WHERE domain = $1 ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("narrative: query intentions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var in narrative.Intention
		var meta []byte
		if err := rows.Scan(&in.ID, &in.Character, &in.Target, &in.Location, &in.Description, &meta); err != nil {
			return nil, fmt.Errorf("narrative: scan intention: %w", err)
		}
		if in.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		d.Intentions = append(d.Intentions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("narrative: rows intentions: %w", err)
	}

	rows, err = s.db.Query(ctx,
		`SELECT from_intention, to_intention, type, description, metadata
		 FROM narrative_dependencies WHERE domain = $1 ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("narrative: query dependencies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dep narrative.Dependency
		var typ string
		var meta []byte
		if err := rows.Scan(&dep.From, &dep.To, &typ, &dep.Description, &meta); err != nil {
			return nil, fmt.Errorf("narrative: scan dependency: %w", err)
		}
		dep.Type = narrative.DependencyType(typ)
		if dep.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		d.Dependencies = append(d.Dependencies, dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("narrative: rows dependencies: %w", err)
	}

	return d, nil
}

// DeleteDomain removes a domain with its intentions, dependencies and rankings.
// No error if the domain doesn't exist.
func (s *PGStore) DeleteDomain(ctx context.Context, name string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM narrative_domains WHERE name = $1`, name); err != nil {
		return fmt.Errorf("narrative: delete domain: %w", err)
	}
	return nil
}

// ListDomains returns every domain name, sorted.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM narrative_domains ORDER BY name`)
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
