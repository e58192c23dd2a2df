package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meikuraledutech/narrative"
)

// SaveRanking inserts a ranking and its entries in one transaction.
// If r.ID is empty, a UUID is auto-generated; a zero CreatedAt becomes now.
// Returns the ranking ID (generated or provided).
func (s *PGStore) SaveRanking(ctx context.Context, r *narrative.Ranking) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("narrative: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO narrative_rankings (id, domain, metric, max_length, created_at) VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.Domain, r.Metric, r.MaxLength, r.CreatedAt,
	); err != nil {
		return "", fmt.Errorf("narrative: insert ranking: %w", err)
	}

	for _, e := range r.Entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO narrative_ranking_entries (ranking_id, position, score, intention_ids) VALUES ($1, $2, $3, $4)`,
			r.ID, e.Position, e.Score, e.IntentionIDs,
		); err != nil {
			return "", fmt.Errorf("narrative: insert ranking entry %d: %w", e.Position, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("narrative: commit: %w", err)
	}
	return r.ID, nil
}

// GetRanking fetches a ranking with its entries by ID.
// Returns nil, nil if not found.
func (s *PGStore) GetRanking(ctx context.Context, id string) (*narrative.Ranking, error) {
	r := narrative.Ranking{ID: id}
	err := s.db.QueryRow(ctx,
		`SELECT domain, metric, max_length, created_at FROM narrative_rankings WHERE id = $1`, id,
	).Scan(&r.Domain, &r.Metric, &r.MaxLength, &r.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("narrative: get ranking: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT position, score, intention_ids FROM narrative_ranking_entries WHERE ranking_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("narrative: query ranking entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e narrative.RankingEntry
		if err := rows.Scan(&e.Position, &e.Score, &e.IntentionIDs); err != nil {
			return nil, fmt.Errorf("narrative: scan ranking entry: %w", err)
		}
		r.Entries = append(r.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("narrative: rows ranking entries: %w", err)
	}

	return &r, nil
}

// ListRankings returns the rankings of a domain without their entries,
// newest first. Returns an empty slice (not nil) if none found.
func (s *PGStore) ListRankings(ctx context.Context, domain string) ([]narrative.Ranking, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, metric, max_length, created_at FROM narrative_rankings WHERE domain = $1 ORDER BY created_at DESC, id`, domain)
	if err != nil {
		return nil, fmt.Errorf("narrative: list rankings: %w", err)
	}
	defer rows.Close()

	rankings := []narrative.Ranking{}
	for rows.Next() {
		r := narrative.Ranking{Domain: domain}
		if err := rows.Scan(&r.ID, &r.Metric, &r.MaxLength, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("narrative: scan ranking: %w", err)
		}
		rankings = append(rankings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("narrative: rows rankings: %w", err)
	}
	return rankings, nil
}
