package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meikuraledutech/narrative"
)

// SaveRanking inserts a ranking and its entries in one transaction.
// If r.ID is empty, a UUID is auto-generated; a zero CreatedAt becomes now.
func (s *Store) SaveRanking(ctx context.Context, r *narrative.Ranking) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("narrative: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO narrative_rankings (id, domain, metric, max_length, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Domain, r.Metric, r.MaxLength, toMillis(r.CreatedAt),
	); err != nil {
		return "", fmt.Errorf("narrative: insert ranking: %w", err)
	}

	for _, e := range r.Entries {
		ids, err := encodeJSON(e.IntentionIDs, false)
		if err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO narrative_ranking_entries (ranking_id, position, score, intention_ids) VALUES (?, ?, ?, ?)`,
			r.ID, e.Position, e.Score, ids,
		); err != nil {
			return "", fmt.Errorf("narrative: insert ranking entry %d: %w", e.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("narrative: commit: %w", err)
	}
	return r.ID, nil
}

// GetRanking fetches a ranking with its entries by ID.
// Returns nil, nil if not found.
func (s *Store) GetRanking(ctx context.Context, id string) (*narrative.Ranking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := narrative.Ranking{ID: id}
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT domain, metric, max_length, created_at FROM narrative_rankings WHERE id = ?`, id,
	).Scan(&r.Domain, &r.Metric, &r.MaxLength, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("narrative: get ranking: %w", err)
	}
	r.CreatedAt = fromMillis(created)

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, score, intention_ids FROM narrative_ranking_entries WHERE ranking_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("narrative: query ranking entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e narrative.RankingEntry
		var ids sql.NullString
		if err := rows.Scan(&e.Position, &e.Score, &ids); err != nil {
			return nil, fmt.Errorf("narrative: scan ranking entry: %w", err)
		}
		if err := decodeJSON(ids, &e.IntentionIDs); err != nil {
			return nil, err
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
func (s *Store) ListRankings(ctx context.Context, domain string) ([]narrative.Ranking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, metric, max_length, created_at FROM narrative_rankings WHERE domain = ? ORDER BY created_at DESC, id`, domain)
	if err != nil {
		return nil, fmt.Errorf("narrative: list rankings: %w", err)
	}
	defer rows.Close()

	rankings := []narrative.Ranking{}
	for rows.Next() {
		r := narrative.Ranking{Domain: domain}
		var created int64
		if err := rows.Scan(&r.ID, &r.Metric, &r.MaxLength, &created); err != nil {
			return nil, fmt.Errorf("narrative: scan ranking: %w", err)
		}
		r.CreatedAt = fromMillis(created)
		rankings = append(rankings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("narrative: rows rankings: %w", err)
	}
	return rankings, nil
}
