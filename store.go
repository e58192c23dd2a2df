package narrative

import (
	"context"
	"time"
)

// Ranking is a persisted, ranked enumeration of one domain.
type Ranking struct {
	ID        string         `json:"id,omitempty"`
	Domain    string         `json:"domain"`
	Metric    string         `json:"metric"`
	MaxLength int            `json:"max_length"`
	CreatedAt time.Time      `json:"created_at"`
	Entries   []RankingEntry `json:"entries"`
}

// RankingEntry is one ranked trajectory, stored by intention identifiers.
type RankingEntry struct {
	Position     int      `json:"position"`
	Score        float64  `json:"score"`
	IntentionIDs []string `json:"intention_ids"`
}

// NewRanking turns scored trajectories into a Ranking, keeping their order.
func NewRanking(domain, metric string, maxLength int, scored []Scored) *Ranking {
	r := &Ranking{
		Domain:    domain,
		Metric:    metric,
		MaxLength: maxLength,
		Entries:   make([]RankingEntry, len(scored)),
	}
	for i, s := range scored {
		r.Entries[i] = RankingEntry{Position: i, Score: s.Score, IntentionIDs: s.Trajectory.IDs()}
	}
	return r
}

// Store defines the contract for persisting domains and rankings.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Domains, keyed by name
	SaveDomain(ctx context.Context, d *Domain) error
	GetDomain(ctx context.Context, name string) (*Domain, error)
	DeleteDomain(ctx context.Context, name string) error
	ListDomains(ctx context.Context) ([]string, error)

	// Rankings
	SaveRanking(ctx context.Context, r *Ranking) (string, error)
	GetRanking(ctx context.Context, id string) (*Ranking, error)
	ListRankings(ctx context.Context, domain string) ([]Ranking, error)
}
