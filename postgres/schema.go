package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS narrative_domains (
    name        TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    characters  TEXT[],
    locations   TEXT[],
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS narrative_intentions (
    domain      TEXT NOT NULL REFERENCES narrative_domains(name) ON DELETE CASCADE,
    position    INT  NOT NULL,
    id          TEXT NOT NULL,
    character   TEXT NOT NULL,
    target      TEXT NOT NULL,
    location    TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    metadata    JSONB,
    PRIMARY KEY (domain, id)
);

CREATE TABLE IF NOT EXISTS narrative_dependencies (
    domain         TEXT NOT NULL REFERENCES narrative_domains(name) ON DELETE CASCADE,
    position       INT  NOT NULL,
    from_intention TEXT NOT NULL,
    to_intention   TEXT NOT NULL,
    type           TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    metadata       JSONB,
    PRIMARY KEY (domain, position)
);

CREATE TABLE IF NOT EXISTS narrative_rankings (
    id         TEXT PRIMARY KEY,
    domain     TEXT NOT NULL REFERENCES narrative_domains(name) ON DELETE CASCADE,
    metric     TEXT NOT NULL,
    max_length INT  NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS narrative_ranking_entries (
    ranking_id    TEXT NOT NULL REFERENCES narrative_rankings(id) ON DELETE CASCADE,
    position      INT  NOT NULL,
    score         DOUBLE PRECISION NOT NULL,
    intention_ids TEXT[] NOT NULL,
    PRIMARY KEY (ranking_id, position)
);

CREATE INDEX IF NOT EXISTS idx_narrative_rankings_domain ON narrative_rankings(domain);
`

// CreateSchema creates the narrative tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the narrative tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS narrative_ranking_entries, narrative_rankings, narrative_dependencies, narrative_intentions, narrative_domains CASCADE;`)
	return err
}
