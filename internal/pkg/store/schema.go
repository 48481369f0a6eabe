package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateSchema creates all tables needed for the manager service.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Interviews: the flow graph lives in the data column, keyed by qid.
CREATE TABLE IF NOT EXISTS interviews (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    creator INTEGER NOT NULL,
    group_id INTEGER NOT NULL,
    disabled BOOLEAN NOT NULL DEFAULT FALSE,
    locked BOOLEAN NOT NULL DEFAULT FALSE,
    live BOOLEAN NOT NULL DEFAULT FALSE,
    creation_date BIGINT NOT NULL,
    edit_url TEXT NOT NULL,
    stage_url TEXT NOT NULL,
    live_url TEXT NOT NULL,
    start TEXT NOT NULL,
    steps JSONB NOT NULL DEFAULT '[]',
    deliverables JSONB NOT NULL DEFAULT '[]',
    on_complete JSONB NOT NULL DEFAULT '{}',
    distance JSONB NOT NULL DEFAULT '{}',
    data JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_interviews_group ON interviews(group_id);

-- Single global interview id sequence. Read with
-- UPDATE ... RETURNING so allocation is atomic.
CREATE TABLE IF NOT EXISTS counters (
    id INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    interview_count INTEGER NOT NULL DEFAULT 0
);

INSERT INTO counters (id, interview_count)
    VALUES (1, 0)
    ON CONFLICT (id) DO NOTHING;

-- Completed submissions; written by the interview runner, read-only here.
CREATE TABLE IF NOT EXISTS outputs (
    id INTEGER PRIMARY KEY,
    interview_id INTEGER NOT NULL,
    group_id INTEGER NOT NULL,
    answers JSONB NOT NULL DEFAULT '{}',
    date TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_outputs_group_date ON outputs(group_id, date DESC);

-- Manager accounts, consulted by the auth middleware.
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    group_id INTEGER NOT NULL,
    privileges TEXT[] NOT NULL DEFAULT '{}',
    token_hash TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_token ON users(token_hash);
`
