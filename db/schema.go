// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the estimation engine.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Estimation sessions
CREATE TABLE IF NOT EXISTS estimation_session (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    project_id TEXT NOT NULL,
    sprint_id TEXT,
    scale TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'created' CHECK (status IN ('created', 'waiting', 'voting', 'discussing', 'completed')),
    anonymous_voting BOOLEAN NOT NULL DEFAULT FALSE,
    auto_reveal BOOLEAN NOT NULL DEFAULT FALSE,
    discussion_time_limit_seconds INTEGER NOT NULL DEFAULT 0,
    current_issue_id TEXT,
    facilitator_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_session_project_id ON estimation_session(project_id);
CREATE INDEX IF NOT EXISTS idx_session_status ON estimation_session(status);

-- Participants
CREATE TABLE IF NOT EXISTS participant (
    session_id TEXT NOT NULL REFERENCES estimation_session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'joined' CHECK (status IN ('invited', 'joined', 'voting', 'voted', 'left')),
    is_online BOOLEAN NOT NULL DEFAULT TRUE,
    last_seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (session_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_participant_session_id ON participant(session_id);

-- Issue assignments
CREATE TABLE IF NOT EXISTS issue_assignment (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES estimation_session(id) ON DELETE CASCADE,
    issue_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'voting', 'discussing', 'estimated', 'skipped')),
    position INTEGER NOT NULL,
    voting_round INTEGER NOT NULL DEFAULT 1,
    final_estimate REAL,
    has_consensus BOOLEAN NOT NULL DEFAULT FALSE,
    discussion_notes TEXT NOT NULL DEFAULT '',
    UNIQUE (session_id, issue_id),
    UNIQUE (session_id, position)
);

CREATE INDEX IF NOT EXISTS idx_assignment_session_id ON issue_assignment(session_id);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    assignment_id TEXT NOT NULL REFERENCES issue_assignment(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    round INTEGER NOT NULL DEFAULT 1,
    estimate REAL,
    estimate_text TEXT NOT NULL,
    rationale TEXT NOT NULL DEFAULT '',
    is_revealed BOOLEAN NOT NULL DEFAULT FALSE,
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (assignment_id, voter_id, round)
);

CREATE INDEX IF NOT EXISTS idx_vote_assignment_id ON vote(assignment_id);
CREATE INDEX IF NOT EXISTS idx_vote_assignment_round ON vote(assignment_id, round);
`
