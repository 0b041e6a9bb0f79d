// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "sqlite" (modernc.org/sqlite, no cgo) and
"postgres" (lib/pq).

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - estimation_session: Session metadata, lifecycle status, current issue pointer
  - participant: Membership and presence per (session, user)
  - issue_assignment: One issue bound to one session with voting progress
  - vote: One vote per (assignment, voter, round)

# Relationships

	estimation_session 1──* participant
	estimation_session 1──* issue_assignment
	issue_assignment   1──* vote

All foreign keys use ON DELETE CASCADE.

# Upsert Keys

Unique constraints back the replace-on-resubmit semantics:

  - vote.(assignment_id, voter_id, round)
  - issue_assignment.(session_id, issue_id) and (session_id, position)
  - participant.(session_id, user_id)
*/
package db
