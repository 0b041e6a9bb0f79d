// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storypoker is a collaborative estimation ("planning poker")
engine: multi-participant, round-based voting on issues with
facilitator-driven state transitions, automatic reveal, consensus
assessment, and per-issue round restarts.

# Wiring

The engine persists to sqlite or PostgreSQL and talks to the rest of an
issue tracker through three small interfaces:

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

	svc := engine.NewService(conn, issueStore, userDirectory, projectRegistry)

An API layer exposes the Service operations however it likes; nothing in
this module mandates a wire format.

# Architecture

  - engine: session orchestration, issue queue, vote ledger, participants
  - scales: static catalog of estimation scales
  - models: domain types, projections, status transition tables
  - db: connection and schema
  - cliparse: configuration parsing
  - testutil: test database and collaborator doubles

See package documentation for each component.
*/
package storypoker
