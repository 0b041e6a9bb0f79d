// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - DatabaseURL: Database connection string or sqlite file path (required)
  - DatabaseType: "sqlite" (default) or "postgres"

# CLI Flags

	-d  Database URL
	-t  Database type

# Environment Variables

Flags fall back to environment variables:

	DATABASE_URL  → -d
	DATABASE_TYPE → -t

A .env file in the working directory is loaded first (via godotenv), so
either variable can be kept there for development. CLI flags take
precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_URL is missing or the database
type is not sqlite/postgres.

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	svc := engine.NewService(conn, issueStore, userDirectory, projectRegistry)
*/
package cliparse
