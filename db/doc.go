// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation and the image hash store.

# Dialects

PostgreSQL (lib/pq) in production and SQLite (modernc.org/sqlite) for local
development and tests:

	conn, err := db.Open(db.DialectPostgres, cfg.DatabaseURL)

Queries are written with ? placeholders and passed through Rebind, which
rewrites them to $1, $2, ... for PostgreSQL.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - sign: Sign catalogue, unique per YOLO class id
  - user_progress: XP, level, streak per visitor
  - recognition: Every recognition, duplicates included
  - image_hash: Accepted perceptual hashes (append-only)

# Relationships

	sign 1──* recognition

image_hash and user_progress are keyed by visitor id only.

# Hash Store

HashStore is the narrow storage interface the duplicate check needs:

	store := db.NewHashStore(conn, cfg.DatabaseType)
	history, err := store.History(ctx, visitorID)

NewHashStore also accepts a *sql.Tx so appends can join a transaction.
*/
package db
