// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SignWise API server.

SignWise teaches traffic signs. Visitors photograph a sign, a YOLO service
identifies it, and the visitor earns XP. Photos are fingerprinted with a
64-bit perceptual hash so that re-uploading the same (or a recompressed,
resized) photo does not earn XP twice.

# Starting the Server

	DATABASE_URL=file:signwise.db IP_HASH_SALT=dev go run . -seed

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -ip-salt dev

A .env file in the working directory is loaded first.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite DSN or PostgreSQL connection string
  - IP_HASH_SALT (-ip-salt): Secret for hashing client IPs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - YOLO_SERVICE_URL (-inference-url): default http://localhost:8000
  - DUPLICATE_THRESHOLD (-threshold): default 5 bits
  - SEED_SIGNS (-seed): load the built-in sign catalogue

# Architecture

  - handlers: HTTP request handlers (signs, recognition, hashes, progress)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, visitor identity, JSON helpers
  - phash: Hamming distance and the duplicate detector
  - inference: YOLO service client
  - gamify: XP, levels, streaks, badges
  - models: Request/response types
  - auth: Visitor ids and IP hashing
  - db: Schema, seed data, hash history store
  - cliparse: Configuration parsing

The cmd/phashtool command exposes the phash package for operators.
*/
package main
