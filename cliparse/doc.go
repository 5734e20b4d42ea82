// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                  Server port
	-d                  Database URL
	-t                  Database type (sqlite or postgres)
	-inference-url      YOLO inference service base URL
	-inference-timeout  Timeout for inference requests
	-threshold          Max Hamming distance counted as duplicate
	-hash-bits          Perceptual hash width in bits
	-max-upload         Max upload size in bytes
	-ip-salt            IP hash salt
	-seed               Seed the sign catalogue on startup

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p  (default 3318)
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t  (default sqlite)
	YOLO_SERVICE_URL    → -inference-url (default http://localhost:8000)
	YOLO_TIMEOUT        → -inference-timeout (default 30s)
	DUPLICATE_THRESHOLD → -threshold (default 5)
	HASH_BITS           → -hash-bits (default 64)
	MAX_UPLOAD_BYTES    → -max-upload (default 10 MiB)
	IP_HASH_SALT        → -ip-salt
	SEED_SIGNS=true     → -seed

CLI flags take precedence over environment variables. main loads a .env
file before parsing, so values there behave like real environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - IP_HASH_SALT is missing
  - the database type is not sqlite or postgres
  - the threshold/width pair is rejected by phash.NewDetector
*/
package cliparse
