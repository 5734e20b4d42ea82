// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SignWise API.

	mux := router.NewRouter(db, cfg)

NewRouter builds the YOLO inference client from cfg and hands it to the
recognition handler.

# Endpoints

Health:

	GET /health           - Process is up
	GET /health/inference - YOLO service answers its own /health

Sign catalogue:

	GET /api/signs      - List (category, search, limit)
	GET /api/signs/{id} - One sign with related signs

Recognition and duplicate detection (visitor via X-Visitor-ID):

	POST /api/recognize    - Upload a photo, earn XP unless it is a duplicate
	POST /api/hashes/check - Duplicate verdict for a pHash, nothing stored
	GET  /api/hashes       - Stored hashes, newest first

Progress:

	GET  /api/progress    - XP, level, streak, badges, recent activity
	POST /api/progress/xp - Award XP
*/
package router
