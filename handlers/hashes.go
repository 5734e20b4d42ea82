// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/signwise/cliparse"
	"github.com/danielhkuo/signwise/db"
	"github.com/danielhkuo/signwise/middleware"
	"github.com/danielhkuo/signwise/models"
	"github.com/danielhkuo/signwise/phash"
)

const (
	defaultHashLimit = 100
	maxHashLimit     = 1000
)

type HashHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	detector *phash.Detector
	hashes   *db.SQLHashStore
}

func NewHashHandler(db *sql.DB, cfg cliparse.Config) *HashHandler {
	return &HashHandler{
		db:       db,
		cfg:      cfg,
		detector: newDetector(cfg),
		hashes:   newHashStore(db, cfg),
	}
}

// CheckHash handles POST /api/hashes/check
// Reports whether a hash duplicates the visitor's history. Nothing is stored.
func (h *HashHandler) CheckHash(w http.ResponseWriter, r *http.Request) {
	visitorID, ok := requireVisitor(w, r)
	if !ok {
		return
	}

	var req models.CheckHashRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	hash := phash.Normalize(req.PHash)
	if hash == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "phash is required")
		return
	}
	if err := phash.Validate(hash, h.detector.Bits); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := h.hashes.History(r.Context(), visitorID)
	if err != nil {
		slog.Error("failed to load hash history", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "cannot determine duplicate status")
		return
	}

	verdict, err := h.detector.CheckDuplicate(visitorID, hash, history)
	if err != nil {
		slog.Error("stored hash history is corrupt", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "cannot determine duplicate status")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CheckHashResponse{
		IsDuplicate:  verdict.IsDuplicate,
		MatchingHash: verdict.Match,
		Distance:     verdict.Distance,
		Threshold:    h.detector.Threshold,
		Compared:     verdict.Compared,
	})
}

// ListHashes handles GET /api/hashes
// Returns the visitor's stored hashes, newest first
func (h *HashHandler) ListHashes(w http.ResponseWriter, r *http.Request) {
	visitorID, ok := requireVisitor(w, r)
	if !ok {
		return
	}

	limit := defaultHashLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHashLimit)
	}

	records, err := h.hashes.Recent(r.Context(), visitorID, limit)
	if err != nil {
		slog.Error("failed to list hashes", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	entries := make([]models.HashEntry, len(records))
	for i, rec := range records {
		entries[i] = models.HashEntry{
			ID:          rec.ID,
			PHash:       rec.PHash,
			SignClassID: rec.SignClassID,
			CreatedAt:   rec.CreatedAt,
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.HashListResponse{Hashes: entries})
}

// newDetector builds the duplicate detector from config. ParseFlags has
// already validated the pair, so the fallback only covers hand-built configs.
func newDetector(cfg cliparse.Config) *phash.Detector {
	d, err := phash.NewDetector(cfg.DuplicateThreshold, cfg.HashBits)
	if err != nil {
		slog.Warn("invalid duplicate detector config, using defaults", "error", err)
		return phash.Default()
	}
	return d
}

func newHashStore(conn *sql.DB, cfg cliparse.Config) *db.SQLHashStore {
	return db.NewHashStore(conn, cfg.DatabaseType)
}
