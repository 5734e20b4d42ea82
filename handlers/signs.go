// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/signwise/cliparse"
	"github.com/danielhkuo/signwise/db"
	"github.com/danielhkuo/signwise/middleware"
	"github.com/danielhkuo/signwise/models"
)

const (
	defaultSignLimit = 50
	maxSignLimit     = 200
	relatedSignLimit = 4
)

const signColumns = "id, class_id, name, category, description, rules, image_url"

type SignHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSignHandler(db *sql.DB, cfg cliparse.Config) *SignHandler {
	return &SignHandler{db: db, cfg: cfg}
}

// ListSigns handles GET /api/signs
// Optional query params: category ("all" = no filter), search, limit
func (h *SignHandler) ListSigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultSignLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSignLimit)
	}

	query := "SELECT " + signColumns + " FROM sign WHERE 1=1"
	var args []any
	if category := q.Get("category"); category != "" && category != "all" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if search := strings.TrimSpace(q.Get("search")); search != "" {
		query += " AND LOWER(name) LIKE ?"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += " ORDER BY name ASC LIMIT ?"
	args = append(args, limit)

	signs, err := querySigns(r.Context(), h.db, db.Rebind(h.cfg.DatabaseType, query), args...)
	if err != nil {
		slog.Error("failed to list signs", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load signs")
		return
	}

	categories, err := h.categories(r.Context())
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load signs")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SignListResponse{
		Signs:      signs,
		Total:      len(signs),
		Categories: categories,
	})
}

// GetSign handles GET /api/signs/{id}
// Returns the sign and up to four others from the same category
func (h *SignHandler) GetSign(w http.ResponseWriter, r *http.Request) {
	signID := r.PathValue("id")

	sign, err := scanSign(h.db.QueryRowContext(r.Context(), db.Rebind(h.cfg.DatabaseType,
		"SELECT "+signColumns+" FROM sign WHERE id = ?"), signID))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Sign not found")
		return
	}
	if err != nil {
		slog.Error("failed to query sign", "error", err, "sign_id", signID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	related, err := querySigns(r.Context(), h.db, db.Rebind(h.cfg.DatabaseType, `
		SELECT `+signColumns+`
		FROM sign
		WHERE category = ? AND id <> ?
		ORDER BY name ASC
		LIMIT ?
	`), sign.Category, sign.ID, relatedSignLimit)
	if err != nil {
		slog.Error("failed to query related signs", "error", err, "sign_id", signID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SignDetailResponse{
		Sign:         sign,
		RelatedSigns: related,
	})
}

// categories returns "all" followed by every distinct category in the catalogue
func (h *SignHandler) categories(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT DISTINCT category FROM sign ORDER BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{"all"}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSign(row rowScanner) (models.Sign, error) {
	var s models.Sign
	var classID sql.NullInt64
	if err := row.Scan(&s.ID, &classID, &s.Name, &s.Category, &s.Description, &s.Rules, &s.ImageURL); err != nil {
		return models.Sign{}, err
	}
	if classID.Valid {
		id := int(classID.Int64)
		s.ClassID = &id
	}
	return s, nil
}

func querySigns(ctx context.Context, q db.Querier, query string, args ...any) ([]models.Sign, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signs := []models.Sign{}
	for rows.Next() {
		s, err := scanSign(rows)
		if err != nil {
			return nil, err
		}
		signs = append(signs, s)
	}
	return signs, rows.Err()
}
