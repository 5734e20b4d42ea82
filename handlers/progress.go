// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/signwise/auth"
	"github.com/danielhkuo/signwise/cliparse"
	"github.com/danielhkuo/signwise/db"
	"github.com/danielhkuo/signwise/gamify"
	"github.com/danielhkuo/signwise/middleware"
	"github.com/danielhkuo/signwise/models"
)

const recentActivityLimit = 5

type ProgressHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewProgressHandler(db *sql.DB, cfg cliparse.Config) *ProgressHandler {
	return &ProgressHandler{db: db, cfg: cfg}
}

// GetProgress handles GET /api/progress
// Creates the progress row on first visit
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	visitorID, ok := requireVisitor(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	progress, err := ensureProgress(r.Context(), h.db, h.cfg.DatabaseType, visitorID, now)
	if err != nil {
		slog.Error("failed to load progress", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	resp, err := h.buildProgress(r.Context(), progress, now)
	if err != nil {
		slog.Error("failed to build progress", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// AwardXP handles POST /api/progress/xp
// Body: {"visitor_id": "...", "xp": 25}
func (h *ProgressHandler) AwardXP(w http.ResponseWriter, r *http.Request) {
	var req models.AwardXPRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	visitorID := strings.TrimSpace(req.VisitorID)
	if visitorID == "" {
		visitorID = middleware.VisitorID(r)
	}
	if err := auth.ValidateVisitorID(visitorID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Visitor ID is required")
		return
	}
	if req.XP <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "xp must be a positive integer")
		return
	}

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	progress, err := ensureProgress(ctx, tx, h.cfg.DatabaseType, visitorID, now)
	if err != nil {
		slog.Error("failed to load progress", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	progress.XP += req.XP
	touchProgress(&progress, now)

	if err := saveProgress(ctx, tx, h.cfg.DatabaseType, progress); err != nil {
		slog.Error("failed to save progress", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit xp award", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("xp awarded", "visitor_id", visitorID, "xp", req.XP, "total_xp", progress.XP, "level", progress.Level)

	middleware.JSONResponse(w, http.StatusOK, models.AwardXPResponse{
		Progress: models.ProgressSummary{TotalXP: progress.XP, Level: progress.Level},
	})
}

func (h *ProgressHandler) buildProgress(ctx context.Context, p models.UserProgress, now time.Time) (models.ProgressResponse, error) {
	dialect := h.cfg.DatabaseType

	categories := make(map[string]models.CategoryProgress, len(gamify.Categories))
	for _, c := range gamify.Categories {
		categories[c] = models.CategoryProgress{}
	}

	totals, err := countByCategory(ctx, h.db, "SELECT category, COUNT(*) FROM sign GROUP BY category")
	if err != nil {
		return models.ProgressResponse{}, fmt.Errorf("counting signs per category: %w", err)
	}
	learned, err := countByCategory(ctx, h.db, db.Rebind(dialect, `
		SELECT s.category, COUNT(DISTINCT s.id)
		FROM recognition r
		JOIN sign s ON s.id = r.sign_id
		WHERE r.visitor_id = ?
		GROUP BY s.category
	`), p.VisitorID)
	if err != nil {
		return models.ProgressResponse{}, fmt.Errorf("counting learned signs: %w", err)
	}

	tried := 0
	for c, cp := range categories {
		cp.Total = totals[c]
		cp.Learned = learned[c]
		if cp.Learned > 0 {
			tried++
		}
		categories[c] = cp
	}

	var today int
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := h.db.QueryRowContext(ctx, db.Rebind(dialect, `
		SELECT COUNT(*) FROM recognition WHERE visitor_id = ? AND created_at >= ?
	`), p.VisitorID, startOfDay).Scan(&today); err != nil {
		return models.ProgressResponse{}, fmt.Errorf("counting today's recognitions: %w", err)
	}

	var first *time.Time
	var firstAt time.Time
	err = h.db.QueryRowContext(ctx, db.Rebind(dialect, `
		SELECT created_at FROM recognition WHERE visitor_id = ? ORDER BY created_at ASC LIMIT 1
	`), p.VisitorID).Scan(&firstAt)
	switch {
	case err == nil:
		first = &firstAt
	case err != sql.ErrNoRows:
		return models.ProgressResponse{}, fmt.Errorf("finding first recognition: %w", err)
	}

	activity, err := recentActivity(ctx, h.db, dialect, p.VisitorID)
	if err != nil {
		return models.ProgressResponse{}, err
	}

	badges := gamify.EvaluateBadges(gamify.Stats{
		SignsLearned:      p.SignsLearned,
		Level:             p.Level,
		CurrentStreak:     p.CurrentStreak,
		CategoriesTried:   tried,
		RecognitionsToday: today,
		FirstRecognition:  first,
		LastActive:        p.LastActiveAt,
		Now:               now,
	})

	return models.ProgressResponse{
		VisitorID: p.VisitorID,
		Progress: models.ProgressDetail{
			XP:               p.XP,
			Level:            p.Level,
			XPProgress:       gamify.XPProgress(p.XP),
			XPForNextLevel:   gamify.XPForNextLevel(p.Level),
			SignsLearned:     p.SignsLearned,
			CurrentStreak:    p.CurrentStreak,
			CategoryProgress: categories,
			EarnedBadges:     gamify.EarnedIDs(badges),
			Badges:           badges,
		},
		RecentActivity: activity,
	}, nil
}

func countByCategory(ctx context.Context, q db.Querier, query string, args ...any) (map[string]int, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func recentActivity(ctx context.Context, q db.Querier, dialect, visitorID string) ([]models.Activity, error) {
	rows, err := q.QueryContext(ctx, db.Rebind(dialect, `
		SELECT s.name, r.xp_earned, r.is_duplicate, r.created_at
		FROM recognition r
		JOIN sign s ON s.id = r.sign_id
		WHERE r.visitor_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?
	`), visitorID, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("querying recent activity: %w", err)
	}
	defer rows.Close()

	activity := []models.Activity{}
	for rows.Next() {
		a := models.Activity{Type: models.ActivityRecognition}
		if err := rows.Scan(&a.SignName, &a.XP, &a.Duplicate, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning recent activity: %w", err)
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

// ensureProgress creates the visitor's progress row if needed and loads it
func ensureProgress(ctx context.Context, q db.Querier, dialect, visitorID string, now time.Time) (models.UserProgress, error) {
	_, err := q.ExecContext(ctx, db.Rebind(dialect, `
		INSERT INTO user_progress (visitor_id, xp, level, signs_learned, current_streak, created_at)
		VALUES (?, 0, 1, 0, 0, ?)
		ON CONFLICT (visitor_id) DO NOTHING
	`), visitorID, now)
	if err != nil {
		return models.UserProgress{}, fmt.Errorf("creating progress: %w", err)
	}

	p := models.UserProgress{VisitorID: visitorID}
	var lastActive sql.NullTime
	err = q.QueryRowContext(ctx, db.Rebind(dialect, `
		SELECT xp, level, signs_learned, current_streak, last_active_at, created_at
		FROM user_progress
		WHERE visitor_id = ?
	`), visitorID).Scan(&p.XP, &p.Level, &p.SignsLearned, &p.CurrentStreak, &lastActive, &p.CreatedAt)
	if err != nil {
		return models.UserProgress{}, fmt.Errorf("loading progress: %w", err)
	}
	if lastActive.Valid {
		t := lastActive.Time
		p.LastActiveAt = &t
	}
	return p, nil
}

// touchProgress records activity at now: streak, last-active and level.
// Levels never go down.
func touchProgress(p *models.UserProgress, now time.Time) {
	p.CurrentStreak = gamify.NextStreak(p.LastActiveAt, now, p.CurrentStreak)
	p.LastActiveAt = &now
	p.Level = max(p.Level, gamify.LevelForXP(p.XP))
}

func saveProgress(ctx context.Context, q db.Querier, dialect string, p models.UserProgress) error {
	_, err := q.ExecContext(ctx, db.Rebind(dialect, `
		UPDATE user_progress
		SET xp = ?, level = ?, signs_learned = ?, current_streak = ?, last_active_at = ?
		WHERE visitor_id = ?
	`), p.XP, p.Level, p.SignsLearned, p.CurrentStreak, p.LastActiveAt, p.VisitorID)
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// requireVisitor reads and validates the caller's visitor id, writing a 400 if absent
func requireVisitor(w http.ResponseWriter, r *http.Request) (string, bool) {
	visitorID := middleware.VisitorID(r)
	if visitorID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Visitor ID is required")
		return "", false
	}
	if err := auth.ValidateVisitorID(visitorID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid visitor ID")
		return "", false
	}
	return visitorID, true
}
