// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/signwise/cliparse"
	"github.com/danielhkuo/signwise/handlers"
	"github.com/danielhkuo/signwise/inference"
	"github.com/danielhkuo/signwise/middleware"
)

// healthChecker is implemented by *inference.Client
type healthChecker interface {
	Health(ctx context.Context) error
}

const inferenceHealthTimeout = 3 * time.Second

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	client := inference.NewClient(cfg.InferenceURL, cfg.InferenceTimeout)
	return newRouter(db, cfg, client, client)
}

func newRouter(db *sql.DB, cfg cliparse.Config, predictor inference.Predictor, upstream healthChecker) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	signHandler := handlers.NewSignHandler(db, cfg)
	recognitionHandler := handlers.NewRecognitionHandler(db, cfg, predictor)
	hashHandler := handlers.NewHashHandler(db, cfg)
	progressHandler := handlers.NewProgressHandler(db, cfg)

	// Health checks
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /health/inference", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), inferenceHealthTimeout)
		defer cancel()

		if err := upstream.Health(ctx); err != nil {
			slog.Warn("inference health check failed", "error", err)
			middleware.JSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Sign catalogue
	mux.HandleFunc("GET /api/signs", middleware.WithLogging(signHandler.ListSigns))
	mux.HandleFunc("GET /api/signs/{id}", middleware.WithLogging(signHandler.GetSign))

	// Recognition and duplicate detection
	mux.HandleFunc("POST /api/recognize", middleware.WithLogging(recognitionHandler.Recognize))
	mux.HandleFunc("POST /api/hashes/check", middleware.WithLogging(hashHandler.CheckHash))
	mux.HandleFunc("GET /api/hashes", middleware.WithLogging(hashHandler.ListHashes))

	// Progress
	mux.HandleFunc("GET /api/progress", middleware.WithLogging(progressHandler.GetProgress))
	mux.HandleFunc("POST /api/progress/xp", middleware.WithLogging(progressHandler.AwardXP))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("signwise API v1"))
	})

	return mux
}
