// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/signwise/auth"
	"github.com/danielhkuo/signwise/cliparse"
	"github.com/danielhkuo/signwise/db"
	"github.com/danielhkuo/signwise/gamify"
	"github.com/danielhkuo/signwise/inference"
	"github.com/danielhkuo/signwise/middleware"
	"github.com/danielhkuo/signwise/models"
	"github.com/danielhkuo/signwise/phash"
)

const (
	uploadField = "image"

	// room for multipart boundaries and part headers on top of the image itself
	multipartOverhead = 64 << 10

	uncategorized = "uncategorized"
)

var noDetectionSuggestions = []string{
	"Make sure the traffic sign is clearly visible",
	"Try a photo with better lighting",
	"Ensure the sign is not too far away",
}

type RecognitionHandler struct {
	db        *sql.DB
	cfg       cliparse.Config
	predictor inference.Predictor
	detector  *phash.Detector
	hashes    db.HashStore
	locks     *visitorLocks
}

func NewRecognitionHandler(db *sql.DB, cfg cliparse.Config, predictor inference.Predictor) *RecognitionHandler {
	return &RecognitionHandler{
		db:        db,
		cfg:       cfg,
		predictor: predictor,
		detector:  newDetector(cfg),
		hashes:    newHashStore(db, cfg),
		locks:     newVisitorLocks(),
	}
}

// recognitionOutcome is what the transactional part of Recognize produced
type recognitionOutcome struct {
	sign     models.Sign
	xp       int
	progress models.UserProgress
}

// Recognize handles POST /api/recognize
// Multipart field "image". Duplicate photos are recorded but earn no XP.
func (h *RecognitionHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	visitorID := middleware.VisitorID(r)
	if visitorID == "" {
		visitorID = auth.NewVisitorID()
	} else if err := auth.ValidateVisitorID(visitorID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid visitor ID")
		return
	}
	w.Header().Set(middleware.VisitorHeader, visitorID)

	upload, status, msg := h.readUpload(w, r)
	if status != 0 {
		middleware.ErrorResponse(w, status, msg)
		return
	}

	slog.Info("image received",
		"visitor_id", visitorID,
		"filename", upload.Filename,
		"content_type", upload.ContentType,
		"size", humanize.Bytes(uint64(len(upload.Data))),
	)

	result, err := h.predictor.Predict(r.Context(), upload)
	if err != nil {
		if errors.Is(err, inference.ErrUnavailable) {
			slog.Warn("inference service unavailable", "error", err)
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Recognition service is currently unavailable. Please try again later.")
			return
		}
		slog.Error("inference failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Recognition service error")
		return
	}

	if len(result.Predictions) == 0 {
		middleware.JSONResponse(w, http.StatusOK, models.NoDetectionResponse{
			Success:     false,
			Message:     "No traffic signs detected in the image. Try uploading a clearer image.",
			Suggestions: noDetectionSuggestions,
		})
		return
	}

	top := topPrediction(result.Predictions)
	imageHash := h.resolveHash(result.ImagePHash, upload.Data)

	unlock := h.locks.lock(visitorID)
	defer unlock()

	history, err := h.hashes.History(r.Context(), visitorID)
	if err != nil {
		slog.Error("failed to load hash history", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "cannot determine duplicate status")
		return
	}

	verdict, err := h.detector.CheckDuplicate(visitorID, imageHash, history)
	if err != nil {
		slog.Error("stored hash history is corrupt", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "cannot determine duplicate status")
		return
	}
	if verdict.IsDuplicate {
		slog.Info("duplicate image detected",
			"visitor_id", visitorID,
			"phash", imageHash,
			"matching_hash", verdict.Match,
			"distance", verdict.Distance,
		)
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt)
	outcome, err := h.record(r.Context(), visitorID, top, verdict, imageHash, ipHash)
	if err != nil {
		slog.Error("failed to record recognition", "error", err, "visitor_id", visitorID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record recognition")
		return
	}

	slog.Info("sign recognized",
		"visitor_id", visitorID,
		"sign", outcome.sign.Name,
		"confidence", top.Confidence,
		"xp_earned", outcome.xp,
		"is_duplicate", verdict.IsDuplicate,
	)

	rec := models.RecognitionResult{
		Sign:        outcome.sign,
		Confidence:  top.Confidence,
		BBox:        top.BBox,
		XPEarned:    outcome.xp,
		IsDuplicate: verdict.IsDuplicate,
		PHash:       imageHash,
	}
	if verdict.IsDuplicate {
		d := verdict.Distance
		rec.DuplicateDistance = &d
	}

	middleware.JSONResponse(w, http.StatusOK, models.RecognizeResponse{
		Success:     true,
		VisitorID:   visitorID,
		Recognition: rec,
		Progress: models.ProgressSummary{
			TotalXP: outcome.progress.XP,
			Level:   outcome.progress.Level,
		},
		InferenceTimeMS: result.InferenceTimeMS,
	})
}

// readUpload pulls the image out of the multipart body. A non-zero status
// means the request was rejected with msg.
func (h *RecognitionHandler) readUpload(w http.ResponseWriter, r *http.Request) (inference.Upload, int, string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+multipartOverhead)
	tooLarge := fmt.Sprintf("Image too large. Maximum size is %s.", humanize.IBytes(uint64(h.cfg.MaxUploadBytes)))

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return inference.Upload{}, http.StatusRequestEntityTooLarge, tooLarge
		}
		return inference.Upload{}, http.StatusBadRequest, "Expected a multipart form with an image field"
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return inference.Upload{}, http.StatusBadRequest, "No image file provided"
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		return inference.Upload{}, http.StatusBadRequest, "Failed to read image"
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		return inference.Upload{}, http.StatusRequestEntityTooLarge, tooLarge
	}
	if len(data) == 0 {
		return inference.Upload{}, http.StatusBadRequest, "Image file is empty"
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
		if !strings.HasPrefix(contentType, "image/") {
			return inference.Upload{}, http.StatusUnsupportedMediaType, "Invalid file type. Please upload an image file (JPEG, PNG, WebP)."
		}
	}

	return inference.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, 0, ""
}

// resolveHash prefers the service's pHash and falls back to hashing locally.
// An empty result disables duplicate detection for this upload.
func (h *RecognitionHandler) resolveHash(fromService string, data []byte) string {
	if hash := phash.Normalize(fromService); hash != "" {
		if err := phash.Validate(hash, h.detector.Bits); err == nil {
			return hash
		}
		slog.Warn("ignoring malformed phash from inference service", "phash", fromService)
	}

	hash, err := phash.ComputeBytes(data)
	if err != nil {
		slog.Warn("could not hash image locally", "error", err)
		return ""
	}
	if err := phash.Validate(hash, h.detector.Bits); err != nil {
		slog.Warn("local phash width does not match configured width", "error", err)
		return ""
	}
	return hash
}

// record writes everything a recognition changes in one transaction
func (h *RecognitionHandler) record(ctx context.Context, visitorID string, pred models.Prediction, verdict phash.Verdict, imageHash, ipHash string) (recognitionOutcome, error) {
	dialect := h.cfg.DatabaseType

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return recognitionOutcome{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	sign, err := findOrCreateSign(ctx, tx, dialect, pred)
	if err != nil {
		return recognitionOutcome{}, err
	}

	now := time.Now().UTC()
	progress, err := ensureProgress(ctx, tx, dialect, visitorID, now)
	if err != nil {
		return recognitionOutcome{}, err
	}

	xp := gamify.RecognitionXP(pred.Confidence, verdict.IsDuplicate)
	if !verdict.IsDuplicate {
		progress.XP += xp
		progress.SignsLearned++
	}
	touchProgress(&progress, now)

	if err := saveProgress(ctx, tx, dialect, progress); err != nil {
		return recognitionOutcome{}, err
	}

	_, err = tx.ExecContext(ctx, db.Rebind(dialect, `
		INSERT INTO recognition (id, visitor_id, sign_id, confidence, xp_earned, is_duplicate, ip_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), uuid.NewString(), visitorID, sign.ID, pred.Confidence, xp, verdict.IsDuplicate, ipHash, now)
	if err != nil {
		return recognitionOutcome{}, fmt.Errorf("inserting recognition: %w", err)
	}

	if !verdict.IsDuplicate && imageHash != "" {
		classID := pred.ClassID
		err := db.NewHashStore(tx, dialect).Append(ctx, phash.HashRecord{
			OwnerID:     visitorID,
			PHash:       imageHash,
			SignClassID: &classID,
			CreatedAt:   now,
		})
		if err != nil {
			return recognitionOutcome{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return recognitionOutcome{}, fmt.Errorf("committing recognition: %w", err)
	}

	return recognitionOutcome{sign: sign, xp: xp, progress: progress}, nil
}

// findOrCreateSign matches the prediction by class id, then by name,
// and creates a catalogue entry when neither exists
func findOrCreateSign(ctx context.Context, tx *sql.Tx, dialect string, pred models.Prediction) (models.Sign, error) {
	byClass := db.Rebind(dialect, "SELECT "+signColumns+" FROM sign WHERE class_id = ?")

	sign, err := scanSign(tx.QueryRowContext(ctx, byClass, pred.ClassID))
	if err == nil {
		return sign, nil
	}
	if err != sql.ErrNoRows {
		return models.Sign{}, fmt.Errorf("finding sign by class: %w", err)
	}

	sign, err = scanSign(tx.QueryRowContext(ctx, db.Rebind(dialect,
		"SELECT "+signColumns+" FROM sign WHERE LOWER(name) = ? ORDER BY id LIMIT 1"), strings.ToLower(pred.ClassName)))
	if err == nil {
		return sign, nil
	}
	if err != sql.ErrNoRows {
		return models.Sign{}, fmt.Errorf("finding sign by name: %w", err)
	}

	category := pred.Category
	if category == "" {
		category = uncategorized
	}
	_, err = tx.ExecContext(ctx, db.Rebind(dialect, `
		INSERT INTO sign (id, class_id, name, category, description, rules, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (class_id) DO NOTHING
	`), uuid.NewString(), pred.ClassID, pred.ClassName, category,
		fmt.Sprintf("This is a %s traffic sign.", pred.ClassName),
		fmt.Sprintf("Follow the %s sign guidelines when driving.", pred.ClassName),
		"/signs/default.png", time.Now().UTC())
	if err != nil {
		return models.Sign{}, fmt.Errorf("creating sign: %w", err)
	}

	slog.Info("created sign from prediction", "class_id", pred.ClassID, "name", pred.ClassName)

	sign, err = scanSign(tx.QueryRowContext(ctx, byClass, pred.ClassID))
	if err != nil {
		return models.Sign{}, fmt.Errorf("loading created sign: %w", err)
	}
	return sign, nil
}

// topPrediction returns the most confident prediction
func topPrediction(preds []models.Prediction) models.Prediction {
	top := preds[0]
	for _, p := range preds[1:] {
		if p.Confidence > top.Confidence {
			top = p
		}
	}
	return top
}
