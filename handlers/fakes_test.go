// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/signwise/inference"
	"github.com/danielhkuo/signwise/models"
	"github.com/danielhkuo/signwise/phash"
)

// fakePredictor answers every Predict call with a fixed response or error
type fakePredictor struct {
	resp  *models.PredictionResponse
	err   error
	calls atomic.Int32
	last  atomic.Value // inference.Upload
}

func (f *fakePredictor) Predict(_ context.Context, img inference.Upload) (*models.PredictionResponse, error) {
	f.calls.Add(1)
	f.last.Store(img)
	if f.err != nil {
		return nil, f.err
	}
	// hand out a copy so handlers cannot mutate the shared fixture
	resp := *f.resp
	resp.Predictions = append([]models.Prediction(nil), f.resp.Predictions...)
	return &resp, nil
}

// predicting returns a fake that detects one sign
func predicting(classID int, name, category string, confidence float64, imagePHash string) *fakePredictor {
	return &fakePredictor{resp: &models.PredictionResponse{
		Success: true,
		Predictions: []models.Prediction{{
			ClassID:    classID,
			ClassName:  name,
			Confidence: confidence,
			Category:   category,
			BBox:       &models.BoundingBox{X1: 10, Y1: 10, X2: 50, Y2: 50},
		}},
		InferenceTimeMS: 42,
		ImagePHash:      imagePHash,
	}}
}

// brokenStore fails every read
type brokenStore struct{}

func (brokenStore) History(context.Context, string) ([]phash.HashRecord, error) {
	return nil, errors.New("connection reset")
}

func (brokenStore) Append(context.Context, phash.HashRecord) error {
	return errors.New("connection reset")
}

func countRows(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}
