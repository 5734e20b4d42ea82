// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/signwise/phash"
)

var ErrEmptyOwner = errors.New("hash record owner is required")

// HashStore fetches and appends perceptual hash history per visitor
type HashStore interface {
	History(ctx context.Context, ownerID string) ([]phash.HashRecord, error)
	Append(ctx context.Context, rec phash.HashRecord) error
}

// SQLHashStore stores hashes in the image_hash table.
// Pass a *sql.Tx to make Append part of a larger transaction.
type SQLHashStore struct {
	q       Querier
	dialect string
}

func NewHashStore(q Querier, dialect string) *SQLHashStore {
	return &SQLHashStore{q: q, dialect: dialect}
}

// History returns every hash stored for ownerID, oldest first
func (s *SQLHashStore) History(ctx context.Context, ownerID string) ([]phash.HashRecord, error) {
	return s.list(ctx, `
		SELECT id, visitor_id, phash, sign_class_id, created_at
		FROM image_hash
		WHERE visitor_id = ?
		ORDER BY created_at ASC, id ASC
	`, ownerID)
}

// Recent returns up to limit hashes for ownerID, newest first
func (s *SQLHashStore) Recent(ctx context.Context, ownerID string, limit int) ([]phash.HashRecord, error) {
	return s.list(ctx, `
		SELECT id, visitor_id, phash, sign_class_id, created_at
		FROM image_hash
		WHERE visitor_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, ownerID, limit)
}

func (s *SQLHashStore) list(ctx context.Context, query string, args ...any) ([]phash.HashRecord, error) {
	rows, err := s.q.QueryContext(ctx, Rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query image hashes: %w", err)
	}
	defer rows.Close()

	records := []phash.HashRecord{}
	for rows.Next() {
		var rec phash.HashRecord
		var classID sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.PHash, &classID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image hash: %w", err)
		}
		if classID.Valid {
			id := int(classID.Int64)
			rec.SignClassID = &id
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read image hashes: %w", err)
	}

	return records, nil
}

// Append inserts a new record. ID and CreatedAt are filled in when zero.
func (s *SQLHashStore) Append(ctx context.Context, rec phash.HashRecord) error {
	if rec.OwnerID == "" {
		return ErrEmptyOwner
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var classID sql.NullInt64
	if rec.SignClassID != nil {
		classID = sql.NullInt64{Int64: int64(*rec.SignClassID), Valid: true}
	}

	_, err := s.q.ExecContext(ctx, Rebind(s.dialect, `
		INSERT INTO image_hash (id, visitor_id, phash, sign_class_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), rec.ID, rec.OwnerID, phash.Normalize(rec.PHash), classID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert image hash: %w", err)
	}

	return nil
}
