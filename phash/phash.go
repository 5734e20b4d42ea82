// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phash

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"time"
)

const (
	// DefaultThreshold is the largest Hamming distance still reported as a duplicate
	DefaultThreshold = 5

	// DefaultBits is the width of a 16 hex digit pHash
	DefaultBits = 64
)

var (
	ErrMalformedHash   = errors.New("malformed perceptual hash")
	ErrInvalidDetector = errors.New("invalid detector configuration")
)

// HashRecord is a stored pHash for one owner. Records are append-only.
type HashRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	PHash       string    `json:"phash"`
	SignClassID *int      `json:"sign_class_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Verdict is the outcome of a single duplicate check.
// Match and MatchID are only set when IsDuplicate is true.
// Distance is the distance to the match, or the smallest distance seen
// during the scan when there was no match.
type Verdict struct {
	IsDuplicate bool   `json:"is_duplicate"`
	Match       string `json:"matching_hash,omitempty"`
	MatchID     string `json:"matching_id,omitempty"`
	Distance    int    `json:"distance"`
	Compared    int    `json:"compared"`
}

// Detector holds the threshold and hash width used for comparisons.
// It has no mutable state and is safe for concurrent use.
type Detector struct {
	Threshold int
	Bits      int
}

// NewDetector validates the configuration and returns a Detector
func NewDetector(threshold, bitWidth int) (*Detector, error) {
	if bitWidth <= 0 || bitWidth%4 != 0 {
		return nil, fmt.Errorf("%w: bit width %d must be a positive multiple of 4", ErrInvalidDetector, bitWidth)
	}
	if threshold < 0 || threshold > bitWidth {
		return nil, fmt.Errorf("%w: threshold %d out of range [0, %d]", ErrInvalidDetector, threshold, bitWidth)
	}
	return &Detector{Threshold: threshold, Bits: bitWidth}, nil
}

// Default returns a detector using DefaultThreshold and DefaultBits
func Default() *Detector {
	return &Detector{Threshold: DefaultThreshold, Bits: DefaultBits}
}

// HammingDistance compares two hex encoded hashes using the 64-bit sentinel.
func HammingDistance(a, b string) (int, error) {
	return distance(a, b, DefaultBits)
}

// Distance returns the number of differing bits between a and b.
//
// Empty input or a length mismatch is not an error: it yields d.Bits, so
// those hashes can never be reported as duplicates. A non-hex digit in
// otherwise comparable input returns ErrMalformedHash.
func (d *Detector) Distance(a, b string) (int, error) {
	return distance(a, b, d.Bits)
}

func distance(a, b string, sentinel int) (int, error) {
	if a == "" || b == "" || len(a) != len(b) {
		return sentinel, nil
	}

	total := 0
	for i := 0; i < len(a); i++ {
		x, ok := nibble(a[i])
		if !ok {
			return 0, fmt.Errorf("%w: invalid character %q at position %d", ErrMalformedHash, a[i], i)
		}
		y, ok := nibble(b[i])
		if !ok {
			return 0, fmt.Errorf("%w: invalid character %q at position %d", ErrMalformedHash, b[i], i)
		}
		total += bits.OnesCount8(x ^ y)
	}
	return total, nil
}

// nibble parses one hex digit, either case
func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// CheckDuplicate scans history for a stored hash within the threshold of newHash.
//
// Only records owned by ownerID are compared; records with an empty OwnerID
// are assumed to already be scoped by the caller. The first record within
// the threshold wins. An empty newHash is never a duplicate. history is
// read, never modified, and nothing is persisted.
func (d *Detector) CheckDuplicate(ownerID, newHash string, history []HashRecord) (Verdict, error) {
	verdict := Verdict{Distance: d.Bits}
	if newHash == "" {
		return verdict, nil
	}

	for _, rec := range history {
		if rec.OwnerID != "" && rec.OwnerID != ownerID {
			continue
		}

		dist, err := d.Distance(newHash, rec.PHash)
		if err != nil {
			return Verdict{}, fmt.Errorf("comparing against record %s: %w", rec.ID, err)
		}
		verdict.Compared++

		if dist <= d.Threshold {
			verdict.IsDuplicate = true
			verdict.Match = rec.PHash
			verdict.MatchID = rec.ID
			verdict.Distance = dist
			return verdict, nil
		}
		if dist < verdict.Distance {
			verdict.Distance = dist
		}
	}

	return verdict, nil
}

// Normalize trims whitespace and lower-cases a hash for storage
func Normalize(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

// Validate checks that hash is exactly bitWidth/4 hex digits
func Validate(hash string, bitWidth int) error {
	if len(hash) != bitWidth/4 {
		return fmt.Errorf("%w: expected %d hex digits, got %d", ErrMalformedHash, bitWidth/4, len(hash))
	}
	for i := 0; i < len(hash); i++ {
		if _, ok := nibble(hash[i]); !ok {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrMalformedHash, hash[i], i)
		}
	}
	return nil
}
