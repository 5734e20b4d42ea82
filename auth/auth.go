// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const maxVisitorIDLen = 128

var ErrInvalidVisitorID = errors.New("invalid visitor id")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewVisitorID issues an identity for a visitor that did not send one
func NewVisitorID() string {
	return uuid.NewString()
}

// ValidateVisitorID accepts any printable ASCII id up to 128 chars.
// Clients may keep ids issued by older frontends, so UUID format is not required.
func ValidateVisitorID(id string) error {
	if id == "" || len(id) > maxVisitorIDLen {
		return ErrInvalidVisitorID
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return ErrInvalidVisitorID
		}
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for abuse tracking
	return hex.EncodeToString(sum[:8])
}
