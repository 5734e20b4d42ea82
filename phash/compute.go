// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phash

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
)

var ErrDecode = errors.New("failed to decode image")

// Compute returns the 64-bit DCT perceptual hash of img as 16 lower-case hex digits
func Compute(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("%w: nil image", ErrDecode)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("failed to compute pHash: %w", err)
	}
	return fmt.Sprintf("%016x", hash.GetHash()), nil
}

// ComputeBytes decodes gif, jpeg, png or webp data and hashes it
func ComputeBytes(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Compute(img)
}
