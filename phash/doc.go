// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package phash detects near-duplicate uploads by comparing perceptual hashes.

# Hashes

A pHash is a fixed-width bit vector encoded as hex digits (16 digits = 64
bits). Compute and ComputeBytes produce one locally; the inference service
usually supplies one with its prediction.

# Distance

	d, err := phash.HammingDistance("a1b2c3d4e5f60718", "A1B2C3D4E5F60719")
	// d == 1

Empty hashes and hashes of different lengths are maximally distant (64 for
the default width). A non-hex digit returns ErrMalformedHash.

# Duplicate Checks

	det, _ := phash.NewDetector(5, 64)
	verdict, err := det.CheckDuplicate(visitorID, newHash, history)

The scan stops at the first stored hash within the threshold (inclusive).
An empty query hash is never a duplicate. The detector reads history and
never writes; storing accepted hashes is up to the caller.
*/
package phash
