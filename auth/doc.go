// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides visitor identity and ID generation utilities.

# Visitor IDs

Visitors are anonymous. The frontend sends its id in X-Visitor-ID; when the
header is missing the API issues a UUID v4:

	id := auth.NewVisitorID()
	err := auth.ValidateVisitorID(r.Header.Get("X-Visitor-ID"))

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Recognition records keep a salted IP hash for abuse review:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
