// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("POST /api/recognize", middleware.WithLogging(h.Recognize))

Logs request start (method, path, remote) and completion (status, bytes,
duration_ms).

# CORS

	server := http.Server{Handler: middleware.CORS(mux)}

Allows GET, POST and OPTIONS with Content-Type, Authorization and
X-Visitor-ID. X-Visitor-ID is also exposed so browsers can read the id the
server assigns on first recognition.

# Visitor Identity

	visitorID := middleware.VisitorID(r)

Reads X-Visitor-ID, then the visitor_id query parameter.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CheckHashRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. The result is salted and hashed
before it is stored with a recognition.
*/
package middleware
