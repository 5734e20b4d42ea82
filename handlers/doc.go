// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the SignWise API.

# Handler Types

  - SignHandler: sign catalogue
  - RecognitionHandler: photo upload, inference, duplicate check, XP
  - HashHandler: read-only duplicate checks and hash history
  - ProgressHandler: XP, levels, streaks and badges

Handlers are created from *sql.DB and Config. RecognitionHandler also takes
the inference.Predictor it forwards photos to:

	recognitionHandler := handlers.NewRecognitionHandler(db, cfg, client)

# Visitor Identity

Visitors are anonymous. They send X-Visitor-ID (or ?visitor_id=). The
recognition endpoint issues a UUID when none is sent and returns it in the
X-Visitor-ID response header.

# Recognition Flow

	POST /api/recognize (multipart field "image")

 1. Validate the upload (400 missing, 413 too large, 415 not an image)
 2. Forward to the YOLO service (503 unreachable, 502 error status)
 3. Use the service's pHash, or hash the image locally
 4. Lock the visitor, load hash history (503 if unreadable)
 5. Run the duplicate detector
 6. In one transaction: sign, progress, recognition row, new hash

Duplicates are still recorded as recognitions but earn no XP and their hash
is not appended, so the history only holds accepted photos.
*/
package handlers
