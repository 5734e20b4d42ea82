// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Inference Types

Wire format of the YOLO service /predict endpoint:

  - PredictionResponse: predictions, inference_time_ms, image_phash
  - Prediction: class_id, class_name, confidence, category, bbox

# Request Types

  - CheckHashRequest: phash
  - AwardXPRequest: visitor_id, xp

# Response Types

  - RecognizeResponse: recognition result, progress, inference time
  - NoDetectionResponse: message and suggestions when nothing was detected
  - CheckHashResponse: duplicate verdict for a single hash
  - HashListResponse: stored hashes for a visitor
  - SignListResponse / SignDetailResponse: catalogue
  - ProgressResponse / AwardXPResponse: gamification state
  - ErrorResponse: error, message

# Domain Types

  - Sign: catalogue entry, optionally tied to a YOLO class id
  - UserProgress: XP, level, streak per visitor
*/
package models
