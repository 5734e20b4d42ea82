package models

import (
	"time"

	"github.com/danielhkuo/signwise/gamify"
)

// Activity types
const (
	ActivityRecognition = "recognition"
)

// Inference service types

type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type Prediction struct {
	ClassID    int          `json:"class_id"`
	ClassName  string       `json:"class_name"`
	Confidence float64      `json:"confidence"`
	Category   string       `json:"category"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
}

type PredictionResponse struct {
	Success         bool         `json:"success"`
	Predictions     []Prediction `json:"predictions"`
	InferenceTimeMS float64      `json:"inference_time_ms"`
	ImageSize       []int        `json:"image_size,omitempty"`
	ImagePHash      string       `json:"image_phash,omitempty"`
	Message         string       `json:"message,omitempty"`
}

// Request types

type CheckHashRequest struct {
	PHash string `json:"phash"`
}

type AwardXPRequest struct {
	VisitorID string `json:"visitor_id"`
	XP        int    `json:"xp"`
}

// Response types

type RecognitionResult struct {
	Sign              Sign         `json:"sign"`
	Confidence        float64      `json:"confidence"`
	BBox              *BoundingBox `json:"bbox,omitempty"`
	XPEarned          int          `json:"xp_earned"`
	IsDuplicate       bool         `json:"is_duplicate"`
	DuplicateDistance *int         `json:"duplicate_distance,omitempty"`
	PHash             string       `json:"phash,omitempty"`
}

type ProgressSummary struct {
	TotalXP int `json:"total_xp"`
	Level   int `json:"level"`
}

type RecognizeResponse struct {
	Success         bool              `json:"success"`
	VisitorID       string            `json:"visitor_id"`
	Recognition     RecognitionResult `json:"recognition"`
	Progress        ProgressSummary   `json:"progress"`
	InferenceTimeMS float64           `json:"inference_time_ms"`
}

type NoDetectionResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

type CheckHashResponse struct {
	IsDuplicate  bool   `json:"is_duplicate"`
	MatchingHash string `json:"matching_hash,omitempty"`
	Distance     int    `json:"distance"`
	Threshold    int    `json:"threshold"`
	Compared     int    `json:"compared"`
}

type HashListResponse struct {
	Hashes []HashEntry `json:"hashes"`
}

type HashEntry struct {
	ID          string    `json:"id"`
	PHash       string    `json:"phash"`
	SignClassID *int      `json:"sign_class_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SignListResponse struct {
	Signs      []Sign   `json:"signs"`
	Total      int      `json:"total"`
	Categories []string `json:"categories"`
}

type SignDetailResponse struct {
	Sign         Sign   `json:"sign"`
	RelatedSigns []Sign `json:"related_signs"`
}

type CategoryProgress struct {
	Learned int `json:"learned"`
	Total   int `json:"total"`
}

type Activity struct {
	Type      string    `json:"type"`
	SignName  string    `json:"sign_name"`
	XP        int       `json:"xp"`
	Duplicate bool      `json:"duplicate"`
	Timestamp time.Time `json:"timestamp"`
}

type ProgressDetail struct {
	XP               int                         `json:"xp"`
	Level            int                         `json:"level"`
	XPProgress       int                         `json:"xp_progress"`
	XPForNextLevel   int                         `json:"xp_for_next_level"`
	SignsLearned     int                         `json:"signs_learned"`
	CurrentStreak    int                         `json:"current_streak"`
	CategoryProgress map[string]CategoryProgress `json:"category_progress"`
	EarnedBadges     []string                    `json:"earned_badges"`
	Badges           []gamify.Badge              `json:"badges"`
}

type ProgressResponse struct {
	VisitorID      string         `json:"visitor_id"`
	Progress       ProgressDetail `json:"progress"`
	RecentActivity []Activity     `json:"recent_activity"`
}

type AwardXPResponse struct {
	Progress ProgressSummary `json:"progress"`
}

// Domain types

type Sign struct {
	ID          string `json:"id"`
	ClassID     *int   `json:"class_id,omitempty"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Rules       string `json:"rules"`
	ImageURL    string `json:"image_url"`
}

type UserProgress struct {
	VisitorID     string     `json:"visitor_id"`
	XP            int        `json:"xp"`
	Level         int        `json:"level"`
	SignsLearned  int        `json:"signs_learned"`
	CurrentStreak int        `json:"current_streak"`
	LastActiveAt  *time.Time `json:"last_active_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
