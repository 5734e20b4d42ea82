// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gamify

import "time"

const (
	XPPerLevel = 100

	XPRecognition           = 10
	XPConfidentRecognition  = 15
	ConfidentRecognitionMin = 0.8
)

// Sign categories tracked for category progress
const (
	CategoryRegulatory   = "regulatory"
	CategoryWarning      = "warning"
	CategoryGuide        = "guide"
	CategoryConstruction = "construction"
)

// Categories lists every tracked category in display order
var Categories = []string{
	CategoryRegulatory,
	CategoryWarning,
	CategoryGuide,
	CategoryConstruction,
}

// Badge IDs
const (
	BadgeRoadRookie        = "road_rookie"
	BadgeSharpEyes         = "sharp_eyes"
	BadgeWeekWarrior       = "week_warrior"
	BadgeCategoryConqueror = "category_conqueror"
	BadgeSpeedDemon        = "speed_demon"
	BadgeRoadMaster        = "road_master"
)

// RecognitionXP returns the XP awarded for one recognition.
// Duplicates earn nothing.
func RecognitionXP(confidence float64, duplicate bool) int {
	if duplicate {
		return 0
	}
	if confidence > ConfidentRecognitionMin {
		return XPConfidentRecognition
	}
	return XPRecognition
}

// LevelForXP returns the 1-indexed level for a total XP
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPProgress returns XP earned within the current level
func XPProgress(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}

// XPForNextLevel returns the total XP at which level+1 starts
func XPForNextLevel(level int) int {
	return level * XPPerLevel
}

// NextStreak computes the daily streak after activity at now.
// Activity on the same calendar day keeps the streak, the next day extends
// it, and anything else starts over at 1.
func NextStreak(lastActive *time.Time, now time.Time, current int) int {
	if lastActive == nil || current <= 0 {
		return 1
	}

	last := lastActive.In(now.Location())
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case lastDay.Equal(today):
		return current
	case lastDay.AddDate(0, 0, 1).Equal(today):
		return current + 1
	default:
		return 1
	}
}

// Stats is the per-visitor input to badge evaluation
type Stats struct {
	SignsLearned      int
	Level             int
	CurrentStreak     int
	CategoriesTried   int
	RecognitionsToday int
	FirstRecognition  *time.Time
	LastActive        *time.Time
	Now               time.Time
}

// Badge is one achievement and whether the visitor has it
type Badge struct {
	ID       string     `json:"id"`
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// EvaluateBadges returns every badge in a fixed order
func EvaluateBadges(s Stats) []Badge {
	when := func(earned bool, at *time.Time) Badge {
		if !earned {
			return Badge{}
		}
		return Badge{Earned: true, EarnedAt: at}
	}

	now := s.Now
	defs := []struct {
		id    string
		badge Badge
	}{
		{BadgeRoadRookie, when(s.SignsLearned >= 1, s.FirstRecognition)},
		{BadgeSharpEyes, when(s.SignsLearned >= 10, s.LastActive)},
		{BadgeWeekWarrior, when(s.CurrentStreak >= 7, s.LastActive)},
		{BadgeCategoryConqueror, when(s.CategoriesTried >= len(Categories), s.LastActive)},
		{BadgeSpeedDemon, when(s.RecognitionsToday >= 5, &now)},
		{BadgeRoadMaster, when(s.Level >= 10, s.LastActive)},
	}

	badges := make([]Badge, len(defs))
	for i, d := range defs {
		badges[i] = d.badge
		badges[i].ID = d.id
	}
	return badges
}

// EarnedIDs filters badges down to the IDs that are earned
func EarnedIDs(badges []Badge) []string {
	ids := []string{}
	for _, b := range badges {
		if b.Earned {
			ids = append(ids, b.ID)
		}
	}
	return ids
}
