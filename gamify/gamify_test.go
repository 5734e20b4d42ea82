// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gamify

import (
	"testing"
	"time"
)

func TestRecognitionXP(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		duplicate  bool
		want       int
	}{
		{"confident", 0.95, false, 15},
		{"at cutoff", 0.8, false, 10},
		{"low confidence", 0.4, false, 10},
		{"duplicate confident", 0.95, true, 0},
		{"duplicate low", 0.2, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecognitionXP(tt.confidence, tt.duplicate); got != tt.want {
				t.Errorf("RecognitionXP(%v, %v) = %d, want %d", tt.confidence, tt.duplicate, got, tt.want)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		xp        int
		level     int
		progress  int
		nextLevel int
	}{
		{0, 1, 0, 100},
		{99, 1, 99, 100},
		{100, 2, 0, 200},
		{250, 3, 50, 300},
		{-5, 1, 0, 100},
	}

	for _, tt := range tests {
		level := LevelForXP(tt.xp)
		if level != tt.level {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, level, tt.level)
		}
		if got := XPProgress(tt.xp); got != tt.progress {
			t.Errorf("XPProgress(%d) = %d, want %d", tt.xp, got, tt.progress)
		}
		if got := XPForNextLevel(level); got != tt.nextLevel {
			t.Errorf("XPForNextLevel(%d) = %d, want %d", level, got, tt.nextLevel)
		}
	}
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	earlierToday := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	lastWeek := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		last    *time.Time
		current int
		want    int
	}{
		{"first activity", nil, 0, 1},
		{"same day", &earlierToday, 3, 3},
		{"next day", &yesterday, 3, 4},
		{"gap resets", &lastWeek, 6, 1},
		{"zero streak with history", &yesterday, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStreak(tt.last, now, tt.current); got != tt.want {
				t.Errorf("NextStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluateBadges(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	first := now.Add(-48 * time.Hour)

	badges := EvaluateBadges(Stats{
		SignsLearned:      12,
		Level:             3,
		CurrentStreak:     2,
		CategoriesTried:   4,
		RecognitionsToday: 1,
		FirstRecognition:  &first,
		LastActive:        &now,
		Now:               now,
	})

	if len(badges) != 6 {
		t.Fatalf("expected 6 badges, got %d", len(badges))
	}

	want := map[string]bool{
		BadgeRoadRookie:        true,
		BadgeSharpEyes:         true,
		BadgeWeekWarrior:       false,
		BadgeCategoryConqueror: true,
		BadgeSpeedDemon:        false,
		BadgeRoadMaster:        false,
	}
	for _, b := range badges {
		if b.Earned != want[b.ID] {
			t.Errorf("badge %s earned = %v, want %v", b.ID, b.Earned, want[b.ID])
		}
		if !b.Earned && b.EarnedAt != nil {
			t.Errorf("badge %s has earned_at without being earned", b.ID)
		}
	}

	if badges[0].EarnedAt == nil || !badges[0].EarnedAt.Equal(first) {
		t.Errorf("road_rookie earned_at = %v, want %v", badges[0].EarnedAt, first)
	}

	ids := EarnedIDs(badges)
	if len(ids) != 3 {
		t.Errorf("EarnedIDs() = %v, want 3 ids", ids)
	}
}
