// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/signwise/gamify"
	"github.com/danielhkuo/signwise/middleware"
	"github.com/danielhkuo/signwise/models"
	"github.com/danielhkuo/signwise/testutil"
)

func getProgress(t *testing.T, h *ProgressHandler, visitorID string) models.ProgressResponse {
	t.Helper()
	req := testutil.MakeRequest("GET", "/api/progress", nil, map[string]string{middleware.VisitorHeader: visitorID})
	w := httptest.NewRecorder()
	h.GetProgress(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ProgressResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestGetProgress_NewVisitor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	h := NewProgressHandler(db, testutil.GetTestConfig())
	resp := getProgress(t, h, "visitor-fresh")

	p := resp.Progress
	if p.XP != 0 || p.Level != 1 || p.XPProgress != 0 || p.XPForNextLevel != 100 {
		t.Errorf("Unexpected fresh progress %+v", p)
	}
	if len(p.Badges) != 6 || len(p.EarnedBadges) != 0 {
		t.Errorf("Expected 6 unearned badges, got %d badges and %v earned", len(p.Badges), p.EarnedBadges)
	}
	for _, c := range gamify.Categories {
		if _, ok := p.CategoryProgress[c]; !ok {
			t.Errorf("Missing category %s", c)
		}
	}
	if resp.RecentActivity == nil || len(resp.RecentActivity) != 0 {
		t.Errorf("Expected empty recent activity array, got %v", resp.RecentActivity)
	}

	if n := countRows(t, db, "SELECT COUNT(*) FROM user_progress WHERE visitor_id = ?", "visitor-fresh"); n != 1 {
		t.Errorf("Expected progress row to be created, got %d", n)
	}
}

func TestGetProgress_WithActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	h := NewProgressHandler(db, cfg)

	stop := testutil.CreateTestSign(t, db, 1, "Stop", "regulatory")
	testutil.CreateTestSign(t, db, 2, "Yield", "regulatory")
	merge := testutil.CreateTestSign(t, db, 3, "Merge", "warning")

	now := time.Now().UTC()
	for i := 0; i < 6; i++ {
		testutil.CreateTestRecognition(t, db, "visitor-busy", stop, now.Add(-time.Duration(6-i)*time.Second))
	}
	testutil.CreateTestRecognition(t, db, "visitor-busy", merge, now)

	_, err := db.Exec(`
		INSERT INTO user_progress (visitor_id, xp, level, signs_learned, current_streak, last_active_at, created_at)
		VALUES (?, 1050, 11, 12, 7, ?, ?)
	`, "visitor-busy", now, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	resp := getProgress(t, h, "visitor-busy")
	p := resp.Progress

	if p.XP != 1050 || p.Level != 11 || p.XPProgress != 50 || p.XPForNextLevel != 1100 {
		t.Errorf("Unexpected XP fields %+v", p)
	}
	if got := p.CategoryProgress["regulatory"]; got.Learned != 1 || got.Total != 2 {
		t.Errorf("Expected regulatory 1/2, got %+v", got)
	}
	if got := p.CategoryProgress["warning"]; got.Learned != 1 || got.Total != 1 {
		t.Errorf("Expected warning 1/1, got %+v", got)
	}

	earned := map[string]bool{}
	for _, id := range p.EarnedBadges {
		earned[id] = true
	}
	for _, id := range []string{gamify.BadgeRoadRookie, gamify.BadgeSharpEyes, gamify.BadgeWeekWarrior, gamify.BadgeSpeedDemon, gamify.BadgeRoadMaster} {
		if !earned[id] {
			t.Errorf("Expected badge %s to be earned, got %v", id, p.EarnedBadges)
		}
	}
	if earned[gamify.BadgeCategoryConqueror] {
		t.Error("Only two categories tried, category_conqueror must not be earned")
	}

	if len(resp.RecentActivity) != recentActivityLimit {
		t.Fatalf("Expected %d recent activities, got %d", recentActivityLimit, len(resp.RecentActivity))
	}
	if resp.RecentActivity[0].SignName != "Merge" {
		t.Errorf("Expected newest activity first, got %s", resp.RecentActivity[0].SignName)
	}
	if resp.RecentActivity[0].Type != models.ActivityRecognition || resp.RecentActivity[0].XP != 15 {
		t.Errorf("Unexpected activity %+v", resp.RecentActivity[0])
	}
}

func TestGetProgress_VisitorRequired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	h := NewProgressHandler(db, testutil.GetTestConfig())
	w := httptest.NewRecorder()
	h.GetProgress(w, testutil.MakeRequest("GET", "/api/progress", nil, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestAwardXP(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	h := NewProgressHandler(db, testutil.GetTestConfig())

	award := func(body interface{}) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.AwardXP(w, testutil.MakeRequest("POST", "/api/progress/xp", body, nil))
		return w
	}

	w := award(models.AwardXPRequest{VisitorID: "visitor-xp", XP: 60})
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.AwardXPResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Progress.TotalXP != 60 || resp.Progress.Level != 1 {
		t.Errorf("Expected 60 XP level 1, got %+v", resp.Progress)
	}

	w = award(models.AwardXPRequest{VisitorID: "visitor-xp", XP: 45})
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	if resp.Progress.TotalXP != 105 || resp.Progress.Level != 2 {
		t.Errorf("Expected 105 XP level 2, got %+v", resp.Progress)
	}

	if n := countRows(t, db, "SELECT level FROM user_progress WHERE visitor_id = ?", "visitor-xp"); n != 2 {
		t.Errorf("Expected stored level 2, got %d", n)
	}
	if n := countRows(t, db, "SELECT current_streak FROM user_progress WHERE visitor_id = ?", "visitor-xp"); n != 1 {
		t.Errorf("Expected streak 1 after same-day activity, got %d", n)
	}

	for name, body := range map[string]interface{}{
		"zero xp":         models.AwardXPRequest{VisitorID: "visitor-xp", XP: 0},
		"negative xp":     models.AwardXPRequest{VisitorID: "visitor-xp", XP: -5},
		"missing visitor": models.AwardXPRequest{XP: 10},
		"invalid JSON":    "nope",
	} {
		t.Run(name, func(t *testing.T) {
			testutil.AssertStatus(t, award(body), http.StatusBadRequest)
		})
	}

	if n := countRows(t, db, "SELECT xp FROM user_progress WHERE visitor_id = ?", "visitor-xp"); n != 105 {
		t.Errorf("Rejected awards must not change XP, got %d", n)
	}
}
