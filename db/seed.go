// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type seedSign struct {
	classID     int
	name        string
	category    string
	description string
	rules       string
	imageURL    string
}

var catalogue = []seedSign{
	{0, "Speed Limit 20", "regulatory", "Maximum speed of 20 km/h allowed in this zone.", "Do not exceed 20 km/h. Common in school zones and residential areas.", "/signs/speed-20.svg"},
	{1, "Speed Limit 30", "regulatory", "Maximum speed of 30 km/h allowed in this zone.", "Reduce speed to 30 km/h. Often found in urban residential areas.", "/signs/speed-30.svg"},
	{2, "Speed Limit 50", "regulatory", "Maximum speed of 50 km/h allowed.", "Standard urban speed limit in many countries.", "/signs/speed-50.svg"},
	{12, "Priority Road", "regulatory", "You are on a priority road.", "You have right of way over vehicles on intersecting roads.", "/signs/priority-road.svg"},
	{13, "Yield", "regulatory", "Give way to traffic on the main road.", "Slow down and be prepared to stop. Yield to traffic with right of way.", "/signs/yield.svg"},
	{14, "Stop", "regulatory", "Come to a complete stop at the marked line or intersection.", "Full stop required. Check for traffic from all directions before proceeding.", "/signs/stop.svg"},
	{17, "No Entry", "regulatory", "Entry prohibited into this road or lane.", "Do not enter. Usually indicates one-way street from wrong direction.", "/signs/no-entry.svg"},
	{18, "General Caution", "warning", "General warning - be alert for hazards.", "Slow down and be prepared for unexpected conditions ahead.", "/signs/caution.svg"},
	{19, "Dangerous Curve Left", "warning", "Sharp curve to the left ahead.", "Reduce speed before entering the curve. Stay in your lane.", "/signs/curve-left.svg"},
	{23, "Slippery Road", "warning", "Road may be slippery when wet.", "Reduce speed, avoid sudden braking or acceleration.", "/signs/slippery.svg"},
	{25, "Road Work", "construction", "Construction or maintenance work ahead.", "Reduce speed, watch for workers and equipment. Follow detour signs.", "/signs/road-work.svg"},
	{27, "Pedestrians", "warning", "Pedestrian crossing or area ahead.", "Watch for pedestrians. Yield to those in crosswalk.", "/signs/pedestrians.svg"},
	{28, "Children Crossing", "warning", "School zone or children may be crossing.", "Extreme caution. Reduce speed significantly in school zones.", "/signs/children.svg"},
	{41, "End of No Passing", "guide", "End of no overtaking zone.", "Overtaking is now permitted when safe to do so.", "/signs/end-no-passing.svg"},
	{42, "End of No Passing for Trucks", "guide", "Trucks may now overtake.", "Heavy vehicles can now pass when safe.", "/signs/end-no-passing-trucks.svg"},
}

// SeedSigns loads the built-in sign catalogue into an empty sign table.
// Returns the number of signs inserted (0 if the table already had rows).
func SeedSigns(conn *sql.DB, dialect string) (int, error) {
	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM sign").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count signs: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	insert := Rebind(dialect, `
		INSERT INTO sign (id, class_id, name, category, description, rules, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	now := time.Now().UTC()
	for _, s := range catalogue {
		if _, err := tx.Exec(insert, uuid.NewString(), s.classID, s.name, s.category, s.description, s.rules, s.imageURL, now); err != nil {
			return 0, fmt.Errorf("failed to seed sign %q: %w", s.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return len(catalogue), nil
}
