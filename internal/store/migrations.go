// ABOUTME: Schema migrations applied in a fixed order after every load.
// ABOUTME: Each migration is a guard plus a pure transform and must be idempotent.
package store

import (
	"time"

	"github.com/harperreed/rhythm/internal/models"
)

// WelcomeGift is granted once to profiles persisted before the flag existed.
const WelcomeGift = 1.0

type migration struct {
	name    string
	pending func(s *Store) bool
	apply   func(s *Store) section
}

var migrations = []migration{
	{
		name: "garden-item-shape",
		pending: func(s *Store) bool {
			return GardenNeedsMigration(s.garden)
		},
		apply: func(s *Store) section {
			s.garden = MigrateGarden(s.garden)
			return sectionGarden
		},
	},
	{
		name: "welcome-gift",
		pending: func(s *Store) bool {
			return !s.profile.HasWelcomeGift
		},
		apply: func(s *Store) section {
			s.profile = GrantWelcomeGift(s.profile)
			return sectionProfile
		},
	},
}

// runMigrations applies every pending migration and returns the sections it
// rewrote. Callers hold s.mu and commit the result.
func (s *Store) runMigrations() section {
	var changed section
	for _, m := range migrations {
		if !m.pending(s) {
			continue
		}
		changed |= m.apply(s)
		s.log.Info("applied migration", "name", m.name)
	}
	return changed
}

// GardenNeedsMigration reports whether any item lacks the current shape.
func GardenNeedsMigration(items []models.GardenItem) bool {
	for _, it := range items {
		if !it.HasCurrentShape() {
			return true
		}
	}
	return false
}

// MigrateGarden rewrites the whole collection to the current item shape in one
// pass. IDs and plant times are preserved and positions are recomputed from
// the ID. Already-migrated input is returned unchanged.
func MigrateGarden(items []models.GardenItem) []models.GardenItem {
	if !GardenNeedsMigration(items) {
		return items
	}
	out := make([]models.GardenItem, len(items))
	for i, it := range items {
		origin := it.OriginType
		if origin == "" {
			origin = models.OriginType(it.LegacyType)
		}
		if origin == "" {
			origin = models.OriginStone
		}
		pos := models.PlacementFor(it.ID)
		out[i] = models.GardenItem{
			ID:         it.ID,
			OriginType: origin,
			Position:   &pos,
			PlantedAt:  it.PlantedAt,
		}
		if out[i].PlantedAt == "" {
			out[i].PlantedAt = it.PlantedTime().Format(time.RFC3339)
		}
	}
	return out
}

// GrantWelcomeGift credits the one-time bonus to a profile lacking the flag.
func GrantWelcomeGift(p models.Profile) models.Profile {
	if p.HasWelcomeGift {
		return p
	}
	p.Tokens = models.RoundTokens(p.Tokens + WelcomeGift)
	p.HasWelcomeGift = true
	return p
}
