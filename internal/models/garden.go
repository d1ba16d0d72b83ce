// ABOUTME: Garden item model, origin type catalog and sky placement.
// ABOUTME: Items are identified by their creation time in epoch milliseconds.
package models

import (
	"math/rand"
	"time"
)

// OriginType names what a garden item started as before it became a star.
type OriginType string

const (
	// Thought objects thrown into the river
	OriginStone  OriginType = "stone"
	OriginPebble OriginType = "pebble"
	OriginBranch OriginType = "branch"
	OriginCup    OriginType = "cup"
	OriginBook   OriginType = "book"
	OriginClock  OriginType = "clock"

	// Plants from the seed shop
	OriginSunflower OriginType = "sunflower"
	OriginRose      OriginType = "rose"
	OriginTree      OriginType = "tree"
)

// OriginCosts maps each origin type to its default token cost.
var OriginCosts = map[OriginType]float64{
	OriginStone:     0.5,
	OriginPebble:    0.5,
	OriginBranch:    0.5,
	OriginCup:       0.5,
	OriginBook:      0.5,
	OriginClock:     0.5,
	OriginSunflower: 0.5,
	OriginRose:      0.8,
	OriginTree:      1.5,
}

// AllOriginTypes lists origin types in catalog order.
var AllOriginTypes = []OriginType{
	OriginStone, OriginPebble, OriginBranch, OriginCup, OriginBook, OriginClock,
	OriginSunflower, OriginRose, OriginTree,
}

// IsValidOriginType checks if s names a catalog origin type.
func IsValidOriginType(s string) bool {
	_, ok := OriginCosts[OriginType(s)]
	return ok
}

// Vec3 is an x, y, z position.
type Vec3 [3]float64

// Sky placement volume for garden items.
var (
	PlacementMin = Vec3{-8, 5, -14}
	PlacementMax = Vec3{8, 11, -6}
)

// Placement draws a position inside the placement volume.
func Placement(r *rand.Rand) Vec3 {
	var v Vec3
	for i := range v {
		v[i] = PlacementMin[i] + r.Float64()*(PlacementMax[i]-PlacementMin[i])
	}
	return v
}

// PlacementFor derives a stable position from an item ID.
func PlacementFor(id int64) Vec3 {
	return Placement(rand.New(rand.NewSource(id)))
}

// InVolume reports whether v lies inside the placement volume.
func (v Vec3) InVolume() bool {
	for i := range v {
		if v[i] < PlacementMin[i] || v[i] > PlacementMax[i] {
			return false
		}
	}
	return true
}

// GardenItem is one collectible in the garden.
type GardenItem struct {
	ID         int64      `json:"id"`
	OriginType OriginType `json:"originType,omitempty"`
	Position   *Vec3      `json:"position,omitempty"`
	PlantedAt  string     `json:"plantedAt,omitempty"`

	// LegacyType is the plant type written by the seed-shop version.
	LegacyType string `json:"type,omitempty"`
}

// HasCurrentShape reports whether the item carries the current shape markers.
func (g GardenItem) HasCurrentShape() bool {
	return g.OriginType != "" && g.Position != nil && g.LegacyType == ""
}

// PlantedTime parses PlantedAt, falling back to the ID timestamp.
func (g GardenItem) PlantedTime() time.Time {
	if t, err := time.Parse(time.RFC3339, g.PlantedAt); err == nil {
		return t
	}
	return time.UnixMilli(g.ID).UTC()
}

// CloneGarden deep-copies a garden collection.
func CloneGarden(items []GardenItem) []GardenItem {
	if items == nil {
		return nil
	}
	out := make([]GardenItem, len(items))
	for i, it := range items {
		if it.Position != nil {
			p := *it.Position
			it.Position = &p
		}
		out[i] = it
	}
	return out
}
