// ABOUTME: Remote document shape mirroring the synced entities.
// ABOUTME: Nil sections are absent and left untouched by merges.
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrDocumentNotFound is returned by replicas when no document exists for a user.
var ErrDocumentNotFound = errors.New("document not found")

// Document is the per-user remote record.
type Document struct {
	Profile     *Profile     `json:"profile"`
	Logs        DailyLogSet  `json:"logs"`
	Garden      []GardenItem `json:"garden"`
	LastUpdated time.Time    `json:"lastUpdated"`
	Device      string       `json:"device,omitempty"`
}

// MarshalJSON leaves out nil sections. Empty but non-nil sections are kept,
// so an emptied garden replaces the remote one.
func (d Document) MarshalJSON() ([]byte, error) {
	out := map[string]any{"lastUpdated": d.LastUpdated}
	if d.Profile != nil {
		out["profile"] = d.Profile
	}
	if d.Logs != nil {
		out["logs"] = d.Logs
	}
	if d.Garden != nil {
		out["garden"] = d.Garden
	}
	if d.Device != "" {
		out["device"] = d.Device
	}
	return json.Marshal(out)
}
