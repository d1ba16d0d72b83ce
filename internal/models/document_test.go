// ABOUTME: Tests for the remote document encoding.
// ABOUTME: Nil sections stay out of the payload; emptied ones and zeroed fields go in.
package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDocumentMarshalOmitsNilSections(t *testing.T) {
	data, err := json.Marshal(Document{Logs: DailyLogSet{}, LastUpdated: time.Unix(0, 0).UTC()})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := obj["profile"]; ok {
		t.Errorf("nil profile should be absent: %s", data)
	}
	if _, ok := obj["garden"]; ok {
		t.Errorf("nil garden should be absent: %s", data)
	}
	if _, ok := obj["device"]; ok {
		t.Errorf("empty device should be absent: %s", data)
	}
	if logs, ok := obj["logs"].(map[string]any); !ok || len(logs) != 0 {
		t.Errorf("empty logs should be sent as {}: %s", data)
	}
}

func TestDocumentMarshalKeepsClearedValues(t *testing.T) {
	doc := Document{
		Profile: &Profile{Name: "Mina"},
		Garden:  []GardenItem{},
		Device:  "laptop",
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)

	for _, want := range []string{`"garden":[]`, `"fcmToken":""`, `"lastRefreshTime":0`, `"device":"laptop"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Garden == nil || len(back.Garden) != 0 {
		t.Errorf("Garden = %#v, want empty non-nil", back.Garden)
	}
	if back.Profile == nil || back.Profile.Name != "Mina" {
		t.Errorf("Profile = %+v", back.Profile)
	}
}
