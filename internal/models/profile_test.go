// ABOUTME: Tests for the Profile model.
// ABOUTME: Covers defaults, shallow merge and token rounding.
package models

import "testing"

func TestNewProfileDefaults(t *testing.T) {
	p := NewProfile()

	if p.IsOnboarded {
		t.Error("expected new profile to not be onboarded")
	}
	if p.NotificationTime.Morning != "08:00" || p.NotificationTime.Evening != "20:00" {
		t.Errorf("NotificationTime = %+v, want 08:00/20:00", p.NotificationTime)
	}
	if p.Tokens != 0 {
		t.Errorf("Tokens = %v, want 0", p.Tokens)
	}
	if !p.HasWelcomeGift {
		t.Error("expected new profile to carry the welcome gift flag")
	}
}

func TestProfileApply(t *testing.T) {
	p := NewProfile()
	p.Name = "Mina"
	p.Tokens = 1.2

	got := p.Apply(ProfileUpdate{
		IsOnboarded: Ptr(true),
		FCMToken:    Ptr("tok"),
	})

	if got.Name != "Mina" {
		t.Errorf("Name = %q, want untouched %q", got.Name, "Mina")
	}
	if got.Tokens != 1.2 {
		t.Errorf("Tokens = %v, want untouched 1.2", got.Tokens)
	}
	if !got.IsOnboarded {
		t.Error("expected IsOnboarded to be set")
	}
	if got.FCMToken != "tok" {
		t.Errorf("FCMToken = %q, want tok", got.FCMToken)
	}
	if p.IsOnboarded {
		t.Error("Apply must not modify the receiver")
	}
}

func TestRoundTokens(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.1 + 0.2, 0.3},
		{0.7 + 0.2, 0.9},
		{1.25, 1.3},
		{0, 0},
		{2.0 - 0.5, 1.5},
	}

	for _, tt := range tests {
		if got := RoundTokens(tt.in); got != tt.want {
			t.Errorf("RoundTokens(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
