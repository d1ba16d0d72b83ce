// ABOUTME: Profile model holding the user's identity, economy and streak fields.
// ABOUTME: ProfileUpdate is the partial used for shallow merges.
package models

import "math"

// NotificationTime holds the user's reminder times as HH:MM (24h).
type NotificationTime struct {
	Morning string `json:"morning"`
	Evening string `json:"evening"`
}

// Profile is the singleton per-user record.
type Profile struct {
	Name              string           `json:"name"`
	IsOnboarded       bool             `json:"isOnboarded"`
	NotificationTime  NotificationTime `json:"notificationTime"`
	Tokens            float64          `json:"tokens"`
	DailyRoutineCount int              `json:"dailyRoutineCount"`
	LastRoutineDate   string           `json:"lastRoutineDate"`
	CurrentStreak     int              `json:"currentStreak"`
	BestStreak        int              `json:"bestStreak"`
	LastRefreshTime   int64            `json:"lastRefreshTime"`
	FCMToken          string           `json:"fcmToken"`
	HasWelcomeGift    bool             `json:"hasWelcomeGift"`
}

// NewProfile returns the profile a first launch starts with.
// New profiles are born with the welcome-gift flag set; only profiles persisted
// before the flag existed receive the gift.
func NewProfile() Profile {
	return Profile{
		NotificationTime: NotificationTime{Morning: "08:00", Evening: "20:00"},
		HasWelcomeGift:   true,
	}
}

// ProfileUpdate is a partial profile. Nil fields are left untouched.
type ProfileUpdate struct {
	Name              *string           `json:"name,omitempty"`
	IsOnboarded       *bool             `json:"isOnboarded,omitempty"`
	NotificationTime  *NotificationTime `json:"notificationTime,omitempty"`
	Tokens            *float64          `json:"tokens,omitempty"`
	DailyRoutineCount *int              `json:"dailyRoutineCount,omitempty"`
	LastRoutineDate   *string           `json:"lastRoutineDate,omitempty"`
	CurrentStreak     *int              `json:"currentStreak,omitempty"`
	BestStreak        *int              `json:"bestStreak,omitempty"`
	LastRefreshTime   *int64            `json:"lastRefreshTime,omitempty"`
	FCMToken          *string           `json:"fcmToken,omitempty"`
	HasWelcomeGift    *bool             `json:"hasWelcomeGift,omitempty"`
}

// Apply shallow-merges u into p and returns the result.
func (p Profile) Apply(u ProfileUpdate) Profile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.IsOnboarded != nil {
		p.IsOnboarded = *u.IsOnboarded
	}
	if u.NotificationTime != nil {
		p.NotificationTime = *u.NotificationTime
	}
	if u.Tokens != nil {
		p.Tokens = *u.Tokens
	}
	if u.DailyRoutineCount != nil {
		p.DailyRoutineCount = *u.DailyRoutineCount
	}
	if u.LastRoutineDate != nil {
		p.LastRoutineDate = *u.LastRoutineDate
	}
	if u.CurrentStreak != nil {
		p.CurrentStreak = *u.CurrentStreak
	}
	if u.BestStreak != nil {
		p.BestStreak = *u.BestStreak
	}
	if u.LastRefreshTime != nil {
		p.LastRefreshTime = *u.LastRefreshTime
	}
	if u.FCMToken != nil {
		p.FCMToken = *u.FCMToken
	}
	if u.HasWelcomeGift != nil {
		p.HasWelcomeGift = *u.HasWelcomeGift
	}
	return p
}

// RoundTokens rounds a token amount to one decimal place.
func RoundTokens(v float64) float64 {
	return math.Round(v*10) / 10
}

// Ptr returns a pointer to v. Handy for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}
