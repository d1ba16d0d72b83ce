// ABOUTME: Daily log records keyed by calendar day, plus summary statistics.
// ABOUTME: Every field is optional so partial writes merge instead of overwrite.
package models

import (
	"slices"
	"sort"
)

// Mood values offered by the check-in screen.
const (
	MoodWorst = "worst"
	MoodBad   = "bad"
	MoodSoso  = "soso"
	MoodGood  = "good"
	MoodGreat = "great"
)

// AllMoods lists the valid moods from worst to best.
var AllMoods = []string{MoodWorst, MoodBad, MoodSoso, MoodGood, MoodGreat}

// IsValidMood checks if s is one of AllMoods.
func IsValidMood(s string) bool {
	return slices.Contains(AllMoods, s)
}

// Symptoms offered by the check-in screen.
var Symptoms = []string{"headache", "fatigue", "digestion", "palpitation", "muscle", "insomnia"}

// DailyLog is one day's check-in. Absent fields are nil and omitted from JSON.
type DailyLog struct {
	SleepHours       *float64 `json:"sleepHours,omitempty"`
	SleepQuality     *int     `json:"sleepQuality,omitempty"`
	MealCount        *int     `json:"mealCount,omitempty"`
	Appetite         *int     `json:"appetite,omitempty"`
	Mood             *string  `json:"mood,omitempty"`
	Energy           *int     `json:"energy,omitempty"`
	Anxiety          *int     `json:"anxiety,omitempty"`
	PhysicalSymptoms []string `json:"physicalSymptoms,omitempty"`
	Note             *string  `json:"note,omitempty"`
	RoutineCompleted *bool    `json:"routineCompleted,omitempty"`
	CheckInComplete  *bool    `json:"checkInComplete,omitempty"`
	Timestamp        int64    `json:"timestamp,omitempty"`
}

// Merge overlays the fields present in p onto l.
func (l DailyLog) Merge(p DailyLog) DailyLog {
	if p.SleepHours != nil {
		l.SleepHours = p.SleepHours
	}
	if p.SleepQuality != nil {
		l.SleepQuality = p.SleepQuality
	}
	if p.MealCount != nil {
		l.MealCount = p.MealCount
	}
	if p.Appetite != nil {
		l.Appetite = p.Appetite
	}
	if p.Mood != nil {
		l.Mood = p.Mood
	}
	if p.Energy != nil {
		l.Energy = p.Energy
	}
	if p.Anxiety != nil {
		l.Anxiety = p.Anxiety
	}
	if p.PhysicalSymptoms != nil {
		l.PhysicalSymptoms = slices.Clone(p.PhysicalSymptoms)
	}
	if p.Note != nil {
		l.Note = p.Note
	}
	if p.RoutineCompleted != nil {
		l.RoutineCompleted = p.RoutineCompleted
	}
	if p.CheckInComplete != nil {
		l.CheckInComplete = p.CheckInComplete
	}
	if p.Timestamp != 0 {
		l.Timestamp = p.Timestamp
	}
	return l
}

// Clone returns a copy that shares no slices with l.
func (l DailyLog) Clone() DailyLog {
	l.PhysicalSymptoms = slices.Clone(l.PhysicalSymptoms)
	return l
}

// HasCheckIn reports whether the day has a check-in write.
func (l DailyLog) HasCheckIn() bool {
	return l.Timestamp != 0
}

// HasRoutine reports whether the day's routine was completed.
func (l DailyLog) HasRoutine() bool {
	return l.RoutineCompleted != nil && *l.RoutineCompleted
}

// DailyLogSet maps YYYY-MM-DD to that day's log.
type DailyLogSet map[string]DailyLog

// Clone returns a deep copy.
func (s DailyLogSet) Clone() DailyLogSet {
	if s == nil {
		return nil
	}
	out := make(DailyLogSet, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

// Dates returns the day keys in ascending order.
func (s DailyLogSet) Dates() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary aggregates the log set for the stats screen.
type Summary struct {
	TotalDays     int     `json:"totalDays"`
	AvgSleep      float64 `json:"avgSleep"`
	RoutineDays   int     `json:"routineDays"`
	CurrentStreak int     `json:"currentStreak"`
	BestStreak    int     `json:"bestStreak"`
}

// Summarize computes totals over all logged days. Days without a sleep entry
// count as zero sleep, matching the journey screen.
func Summarize(logs DailyLogSet, p Profile) Summary {
	sum := Summary{
		TotalDays:     len(logs),
		CurrentStreak: p.CurrentStreak,
		BestStreak:    p.BestStreak,
	}
	if len(logs) == 0 {
		return sum
	}
	var sleep float64
	for _, l := range logs {
		if l.SleepHours != nil {
			sleep += *l.SleepHours
		}
		if l.HasRoutine() {
			sum.RoutineDays++
		}
	}
	sum.AvgSleep = RoundTokens(sleep / float64(len(logs)))
	return sum
}
