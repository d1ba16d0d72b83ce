// ABOUTME: Calendar-day arithmetic for daily log keys and streaks.
// ABOUTME: Day keys are YYYY-MM-DD in the store's configured location.
package store

import "time"

// DateLayout is the layout of daily log keys.
const DateLayout = "2006-01-02"

// DateKey formats t as a day key in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// AddDays moves t by n calendar days in loc. The result is anchored at noon so
// daylight-saving shifts never skip or repeat a day.
func AddDays(t time.Time, loc *time.Location, n int) time.Time {
	t = t.In(loc)
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)
	return noon.AddDate(0, 0, n)
}

// Yesterday returns the day key before t.
func Yesterday(t time.Time, loc *time.Location) string {
	return DateKey(AddDays(t, loc, -1), loc)
}

func (s *Store) today(now time.Time) string {
	return DateKey(now, s.loc)
}

// TodayKey returns the current day key.
func (s *Store) TodayKey() string {
	return s.today(s.now())
}
