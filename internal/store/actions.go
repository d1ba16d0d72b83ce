// ABOUTME: Action methods that mutate the store: profile, logs, routine, economy and garden.
// ABOUTME: Every economy check runs before mutation so rejected actions leave state unchanged.
package store

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/harperreed/rhythm/internal/models"
)

// Economy rules.
const (
	RoutineReward   = 0.2
	RefreshCost     = 0.5
	RefreshCooldown = time.Hour
)

var (
	// ErrInsufficientTokens is returned when an action costs more than the balance.
	ErrInsufficientTokens = errors.New("insufficient tokens")
	// ErrInvalidCost is returned for negative or non-finite costs.
	ErrInvalidCost = errors.New("cost must be a non-negative number")
	// ErrUnknownOrigin is returned for origin types outside the catalog.
	ErrUnknownOrigin = errors.New("unknown origin type")
	// ErrNoActiveRoutine is returned when completing without a routine.
	ErrNoActiveRoutine = errors.New("no active routine")
	// ErrRoutineCompleted is returned when the active routine is already done.
	ErrRoutineCompleted = errors.New("routine already completed")
)

// CooldownError reports a free refresh requested before the cooldown elapsed.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("free refresh available in %s", e.Remaining.Round(time.Second))
}

type applyFunc func(s *Store) (section, error)

// do applies an action, journals it for replay and commits the result.
// Callers hold s.mu.
func (s *Store) do(action string, apply applyFunc) error {
	changed, err := apply(s)
	if err != nil {
		return err
	}
	s.record(action, apply)
	s.commit(changed)
	return nil
}

// UpdateProfile shallow-merges u into the profile. It does not validate
// economy invariants; those belong to the economy actions.
func (s *Store) UpdateProfile(u models.ProfileUpdate) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.do("update-profile", func(s *Store) (section, error) {
		s.profile = s.profile.Apply(u)
		return sectionProfile, nil
	})
	return s.profile
}

// CompleteOnboarding sets the name and marks the profile onboarded.
func (s *Store) CompleteOnboarding(name string) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.do("complete-onboarding", func(s *Store) (section, error) {
		s.profile.Name = name
		s.profile.IsOnboarded = true
		return sectionProfile, nil
	})
	return s.profile
}

// SaveDailyLog merges partial into today's record and stamps its timestamp.
func (s *Store) SaveDailyLog(partial models.DailyLog) models.DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := s.today(now)
	partial.Timestamp = now.UnixMilli()
	_ = s.do("save-daily-log", func(s *Store) (section, error) {
		s.mergeLog(today, partial)
		return sectionLogs, nil
	})
	return s.logs[today].Clone()
}

func (s *Store) mergeLog(day string, partial models.DailyLog) {
	if s.logs == nil {
		s.logs = models.DailyLogSet{}
	}
	s.logs[day] = s.logs[day].Merge(partial)
}

// SetRoutine replaces today's routine. An empty ID gets a generated one.
func (s *Store) SetRoutine(r models.Routine) models.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setRoutine(r)
}

func (s *Store) setRoutine(r models.Routine) models.Routine {
	if r.ID == "" {
		r.ID = models.NewRoutine(r.Text).ID
	}
	s.routine = &r
	s.commit(sectionRoutine)
	return r
}

// NewRoutine draws a routine from the pool and installs it.
func (s *Store) NewRoutine() models.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawRoutine()
}

func (s *Store) drawRoutine() models.Routine {
	current := ""
	if s.routine != nil {
		current = s.routine.Text
	}
	return s.setRoutine(models.RandomRoutine(s.rng, current))
}

// DrawRoutine installs a routine from the pool. The first routine, and the
// first one after a day whose routine was completed, are free; any other
// replacement is authorized like RefreshRoutine.
func (s *Store) DrawRoutine(paid bool) (models.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.routineNeedsRefresh(now) {
		if err := s.refresh(paid, now); err != nil {
			return models.Routine{}, err
		}
	}
	return s.drawRoutine(), nil
}

// routineNeedsRefresh reports whether replacing the active routine costs a
// refresh. A completed routine from an earlier day is due for replacement.
// Callers hold s.mu.
func (s *Store) routineNeedsRefresh(now time.Time) bool {
	if s.routine == nil {
		return false
	}
	return !s.routine.Completed || s.profile.LastRoutineDate == s.today(now)
}

// CompleteRoutine marks the active routine done, records it in today's log
// and pays the reward, growing the streak on the first completion of a day.
func (s *Store) CompleteRoutine() (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.routine == nil {
		return s.profile, ErrNoActiveRoutine
	}
	if s.routine.Completed {
		return s.profile, ErrRoutineCompleted
	}

	r := *s.routine
	r.Completed = true
	s.routine = &r
	s.persistLocal(sectionRoutine)

	now := s.now()
	_ = s.do("complete-routine", func(s *Store) (section, error) {
		s.creditRoutine(now)
		return sectionProfile | sectionLogs, nil
	})
	return s.profile, nil
}

// creditRoutine is the single derived update of the economy fields.
func (s *Store) creditRoutine(now time.Time) {
	today := s.today(now)
	s.mergeLog(today, models.DailyLog{RoutineCompleted: models.Ptr(true)})

	p := s.profile
	if p.LastRoutineDate != today {
		if p.LastRoutineDate == Yesterday(now, s.loc) {
			p.CurrentStreak++
		} else {
			p.CurrentStreak = 1
		}
		p.DailyRoutineCount = 0
	}
	p.BestStreak = max(p.BestStreak, p.CurrentStreak)
	p.DailyRoutineCount++
	p.Tokens = models.RoundTokens(p.Tokens + RoutineReward)
	p.LastRoutineDate = today
	s.profile = p
}

// RefreshRoutine authorizes generating a new routine. A paid refresh costs
// RefreshCost tokens; a free one needs RefreshCooldown since the last refresh.
// The caller installs the new routine.
func (s *Store) RefreshRoutine(paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(paid, s.now())
}

func (s *Store) refresh(paid bool, now time.Time) error {
	return s.do("refresh-routine", func(s *Store) (section, error) {
		if paid {
			if s.profile.Tokens < RefreshCost {
				return 0, ErrInsufficientTokens
			}
			s.profile.Tokens = models.RoundTokens(s.profile.Tokens - RefreshCost)
		} else if elapsed := now.Sub(time.UnixMilli(s.profile.LastRefreshTime)); s.profile.LastRefreshTime != 0 && elapsed < RefreshCooldown {
			return 0, &CooldownError{Remaining: RefreshCooldown - elapsed}
		}
		s.profile.LastRefreshTime = now.UnixMilli()
		return sectionProfile, nil
	})
}

// ThrowObject spends cost tokens and plants a new garden item.
func (s *Store) ThrowObject(origin models.OriginType, cost float64) (models.GardenItem, error) {
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return models.GardenItem{}, ErrInvalidCost
	}
	if !models.IsValidOriginType(string(origin)) {
		return models.GardenItem{}, fmt.Errorf("%w: %q", ErrUnknownOrigin, origin)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	pos := models.Placement(s.rng)
	var item models.GardenItem
	err := s.do("throw-object", func(s *Store) (section, error) {
		if s.profile.Tokens < cost {
			return 0, ErrInsufficientTokens
		}
		id := now.UnixMilli()
		if n := len(s.garden); n > 0 && s.garden[n-1].ID >= id {
			id = s.garden[n-1].ID + 1
		}
		p := pos
		item = models.GardenItem{
			ID:         id,
			OriginType: origin,
			Position:   &p,
			PlantedAt:  now.UTC().Format(time.RFC3339),
		}
		s.profile.Tokens = models.RoundTokens(s.profile.Tokens - cost)
		s.garden = append(s.garden, item)
		return sectionProfile | sectionGarden, nil
	})
	if err != nil {
		return models.GardenItem{}, err
	}
	return models.CloneGarden([]models.GardenItem{item})[0], nil
}

// Restore replaces every entity with the snapshot, migrates it and commits
// it through the normal path.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = snap.Profile
	s.logs = snap.Logs.Clone()
	if s.logs == nil {
		s.logs = models.DailyLogSet{}
	}
	s.garden = models.CloneGarden(snap.Garden)
	changed := sectionsRemote
	if snap.Routine != nil {
		r := *snap.Routine
		s.routine = &r
		changed |= sectionRoutine
	}
	s.runMigrations()
	s.commit(changed)
	s.log.Info("restored snapshot", "days", len(s.logs), "garden", len(s.garden))
}
