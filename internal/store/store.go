// ABOUTME: Progress & economy store owning profile, logs, routine and garden.
// ABOUTME: Reads are synchronous snapshots; writes go through to the cache and a debounced remote push.
package store

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/rhythm/internal/cache"
	"github.com/harperreed/rhythm/internal/models"
)

// DefaultDebounceWindow is the quiet period before a remote push.
const DefaultDebounceWindow = 3 * time.Second

// Cache is the local durable key-value port.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Replica is the remote document port.
type Replica interface {
	// ReadDocument returns models.ErrDocumentNotFound when the user has no document.
	ReadDocument(ctx context.Context, userID string) (*models.Document, error)
	MergeDocument(ctx context.Context, userID string, doc *models.Document) error
}

// Identity supplies the user identifier. UserID blocks until one is available.
type Identity interface {
	UserID(ctx context.Context) (string, error)
}

// IdentityFunc adapts a function to Identity.
type IdentityFunc func(ctx context.Context) (string, error)

// UserID calls f.
func (f IdentityFunc) UserID(ctx context.Context) (string, error) {
	return f(ctx)
}

// Options configures a Store. Zero values get defaults.
type Options struct {
	Replica  Replica
	Identity Identity
	Logger   *log.Logger

	Now      func() time.Time
	Rand     *rand.Rand
	Location *time.Location

	DebounceWindow time.Duration
	// ReplayPreSync re-applies actions taken before the first remote read
	// resolved on top of the remote state instead of discarding them.
	ReplayPreSync bool
	DeviceID      string
}

// section is a bitmask of entities touched by a mutation.
type section uint8

const (
	sectionProfile section = 1 << iota
	sectionLogs
	sectionRoutine
	sectionGarden

	sectionsRemote = sectionProfile | sectionLogs | sectionGarden
)

// Store is the single source of truth for the user's progress.
type Store struct {
	mu sync.Mutex

	profile models.Profile
	logs    models.DailyLogSet
	routine *models.Routine
	garden  []models.GardenItem

	cache    Cache
	replica  Replica
	identity Identity
	log      *log.Logger
	now      func() time.Time
	rng      *rand.Rand
	loc      *time.Location
	replay   bool
	deviceID string

	state    SyncState
	userID   string
	started  bool
	ready    chan struct{}
	dirty    section
	journal  []journalEntry
	preSync  int
	pusher   *Debouncer
	pushSlot chan struct{}
	lastPush time.Time
}

// New loads every entity from the cache, applies migrations and returns a
// local-only store. It never blocks on the network.
func New(c Cache, opts Options) *Store {
	if c == nil {
		c = cache.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(opts.Now().UnixNano()))
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}

	s := &Store{
		cache:    c,
		replica:  opts.Replica,
		identity: opts.Identity,
		log:      opts.Logger,
		now:      opts.Now,
		rng:      opts.Rand,
		loc:      opts.Location,
		replay:   opts.ReplayPreSync,
		deviceID: opts.DeviceID,
		ready:    make(chan struct{}),
		pusher:   NewDebouncer(opts.DebounceWindow),
		pushSlot: make(chan struct{}, 1),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = loadEntity(s, cache.KeyProfile, models.NewProfile())
	s.logs = loadEntity(s, cache.KeyLogs, models.DailyLogSet{})
	s.routine = loadEntity[*models.Routine](s, cache.KeyRoutine, nil)
	s.garden = loadEntity(s, cache.KeyGarden, []models.GardenItem{})
	if s.logs == nil {
		s.logs = models.DailyLogSet{}
	}

	if changed := s.runMigrations(); changed != 0 {
		s.commit(changed)
	}
	s.state = StateLocalOnly
	if s.replica == nil || s.identity == nil {
		// Nothing to wait for: offline stores are ready immediately.
		close(s.ready)
	}
	return s
}

// loadEntity decodes a cached entity, falling back to def when the key is
// absent or unreadable.
func loadEntity[T any](s *Store, key string, def T) T {
	raw, ok, err := s.cache.Get(key)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return def
	}
	if !ok || raw == "" || raw == "null" {
		return def
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.log.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return def
	}
	return v
}

// Snapshot is a deep copy of the store's entities.
type Snapshot struct {
	Profile models.Profile      `json:"profile"`
	Logs    models.DailyLogSet  `json:"logs"`
	Routine *models.Routine     `json:"routine,omitempty"`
	Garden  []models.GardenItem `json:"garden"`
}

// Snapshot returns a copy of all entities.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Profile: s.profile,
		Logs:    s.logs.Clone(),
		Garden:  models.CloneGarden(s.garden),
	}
	if s.routine != nil {
		r := *s.routine
		snap.Routine = &r
	}
	return snap
}

// Profile returns the current profile.
func (s *Store) Profile() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Logs returns a copy of the daily log set.
func (s *Store) Logs() models.DailyLogSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs.Clone()
}

// TodayLog returns today's log, if any.
func (s *Store) TodayLog() (models.DailyLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[s.today(s.now())]
	return l.Clone(), ok
}

// Routine returns today's routine, or nil when none is active.
func (s *Store) Routine() *models.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.routine == nil {
		return nil
	}
	r := *s.routine
	return &r
}

// Garden returns a copy of the garden collection.
func (s *Store) Garden() []models.GardenItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneGarden(s.garden)
}

// Summary aggregates the logs for the stats screen.
func (s *Store) Summary() models.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Summarize(s.logs, s.profile)
}

// RhythmDay is one day of the recent-rhythm strip.
type RhythmDay struct {
	Date    string   `json:"date"`
	CheckIn bool     `json:"checkIn"`
	Routine bool     `json:"routine"`
	Sleep   *float64 `json:"sleep,omitempty"`
}

// Rhythm returns the last n days, oldest first, ending today.
func (s *Store) Rhythm(n int) []RhythmDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return nil
	}
	today := s.now()
	days := make([]RhythmDay, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := DateKey(AddDays(today, s.loc, -i), s.loc)
		d := RhythmDay{Date: key}
		if l, ok := s.logs[key]; ok {
			d.CheckIn = l.HasCheckIn()
			d.Routine = l.HasRoutine()
			d.Sleep = l.SleepHours
		}
		days = append(days, d)
	}
	return days
}

// persistLocal writes the given entities through to the cache. Failures are
// logged and leave the in-memory state untouched.
func (s *Store) persistLocal(changed section) {
	write := func(key string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			s.log.Error("encode entity", "key", key, "error", err)
			return
		}
		if err := s.cache.Set(key, string(data)); err != nil {
			s.log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	if changed&sectionProfile != 0 {
		write(cache.KeyProfile, s.profile)
	}
	if changed&sectionLogs != 0 {
		write(cache.KeyLogs, s.logs)
	}
	if changed&sectionRoutine != 0 && s.routine != nil {
		write(cache.KeyRoutine, s.routine)
	}
	if changed&sectionGarden != 0 {
		write(cache.KeyGarden, s.garden)
	}
}

// commit persists changed entities and schedules the remote push.
// Callers hold s.mu.
func (s *Store) commit(changed section) {
	s.persistLocal(changed)
	if remote := changed & sectionsRemote; remote != 0 {
		s.dirty |= remote
		s.schedulePush()
	}
}
