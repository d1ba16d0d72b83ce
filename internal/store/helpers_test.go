// ABOUTME: Shared fixtures for store tests: fake clock, fake replica and failing cache.
// ABOUTME: Lets tests drive time, remote reads and persistence failures deterministically.
package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/rhythm/internal/cache"
	"github.com/harperreed/rhythm/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeReplica records merges and serves a configurable document.
type fakeReplica struct {
	mu       sync.Mutex
	doc      *models.Document
	readErr  error
	mergeErr error
	merges   []*models.Document
	gate     chan struct{}

	// mergeGate, when set, holds every merge until it is closed.
	mergeGate    chan struct{}
	mergeStarted chan struct{}
}

func (r *fakeReplica) ReadDocument(ctx context.Context, userID string) (*models.Document, error) {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	if r.doc == nil {
		return nil, models.ErrDocumentNotFound
	}
	return r.doc, nil
}

func (r *fakeReplica) MergeDocument(ctx context.Context, userID string, doc *models.Document) error {
	r.mu.Lock()
	gate, started := r.mergeGate, r.mergeStarted
	r.mu.Unlock()
	if gate != nil {
		select {
		case started <- struct{}{}:
		default:
		}
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mergeErr != nil {
		return r.mergeErr
	}
	r.merges = append(r.merges, doc)
	return nil
}

func (r *fakeReplica) Merges() []*models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Document(nil), r.merges...)
}

func (r *fakeReplica) SetMergeErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mergeErr = err
}

// BlockMerges holds merges until release is closed. started receives once
// per merge that reaches the replica.
func (r *fakeReplica) BlockMerges() (started <-chan struct{}, release chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mergeGate = make(chan struct{})
	r.mergeStarted = make(chan struct{}, 1)
	return r.mergeStarted, r.mergeGate
}

func staticIdentity(id string) Identity {
	return IdentityFunc(func(ctx context.Context) (string, error) {
		return id, nil
	})
}

// brokenCache fails every write and optionally every read.
type brokenCache struct {
	failReads bool
}

var errBroken = errors.New("disk full")

func (b brokenCache) Get(key string) (string, bool, error) {
	if b.failReads {
		return "", false, errBroken
	}
	return "", false, nil
}

func (b brokenCache) Set(key, value string) error {
	return errBroken
}

// testDay is a fixed midday instant so date arithmetic is unambiguous.
var testDay = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store   *Store
	cache   *cache.Memory
	clock   *fakeClock
	replica *fakeReplica
	logs    *syncBuffer
}

// newOfflineStore builds a store without a replica.
func newOfflineStore(t *testing.T) *testEnv {
	t.Helper()
	return newEnv(t, nil, nil, false)
}

func newEnv(t *testing.T, replica *fakeReplica, id Identity, replay bool) *testEnv {
	t.Helper()
	env := &testEnv{
		cache:   cache.NewMemory(),
		clock:   newClock(testDay),
		replica: replica,
		logs:    &syncBuffer{},
	}
	env.store = env.open(t, id, replay)
	return env
}

func (e *testEnv) open(t *testing.T, id Identity, replay bool) *Store {
	t.Helper()
	opts := Options{
		Logger:         newTestLogger(e.logs),
		Now:            e.clock.Now,
		Rand:           rand.New(rand.NewSource(1)),
		DebounceWindow: 50 * time.Millisecond,
		ReplayPreSync:  replay,
		DeviceID:       "test-device",
	}
	if e.replica != nil {
		opts.Replica = e.replica
		opts.Identity = id
	}
	return New(e.cache, opts)
}

// syncBuffer guards the log buffer against concurrent writes from timers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{Level: log.DebugLevel})
}

func withTokens(t *testing.T, s *Store, tokens float64) {
	t.Helper()
	s.UpdateProfile(models.ProfileUpdate{Tokens: models.Ptr(tokens)})
}
