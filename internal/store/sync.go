// ABOUTME: Remote reconciliation: the initial pull state machine and debounced pushes.
// ABOUTME: The first successful remote read replaces local state in one guarded transition.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/rhythm/internal/models"
)

// SyncState is the store's position in the reconciliation lifecycle.
type SyncState int

const (
	StateUninitialized SyncState = iota
	StateLocalOnly
	StateSyncing
	StateSynced
)

func (s SyncState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLocalOnly:
		return "local-only"
	case StateSyncing:
		return "syncing"
	case StateSynced:
		return "synced"
	default:
		return fmt.Sprintf("SyncState(%d)", int(s))
	}
}

// pushTimeout bounds a single debounced remote write.
const pushTimeout = 10 * time.Second

// journalEntry re-applies the remote-visible effect of an action taken before
// the initial pull resolved.
type journalEntry struct {
	action string
	apply  func(s *Store) (section, error)
}

// Status describes the sync side of the store.
type Status struct {
	State    SyncState `json:"state"`
	UserID   string    `json:"userId,omitempty"`
	Dirty    bool      `json:"dirty"`
	Pending  bool      `json:"pending"`
	LastPush time.Time `json:"lastPush,omitempty"`
}

// State returns the current sync state.
func (s *Store) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the current sync status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:    s.state,
		UserID:   s.userID,
		Dirty:    s.dirty != 0,
		Pending:  s.pusher.Pending(),
		LastPush: s.lastPush,
	}
}

// Ready is closed once the initial pull has resolved or been abandoned.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until Ready is closed or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start resolves the identity and performs the initial pull in the background.
// Calling it on an offline store or more than once does nothing.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.replica == nil || s.identity == nil {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.pull(ctx)
}

func (s *Store) pull(ctx context.Context) {
	userID, err := s.identity.UserID(ctx)
	if err != nil || userID == "" {
		s.log.Warn("no identity, staying local-only", "error", err)
		s.mu.Lock()
		s.abandonPull()
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if s.state != StateLocalOnly {
		s.mu.Unlock()
		return
	}
	s.state = StateSyncing
	s.userID = userID
	s.mu.Unlock()
	s.log.Debug("reading remote document", "user", userID)

	doc, err := s.replica.ReadDocument(ctx, userID)
	s.finishPull(ctx, doc, err)
}

// finishPull is the only transition out of StateSyncing.
func (s *Store) finishPull(ctx context.Context, doc *models.Document, readErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSyncing {
		return
	}
	if ctx.Err() != nil {
		s.log.Warn("discarding remote read after cancellation", "error", ctx.Err())
		s.abandonPull()
		return
	}

	switch {
	case readErr == nil && doc != nil:
		s.replaceFromRemote(doc)
	case readErr == nil || errors.Is(readErr, models.ErrDocumentNotFound):
		s.log.Info("no remote document, seeding from local state")
		// Local state already carries the journaled actions.
		s.dirty = sectionsRemote
		s.journal, s.preSync = nil, 0
	default:
		s.log.Error("remote read failed, staying local-only", "error", readErr)
		s.abandonPull()
		return
	}

	s.state = StateSynced
	s.markReady()
	s.log.Info("synced", "user", s.userID)
	if s.dirty != 0 {
		s.schedulePush()
	}
}

// replaceFromRemote swaps in every section the document carries. Sections the
// document lacks keep their local value and are queued for push.
func (s *Store) replaceFromRemote(doc *models.Document) {
	var replaced section
	s.dirty = 0
	if doc.Profile != nil {
		s.profile = *doc.Profile
		replaced |= sectionProfile
	}
	if doc.Logs != nil {
		s.logs = doc.Logs.Clone()
		replaced |= sectionLogs
	}
	if doc.Garden != nil {
		s.garden = models.CloneGarden(doc.Garden)
		replaced |= sectionGarden
	}
	s.dirty = sectionsRemote &^ replaced

	changed := s.runMigrations()
	s.persistLocal(replaced | changed)
	s.dirty |= changed & sectionsRemote
	if s.preSync > 0 && !s.replay {
		s.log.Warn("discarded local changes made before sync", "actions", s.preSync)
	}
	s.replayJournal()
}

// replayJournal re-applies pre-sync actions on top of the current state.
func (s *Store) replayJournal() {
	journal := s.journal
	s.journal, s.preSync = nil, 0
	if !s.replay {
		return
	}
	for _, e := range journal {
		changed, err := e.apply(s)
		if err != nil {
			s.log.Warn("dropped pre-sync action", "action", e.action, "error", err)
			continue
		}
		s.persistLocal(changed)
		s.dirty |= changed & sectionsRemote
	}
	if len(journal) > 0 {
		s.log.Info("replayed pre-sync actions", "actions", len(journal))
	}
}

// abandonPull leaves the store local-only for the rest of the session.
func (s *Store) abandonPull() {
	s.state = StateLocalOnly
	s.journal, s.preSync = nil, 0
	s.markReady()
}

func (s *Store) markReady() {
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
}

// record counts an action taken while the initial pull is outstanding and
// journals it when replay is on. Callers hold s.mu.
func (s *Store) record(action string, apply func(s *Store) (section, error)) {
	if !s.awaitingPull() {
		return
	}
	s.preSync++
	if s.replay {
		s.journal = append(s.journal, journalEntry{action: action, apply: apply})
	}
}

func (s *Store) awaitingPull() bool {
	if s.replica == nil || s.identity == nil || s.state == StateSynced {
		return false
	}
	select {
	case <-s.ready:
		return false
	default:
		return true
	}
}

// schedulePush (re)arms the debounced remote write. Callers hold s.mu.
func (s *Store) schedulePush() {
	if s.state != StateSynced || s.replica == nil {
		return
	}
	s.pusher.Debounce(func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := s.push(ctx); err != nil {
			s.log.Error("remote write failed", "error", err)
		}
	})
}

// push sends the dirty sections as one merge. A failed write is not retried;
// its sections ride along with the next push. Pushes never overlap: a push
// waits for the one in flight, bounded by ctx.
func (s *Store) push(ctx context.Context) error {
	select {
	case s.pushSlot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("wait for in-flight push: %w", ctx.Err())
	}
	defer func() { <-s.pushSlot }()

	s.mu.Lock()
	if s.state != StateSynced || s.dirty == 0 {
		s.mu.Unlock()
		return nil
	}
	sent := s.dirty
	doc := &models.Document{
		LastUpdated: s.now().UTC(),
		Device:      s.deviceID,
	}
	if sent&sectionProfile != 0 {
		p := s.profile
		doc.Profile = &p
	}
	if sent&sectionLogs != 0 {
		doc.Logs = s.logs.Clone()
		if doc.Logs == nil {
			doc.Logs = models.DailyLogSet{}
		}
	}
	if sent&sectionGarden != 0 {
		doc.Garden = models.CloneGarden(s.garden)
		if doc.Garden == nil {
			doc.Garden = []models.GardenItem{}
		}
	}
	userID := s.userID
	s.dirty = 0
	s.mu.Unlock()

	err := s.replica.MergeDocument(ctx, userID, doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.dirty |= sent
		return fmt.Errorf("merge document: %w", err)
	}
	s.lastPush = doc.LastUpdated
	s.log.Debug("pushed remote document", "user", userID)
	return nil
}

// Flush sends any pending remote write immediately. A push already in
// flight is waited for first.
func (s *Store) Flush(ctx context.Context) error {
	s.pusher.Cancel()
	return s.push(ctx)
}

// PushAll marks every synced entity dirty and sends them now.
func (s *Store) PushAll(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateSynced {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot push while %s", state)
	}
	s.dirty = sectionsRemote
	s.mu.Unlock()
	return s.Flush(ctx)
}

// Close flushes a pending remote write. The cache is owned by the caller.
func (s *Store) Close(ctx context.Context) error {
	return s.Flush(ctx)
}
