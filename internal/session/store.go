package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

// Snapshot is an immutable copy of a session's GTMState at one version.
// Version 0 is the empty state every session starts from.
type Snapshot struct {
	Session   string          `json:"session"`
	Version   uint64          `json:"version"`
	State     models.GTMState `json:"state"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// EmptySnapshot is the state delivered before any agent activity.
func EmptySnapshot(name string) Snapshot {
	return Snapshot{Session: name, State: models.NewGTMState()}
}

// Source is anything that can feed snapshots of a named session.
// The returned channel is closed when ctx is done or the feed ends.
type Source interface {
	Watch(ctx context.Context, name string) (<-chan Snapshot, error)
}

type entry struct {
	state     models.GTMState
	version   uint64
	updatedAt time.Time
	watchers  map[chan Snapshot]struct{}
}

// Store keeps one GTMState per session. Only the agent write path mutates it
// through Update; readers get clones. Versions of a session name never go
// backwards, not even across Drop.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	// floors holds the last version of dropped sessions nobody was watching.
	floors map[string]uint64
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*entry),
		floors:   make(map[string]uint64),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Store) get(name string) *entry {
	e, ok := s.sessions[name]
	if !ok {
		e = &entry{
			state:    models.NewGTMState(),
			version:  s.floors[name],
			watchers: make(map[chan Snapshot]struct{}),
		}
		delete(s.floors, name)
		s.sessions[name] = e
	}
	return e
}

func (e *entry) snapshot(name string) Snapshot {
	return Snapshot{Session: name, Version: e.version, State: e.state.Clone(), UpdatedAt: e.updatedAt}
}

// Snapshot returns the current value of a session, creating it empty if needed.
func (s *Store) Snapshot(name string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(name).snapshot(name)
}

// Update applies fn to the session state, bumps its version and publishes the
// result to every watcher. fn must not retain the pointer.
func (s *Store) Update(name string, fn func(*models.GTMState)) Snapshot {
	snap, _ := s.TryUpdate(name, func(st *models.GTMState) error {
		fn(st)
		return nil
	})
	return snap
}

// TryUpdate is Update for mutations that can fail. When fn returns an error
// the session is left untouched and its current snapshot is returned.
func (s *Store) TryUpdate(name string, fn func(*models.GTMState) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(name)
	next := e.state.Clone()
	if err := fn(&next); err != nil {
		return e.snapshot(name), err
	}
	e.state = next
	e.version++
	e.updatedAt = s.now()

	snap := e.snapshot(name)
	for ch := range e.watchers {
		offer(ch, snap)
	}
	s.logger.Debug("session state updated",
		zap.String("session", name),
		zap.Uint64("version", e.version),
		zap.Int("watchers", len(e.watchers)))
	return snap, nil
}

// Replace installs a complete state, as received from an external agent.
func (s *Store) Replace(name string, state models.GTMState) Snapshot {
	return s.Update(name, func(st *models.GTMState) { *st = state.Clone() })
}

// Watch implements Source. The current snapshot is queued immediately; a slow
// reader only ever sees the latest value.
func (s *Store) Watch(ctx context.Context, name string) (<-chan Snapshot, error) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	e := s.get(name)
	e.watchers[ch] = struct{}{}
	offer(ch, e.snapshot(name))
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := e.watchers[ch]; ok {
			delete(e.watchers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}()
	return ch, nil
}

// Watchers is the number of open watches on a session.
func (s *Store) Watchers(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[name]; ok {
		return len(e.watchers)
	}
	return 0
}

// Sessions lists known session names in sorted order.
func (s *Store) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.sessions))
	for name := range s.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Drop starts a session over. Watchers stay open and receive an empty
// snapshot with a newer version, so a live view follows the next
// conversation without resubscribing. A session nobody watches is removed.
func (s *Store) Drop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[name]
	if !ok {
		return
	}
	e.state = models.NewGTMState()
	e.version++
	e.updatedAt = s.now()
	if len(e.watchers) == 0 {
		delete(s.sessions, name)
		s.floors[name] = e.version
		return
	}
	snap := e.snapshot(name)
	for ch := range e.watchers {
		offer(ch, snap)
	}
	s.logger.Debug("session reset",
		zap.String("session", name),
		zap.Uint64("version", e.version),
		zap.Int("watchers", len(e.watchers)))
}

// offer puts v into a one-slot channel, discarding whatever was waiting.
// Callers serialize offers per channel.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
