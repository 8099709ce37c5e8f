package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"holdem-recorder/holdem"
)

var ErrNotFound = errors.New("session not found")

// NotifyFunc receives every committed change of a session. It is called with
// the session lock held, so it must not block or call back into the session.
type NotifyFunc func(snap Snapshot)

// DropFunc is told the id of every session that was deleted or swept. It is
// called with no locks held.
type DropFunc func(id string)

// Session is one hand being recorded. All access to the hand goes through
// Apply or Read, which serialize on the session lock.
type Session struct {
	ID string

	mu        sync.Mutex
	hand      *holdem.Hand
	title     string
	version   uint64
	createdAt time.Time
	updatedAt time.Time
	registry  *Registry
}

// Snapshot is a session's state at one version.
type Snapshot struct {
	ID        string      `json:"id"`
	Title     string      `json:"title,omitempty"`
	Version   uint64      `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	View      holdem.View `json:"view"`
}

type Summary struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	Version   uint64        `json:"version"`
	Players   int           `json:"players"`
	Street    holdem.Street `json:"street"`
	HandOver  bool          `json:"hand_over"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        s.ID,
		Title:     s.title,
		Version:   s.version,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
		View:      s.hand.View(),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Apply runs fn against the hand. When fn succeeds the version is bumped and
// subscribers are notified; when it fails nothing is published.
func (s *Session) Apply(fn func(h *holdem.Hand) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.hand); err != nil {
		return Snapshot{}, err
	}
	s.commitLocked()
	return s.snapshotLocked(), nil
}

// Rebuild swaps the hand for the one fn derives from it, as an undo does.
func (s *Session) Rebuild(fn func(cur *holdem.Hand, title string) (*holdem.Hand, error)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := fn(s.hand, s.title)
	if err != nil {
		return Snapshot{}, err
	}
	s.hand = h
	s.commitLocked()
	return s.snapshotLocked(), nil
}

func (s *Session) SetTitle(title string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
	s.commitLocked()
	return s.snapshotLocked()
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Watch hands fn the current snapshot. No commit is published while fn runs.
func (s *Session) Watch(fn func(snap Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.snapshotLocked())
}

// Read gives fn the hand without publishing anything. fn must not mutate it.
func (s *Session) Read(fn func(h *holdem.Hand, title string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.hand, s.title)
}

func (s *Session) commitLocked() {
	s.version++
	s.updatedAt = s.registry.now()
	if s.registry.notify != nil {
		s.registry.notify(s.snapshotLocked())
	}
}

func (s *Session) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		ID:        s.ID,
		Title:     s.title,
		Version:   s.version,
		Players:   len(s.hand.Players()),
		Street:    s.hand.CurrentStreet(),
		HandOver:  s.hand.IsHandOver(),
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) lastUpdate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Registry holds every live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	notify   NotifyFunc
	dropped  DropFunc
	now      func() time.Time
	log      *logrus.Entry
}

func NewRegistry(log *logrus.Entry, notify NotifyFunc) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		notify:   notify,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.WithField("component", "session"),
	}
}

// OnDrop sets the callback for removed sessions. Call it before the registry
// is shared.
func (r *Registry) OnDrop(fn DropFunc) { r.dropped = fn }

func (r *Registry) drop(ids ...string) {
	if r.dropped == nil {
		return
	}
	for _, id := range ids {
		r.dropped(id)
	}
}

// Add registers a hand under a fresh id.
func (r *Registry) Add(h *holdem.Hand, title string) *Session {
	now := r.now()
	s := &Session{
		ID:        uuid.NewString(),
		hand:      h,
		title:     title,
		version:   1,
		createdAt: now,
		updatedAt: now,
		registry:  r,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	total := len(r.sessions)
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"session": s.ID, "total": total}).Info("session created")
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	if _, ok := r.sessions[id]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	r.log.WithField("session", id).Info("session deleted")
	r.drop(id)
	return nil
}

// List returns every session, most recently updated first.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)
	r.mu.Lock()
	var removed []string
	for id, s := range r.sessions {
		if s.lastUpdate().Before(cutoff) {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	total := len(r.sessions)
	r.mu.Unlock()

	if len(removed) > 0 {
		r.log.WithFields(logrus.Fields{"removed": len(removed), "total": total}).Info("idle sessions swept")
	}
	r.drop(removed...)
	return len(removed)
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ttl)
		}
	}
}
