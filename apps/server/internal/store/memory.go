package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"holdem-recorder/history"
	"holdem-recorder/homegame"
)

type memoryStore struct {
	mu          sync.RWMutex
	hands       map[string]HandRecord
	games       map[string][]byte
	recentLimit int
	savedLimit  int
}

// NewMemory returns a Store that lives only as long as the process.
func NewMemory(recentLimit, savedLimit int) Store {
	return &memoryStore{
		hands:       make(map[string]HandRecord),
		games:       make(map[string][]byte),
		recentLimit: recentLimit,
		savedLimit:  savedLimit,
	}
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) PutHand(_ context.Context, rec HandRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.hands[rec.ID]; ok {
		rec.RecordedAt = old.RecordedAt
		rec.IsSaved = old.IsSaved
		rec.SavedAt = old.SavedAt
	}
	s.hands[rec.ID] = rec
	s.trimLocked()
	return nil
}

// sorted returns records newest first.
func (s *memoryStore) sorted(filter func(HandRecord) bool) []HandRecord {
	out := make([]HandRecord, 0, len(s.hands))
	for _, rec := range s.hands {
		if filter == nil || filter(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *memoryStore) trimLocked() {
	if s.recentLimit <= 0 {
		return
	}
	unsaved := s.sorted(func(r HandRecord) bool { return !r.IsSaved })
	for i := s.recentLimit; i < len(unsaved); i++ {
		delete(s.hands, unsaved[i].ID)
	}
}

func (s *memoryStore) GetHand(_ context.Context, id string) (HandRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.hands[id]
	if !ok {
		return HandRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *memoryStore) ListRecent(_ context.Context, limit int) ([]HandRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items := s.sorted(nil)
	if len(items) > limit {
		items = items[:limit]
	}
	for i := range items {
		items[i].Spec = history.HandSpec{}
	}
	return items, nil
}

func (s *memoryStore) SetSaved(_ context.Context, id string, saved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.hands[id]
	if !ok {
		return ErrNotFound
	}
	if rec.IsSaved == saved {
		return nil
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if saved {
		if len(s.sorted(func(r HandRecord) bool { return r.IsSaved })) >= s.savedLimit {
			return ErrSavedLimitReach
		}
		rec.SavedAt = &now
	} else {
		rec.SavedAt = nil
	}
	rec.IsSaved = saved
	rec.UpdatedAt = now
	s.hands[id] = rec
	if !saved {
		s.trimLocked()
	}
	return nil
}

func (s *memoryStore) DeleteHand(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hands[id]; !ok {
		return ErrNotFound
	}
	delete(s.hands, id)
	return nil
}

// Games are kept encoded so callers never share a *Game with the store.
func (s *memoryStore) PutGame(_ context.Context, g *homegame.Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", g.Code, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.Code] = raw
	return nil
}

func (s *memoryStore) GetGame(_ context.Context, code string) (*homegame.Game, error) {
	s.mu.RLock()
	raw, ok := s.games[code]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var g homegame.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
