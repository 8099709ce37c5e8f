package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"holdem-recorder/history"
	"holdem-recorder/holdem"
	"holdem-recorder/homegame"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSavedLimitReach = errors.New("saved hand limit reached")
)

// Store keeps recorded hands and home games.
//
// Unsaved hands form a rolling window: inserting one trims the oldest
// unsaved hands beyond the recent limit. Saved hands are kept until unsaved
// or deleted, up to the saved limit.
type Store interface {
	Close() error
	PutHand(ctx context.Context, rec HandRecord) error
	GetHand(ctx context.Context, id string) (HandRecord, error)
	// ListRecent returns newest first, without the spec.
	ListRecent(ctx context.Context, limit int) ([]HandRecord, error)
	SetSaved(ctx context.Context, id string, saved bool) error
	DeleteHand(ctx context.Context, id string) error
	PutGame(ctx context.Context, g *homegame.Game) error
	GetGame(ctx context.Context, code string) (*homegame.Game, error)
}

type HandSummary struct {
	Players  int    `json:"players"`
	Hero     string `json:"hero,omitempty"`
	Street   string `json:"street"`
	TotalPot int64  `json:"total_pot"`
	Finished bool   `json:"finished"`
}

type HandRecord struct {
	ID         string           `json:"id"`
	Title      string           `json:"title,omitempty"`
	Spec       history.HandSpec `json:"spec"`
	ShareCode  string           `json:"share_code"`
	Summary    HandSummary      `json:"summary"`
	RecordedAt time.Time        `json:"recorded_at"`
	IsSaved    bool             `json:"is_saved"`
	SavedAt    *time.Time       `json:"saved_at,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewRecord snapshots h for storage.
func NewRecord(id, title string, h *holdem.Hand, now time.Time) (HandRecord, error) {
	spec := history.Export(h, title)
	code, err := history.EncodeShareCode(spec)
	if err != nil {
		return HandRecord{}, fmt.Errorf("share code for hand %s: %w", id, err)
	}
	now = now.UTC().Truncate(time.Millisecond)
	return HandRecord{
		ID:         id,
		Title:      title,
		Spec:       spec,
		ShareCode:  code,
		Summary:    Summarize(h),
		RecordedAt: now,
		UpdatedAt:  now,
	}, nil
}

func Summarize(h *holdem.Hand) HandSummary {
	s := HandSummary{
		Players:  len(h.Players()),
		Street:   h.CurrentStreet().String(),
		TotalPot: h.TotalPot(holdem.StreetRiver),
		Finished: h.IsHandOver(),
	}
	if hero, ok := h.Hero(); ok {
		s.Hero = hero.Position.String()
	}
	return s
}
