package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"holdem-recorder/apps/server/internal/config"
	"holdem-recorder/history"
	"holdem-recorder/homegame"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return logrus.NewEntry(l)
}

func sampleSpec() history.HandSpec {
	turn, river := "5s", "9d"
	return history.HandSpec{
		Table: history.TableSpec{SB: 1, BB: 2},
		Seats: []history.SeatSpec{
			{Position: "BTN", Stack: 200, IsHero: true, Hole: []string{"As", "Kd"}},
			{Position: "SB", Stack: 200},
			{Position: "BB", Stack: 200},
		},
		Board: &history.BoardSpec{Flop: []string{"Qh", "Jh", "2c"}, Turn: &turn, River: &river},
		Actions: []history.ActionSpec{
			{Street: "preflop", Position: "BTN", Type: "raise", Amount: 6},
			{Street: "preflop", Position: "SB", Type: "fold"},
			{Street: "preflop", Position: "BB", Type: "call", Amount: 6},
			{Street: "flop", Position: "BB", Type: "check"},
			{Street: "flop", Position: "BTN", Type: "check"},
		},
	}
}

func sampleRecord(t *testing.T, id string, at time.Time) HandRecord {
	t.Helper()
	h, err := history.Build(sampleSpec())
	require.NoError(t, err)
	rec, err := NewRecord(id, "hand "+id, h, at)
	require.NoError(t, err)
	return rec
}

type storeFactory func(t *testing.T, recentLimit, savedLimit int) Store

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, recentLimit, savedLimit int) Store {
			return NewMemory(recentLimit, savedLimit)
		},
		"sqlite": func(t *testing.T, recentLimit, savedLimit int) Store {
			s, err := NewSQLite(":memory:", recentLimit, savedLimit, testLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range storeFactories() {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Run("PutGetHand", func(t *testing.T) { testPutGetHand(t, open(t, 10, 5)) })
			t.Run("RecentWindow", func(t *testing.T) { testRecentWindow(t, open(t, 3, 5)) })
			t.Run("SavedLimit", func(t *testing.T) { testSavedLimit(t, open(t, 10, 1)) })
			t.Run("Delete", func(t *testing.T) { testDelete(t, open(t, 10, 5)) })
			t.Run("Games", func(t *testing.T) { testGames(t, open(t, 10, 5)) })
		})
	}
}

func testPutGetHand(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := sampleRecord(t, "h1", base)
	require.NoError(t, s.PutHand(ctx, rec))

	got, err := s.GetHand(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, rec.ShareCode, got.ShareCode)
	require.Equal(t, "hand h1", got.Title)
	require.Equal(t, 3, got.Summary.Players)
	require.Equal(t, "BTN", got.Summary.Hero)
	require.Equal(t, int64(13), got.Summary.TotalPot)
	require.Len(t, got.Spec.Actions, 5)
	require.True(t, got.RecordedAt.Equal(base))
	require.False(t, got.IsSaved)

	h, err := history.Build(got.Spec)
	require.NoError(t, err)
	require.Equal(t, int64(13), h.View().TotalPot)

	// re-putting keeps the original record time
	again := sampleRecord(t, "h1", base.Add(time.Hour))
	again.Title = "renamed"
	require.NoError(t, s.PutHand(ctx, again))
	got, err = s.GetHand(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Title)
	require.True(t, got.RecordedAt.Equal(base))

	_, err = s.GetHand(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func testRecentWindow(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.PutHand(ctx, sampleRecord(t, fmt.Sprintf("h%d", i), base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, s.SetSaved(ctx, "h0", true))

	for i := 3; i < 6; i++ {
		require.NoError(t, s.PutHand(ctx, sampleRecord(t, fmt.Sprintf("h%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	items, err := s.ListRecent(ctx, 50)
	require.NoError(t, err)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
		require.Empty(t, it.Spec.Actions)
	}
	// three newest unsaved plus the saved one
	require.Equal(t, []string{"h5", "h4", "h3", "h0"}, ids)

	saved, err := s.GetHand(ctx, "h0")
	require.NoError(t, err)
	require.True(t, saved.IsSaved)
	require.NotNil(t, saved.SavedAt)

	// unsaving pushes h0 back into the window, where it is the oldest
	require.NoError(t, s.SetSaved(ctx, "h0", false))
	_, err = s.GetHand(ctx, "h0")
	require.ErrorIs(t, err, ErrNotFound)

	items, err = s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "h5", items[0].ID)
}

func testSavedLimit(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.PutHand(ctx, sampleRecord(t, "a", base)))
	require.NoError(t, s.PutHand(ctx, sampleRecord(t, "b", base.Add(time.Minute))))

	require.NoError(t, s.SetSaved(ctx, "a", true))
	require.NoError(t, s.SetSaved(ctx, "a", true), "saving twice is a no-op")
	require.ErrorIs(t, s.SetSaved(ctx, "b", true), ErrSavedLimitReach)
	require.ErrorIs(t, s.SetSaved(ctx, "nope", true), ErrNotFound)

	require.NoError(t, s.SetSaved(ctx, "a", false))
	require.NoError(t, s.SetSaved(ctx, "b", true))
}

func testDelete(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.PutHand(ctx, sampleRecord(t, "x", time.Now())))
	require.NoError(t, s.DeleteHand(ctx, "x"))
	require.ErrorIs(t, s.DeleteHand(ctx, "x"), ErrNotFound)
	_, err := s.GetHand(ctx, "x")
	require.ErrorIs(t, err, ErrNotFound)
}

func testGames(t *testing.T, s Store) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	g, err := homegame.New(start)
	require.NoError(t, err)
	require.NoError(t, g.AddPlayer("Ann", decimal.NewFromInt(50), start))
	require.NoError(t, s.PutGame(ctx, g))

	require.NoError(t, g.Rebuy("Ann", decimal.NewFromInt(25), start.Add(time.Hour)))
	require.NoError(t, s.PutGame(ctx, g))

	got, err := s.GetGame(ctx, g.Code)
	require.NoError(t, err)
	require.Equal(t, g.Code, got.Code)
	p, ok := got.Player("Ann")
	require.True(t, ok)
	require.True(t, p.TotalBuyIn().Equal(decimal.NewFromInt(75)))

	_, err = s.GetGame(ctx, "ZZZZZZ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRebind(t *testing.T) {
	q := `UPDATE t SET a = ?, b = ? WHERE id = ?`
	require.Equal(t, q, sqliteDialect.rebind(q))
	require.Equal(t, `UPDATE t SET a = $1, b = $2 WHERE id = $3`, postgresDialect.rebind(q))
}

func TestNewByMode(t *testing.T) {
	s, mode, err := New(config.Store{Mode: config.StoreModeMemory, RecentLimit: 5, SavedLimit: 5}, testLogger())
	require.NoError(t, err)
	require.Equal(t, config.StoreModeMemory, mode)
	require.NoError(t, s.Close())

	s, mode, err = New(config.Store{Mode: config.StoreModeSQLite, SQLitePath: ":memory:", RecentLimit: 5, SavedLimit: 5}, testLogger())
	require.NoError(t, err)
	require.Equal(t, config.StoreModeSQLite, mode)
	require.NoError(t, s.Close())

	_, _, err = New(config.Store{Mode: "redis"}, testLogger())
	require.Error(t, err)
}
