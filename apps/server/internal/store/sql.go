package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"holdem-recorder/homegame"
)

// dialect covers the few places SQLite and Postgres disagree.
type dialect struct {
	name string
	// numbered placeholders ($1, $2) instead of ?
	numbered bool
	// noLimit is the LIMIT clause that allows OFFSET without a row cap.
	noLimit string
}

var (
	sqliteDialect   = dialect{name: "sqlite", noLimit: "LIMIT -1"}
	postgresDialect = dialect{name: "postgres", numbered: true, noLimit: "LIMIT ALL"}
)

func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS recorded_hands (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    spec_json TEXT NOT NULL,
    share_code TEXT NOT NULL,
    summary_json TEXT NOT NULL,
    is_saved BOOLEAN NOT NULL DEFAULT FALSE,
    saved_at_ms BIGINT,
    recorded_at_ms BIGINT NOT NULL,
    updated_at_ms BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_recorded_hands_recent
    ON recorded_hands (is_saved, recorded_at_ms DESC)`,
	`CREATE TABLE IF NOT EXISTS home_games (
    code TEXT PRIMARY KEY,
    game_json TEXT NOT NULL,
    created_at_ms BIGINT NOT NULL,
    updated_at_ms BIGINT NOT NULL
)`,
}

// sqlStore is the database/sql implementation shared by SQLite and Postgres.
type sqlStore struct {
	db          *sql.DB
	d           dialect
	recentLimit int
	savedLimit  int
	log         *logrus.Entry
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) exec(ctx context.Context, q interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.d.rebind(query), args...)
}

func (s *sqlStore) PutHand(ctx context.Context, rec HandRecord) error {
	specRaw, err := json.Marshal(rec.Spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}
	summaryRaw, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.exec(ctx, tx, `
INSERT INTO recorded_hands (
    id, title, spec_json, share_code, summary_json, recorded_at_ms, updated_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE
SET
    title = excluded.title,
    spec_json = excluded.spec_json,
    share_code = excluded.share_code,
    summary_json = excluded.summary_json,
    updated_at_ms = excluded.updated_at_ms
`, rec.ID, rec.Title, string(specRaw), rec.ShareCode, string(summaryRaw),
		rec.RecordedAt.UnixMilli(), rec.UpdatedAt.UnixMilli()); err != nil {
		return err
	}
	if err := s.trim(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) trim(ctx context.Context, tx *sql.Tx) error {
	if s.recentLimit <= 0 {
		return nil
	}
	res, err := s.exec(ctx, tx, fmt.Sprintf(`
DELETE FROM recorded_hands
WHERE is_saved = FALSE
  AND id IN (
      SELECT id
      FROM recorded_hands
      WHERE is_saved = FALSE
      ORDER BY recorded_at_ms DESC, id DESC
      %s OFFSET ?
  )
`, s.d.noLimit), s.recentLimit)
	if err != nil {
		return fmt.Errorf("trim recent hands: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.WithField("trimmed", n).Debug("trimmed unsaved hands")
	}
	return nil
}

const handColumns = `id, title, share_code, summary_json, is_saved, saved_at_ms, recorded_at_ms, updated_at_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHand(row rowScanner, extra ...any) (HandRecord, error) {
	var rec HandRecord
	var summaryRaw string
	var savedAt sql.NullInt64
	var recordedAt, updatedAt int64
	dest := append([]any{&rec.ID, &rec.Title, &rec.ShareCode, &summaryRaw, &rec.IsSaved, &savedAt, &recordedAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return HandRecord{}, err
	}
	if err := json.Unmarshal([]byte(summaryRaw), &rec.Summary); err != nil {
		return HandRecord{}, fmt.Errorf("hand %s summary: %w", rec.ID, err)
	}
	if savedAt.Valid {
		t := time.UnixMilli(savedAt.Int64).UTC()
		rec.SavedAt = &t
	}
	rec.RecordedAt = time.UnixMilli(recordedAt).UTC()
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return rec, nil
}

func (s *sqlStore) GetHand(ctx context.Context, id string) (HandRecord, error) {
	var specRaw string
	row := s.db.QueryRowContext(ctx, s.d.rebind(`
SELECT `+handColumns+`, spec_json
FROM recorded_hands
WHERE id = ?
`), id)
	rec, err := scanHand(row, &specRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return HandRecord{}, ErrNotFound
		}
		return HandRecord{}, err
	}
	if err := json.Unmarshal([]byte(specRaw), &rec.Spec); err != nil {
		return HandRecord{}, fmt.Errorf("hand %s spec: %w", id, err)
	}
	return rec, nil
}

func (s *sqlStore) ListRecent(ctx context.Context, limit int) ([]HandRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.d.rebind(`
SELECT `+handColumns+`
FROM recorded_hands
ORDER BY recorded_at_ms DESC, id DESC
LIMIT ?
`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HandRecord, 0, limit)
	for rows.Next() {
		rec, err := scanHand(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *sqlStore) SetSaved(ctx context.Context, id string, saved bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current bool
	if err := tx.QueryRowContext(ctx, s.d.rebind(`
SELECT is_saved FROM recorded_hands WHERE id = ?
`), id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if current == saved {
		return tx.Commit()
	}

	nowMs := time.Now().UTC().UnixMilli()
	if saved {
		var savedCount int
		if err := tx.QueryRowContext(ctx, `
SELECT COUNT(1) FROM recorded_hands WHERE is_saved = TRUE
`).Scan(&savedCount); err != nil {
			return err
		}
		if savedCount >= s.savedLimit {
			return ErrSavedLimitReach
		}
		if _, err := s.exec(ctx, tx, `
UPDATE recorded_hands
SET is_saved = TRUE,
    saved_at_ms = ?,
    updated_at_ms = ?
WHERE id = ?
`, nowMs, nowMs, id); err != nil {
			return err
		}
		return tx.Commit()
	}

	if _, err := s.exec(ctx, tx, `
UPDATE recorded_hands
SET is_saved = FALSE,
    saved_at_ms = NULL,
    updated_at_ms = ?
WHERE id = ?
`, nowMs, id); err != nil {
		return err
	}
	if err := s.trim(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) DeleteHand(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM recorded_hands WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlStore) PutGame(ctx context.Context, g *homegame.Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", g.Code, err)
	}
	nowMs := time.Now().UTC().UnixMilli()
	_, err = s.exec(ctx, s.db, `
INSERT INTO home_games (code, game_json, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT (code) DO UPDATE
SET
    game_json = excluded.game_json,
    updated_at_ms = excluded.updated_at_ms
`, g.Code, string(raw), g.CreatedAt.UnixMilli(), nowMs)
	return err
}

func (s *sqlStore) GetGame(ctx context.Context, code string) (*homegame.Game, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.d.rebind(`SELECT game_json FROM home_games WHERE code = ?`), code).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var g homegame.Game
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("game %s: %w", code, err)
	}
	return &g, nil
}
