package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed key-value store. It also keeps the rollover
// journal the sync worker drains.
type Store struct {
	db *sql.DB
}

var _ KV = (*Store)(nil)

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetInt(ctx context.Context, key string, def int) (int, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func (s *Store) SetInt(ctx context.Context, key string, value int) error {
	return s.set(ctx, key, strconv.Itoa(value))
}

func (s *Store) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.set(ctx, key, strconv.FormatBool(value))
}

func (s *Store) GetString(ctx context.Context, key string, def string) (string, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return raw, nil
}

func (s *Store) SetString(ctx context.Context, key, value string) error {
	return s.set(ctx, key, value)
}

func (s *Store) GetJSON(ctx context.Context, key string, target any) (bool, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.set(ctx, key, string(data))
}

// PendingRollover is a journaled daily total not yet mirrored to the
// health store.
type PendingRollover struct {
	Day      time.Time
	AmountML int
}

const journalDayFormat = "2006-01-02"

// JournalRollover records an archived day so the worker can retry the
// health sync if the live publish is missed. One row per day; a repeated
// rollover for the same day overwrites the amount.
func (s *Store) JournalRollover(ctx context.Context, day time.Time, amountML int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rollover_journal (day, amount_ml, synced, created_at)
		 VALUES (?, ?, 0, CURRENT_TIMESTAMP)
		 ON CONFLICT(day) DO UPDATE SET amount_ml = excluded.amount_ml, synced = 0`,
		day.Format(journalDayFormat), amountML)
	if err != nil {
		return fmt.Errorf("journal rollover: %w", err)
	}

	slog.InfoContext(ctx, "Rollover journaled",
		"day", day.Format(journalDayFormat),
		"amount_ml", amountML)
	return nil
}

// PendingRollovers returns journaled days that still need a health sync,
// oldest first.
func (s *Store) PendingRollovers(ctx context.Context, limit int) ([]PendingRollover, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, amount_ml FROM rollover_journal
		 WHERE synced = 0 ORDER BY day ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending rollovers: %w", err)
	}
	defer rows.Close()

	var pending []PendingRollover
	for rows.Next() {
		var dayStr string
		var amount int
		if err := rows.Scan(&dayStr, &amount); err != nil {
			return nil, fmt.Errorf("scan rollover: %w", err)
		}
		day, err := time.ParseInLocation(journalDayFormat, dayStr, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse rollover day %q: %w", dayStr, err)
		}
		pending = append(pending, PendingRollover{Day: day, AmountML: amount})
	}
	return pending, rows.Err()
}

// MarkRolloverSynced marks a journaled day as mirrored.
func (s *Store) MarkRolloverSynced(ctx context.Context, day time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE rollover_journal SET synced = 1 WHERE day = ?`,
		day.Format(journalDayFormat))
	if err != nil {
		return fmt.Errorf("mark rollover synced: %w", err)
	}
	return nil
}
