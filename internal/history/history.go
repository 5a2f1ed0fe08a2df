package history

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"sorso/internal/core"
	"sorso/internal/storage"
)

// Log is the append-only record of completed days. One DailyTotal per
// archived day, persisted in full on every append.
type Log struct {
	store storage.KV
	now   func() time.Time
}

func NewLog(store storage.KV) *Log {
	return &Log{store: store, now: time.Now}
}

// NewLogWithClock is used by tests to pin the current day.
func NewLogWithClock(store storage.KV, now func() time.Time) *Log {
	return &Log{store: store, now: now}
}

// Entries loads the archived days. A missing or unreadable key yields an
// empty list.
func (l *Log) Entries(ctx context.Context) ([]core.DailyTotal, error) {
	var entries []core.DailyTotal
	if _, err := l.store.GetJSON(ctx, storage.KeyDailyWaterEntries, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddEntry archives a completed day. Rollover is detected the morning
// after, so the archived date is yesterday's local midnight relative to
// the moment of the call.
func (l *Log) AddEntry(ctx context.Context, amount int) error {
	entries, err := l.Entries(ctx)
	if err != nil {
		slog.WarnContext(ctx, "History load failed, starting fresh", "error", err)
		entries = nil
	}

	yesterday := core.StartOfDay(l.now()).AddDate(0, 0, -1)
	entries = append(entries, core.DailyTotal{Date: yesterday, Amount: amount})

	if err := l.store.SetJSON(ctx, storage.KeyDailyWaterEntries, entries); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Daily total archived",
		"day", yesterday.Format("2006-01-02"),
		"amount_ml", amount)
	return nil
}

// FullListWithToday returns the archived days plus a synthetic entry for
// today carrying the live running total, sorted descending by date.
func (l *Log) FullListWithToday(ctx context.Context, todayAmount int) ([]core.DailyTotal, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return nil, err
	}

	today := core.StartOfDay(l.now())
	list := append(entries, core.DailyTotal{Date: today, Amount: todayAmount})
	sort.Slice(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})
	return list, nil
}

// Last7Days builds a dense seven-day window ending today, ascending.
// Days without an archived total appear with amount 0 rather than being
// omitted; today reflects the live running total.
func (l *Log) Last7Days(ctx context.Context, todayAmount int) ([]core.DailyTotal, error) {
	full, err := l.FullListWithToday(ctx, todayAmount)
	if err != nil {
		return nil, err
	}

	today := core.StartOfDay(l.now())
	window := make([]core.DailyTotal, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		amount := 0
		for _, e := range full {
			if core.SameDay(e.Date, day) {
				amount = e.Amount
				break
			}
		}
		window = append(window, core.DailyTotal{Date: day, Amount: amount})
	}
	return window, nil
}
