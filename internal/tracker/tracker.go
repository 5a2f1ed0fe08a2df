// Package tracker owns today's running water total: the accumulation
// state machine, the daily rollover, and the reminder recomputation that
// follows every mutation.
package tracker

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sorso/internal/core"
	"sorso/internal/history"
	"sorso/internal/reminder"
	"sorso/internal/storage"
)

// HealthRecorder mirrors an archived day into the health-sync pipeline.
type HealthRecorder interface {
	RecordRollover(ctx context.Context, day time.Time, amountML int) error
}

// Tracker is the single in-process owner of TrackerState. All mutations
// go through it; collaborators hold read snapshots only.
//
// Persistence is best-effort: a failed save is logged and the in-memory
// state stays authoritative for the session.
type Tracker struct {
	mu       sync.Mutex
	store    storage.KV
	history  *history.Log
	notifier *reminder.Notifier
	health   HealthRecorder // may be nil
	clock    Clock

	state core.TrackerState
}

func New(store storage.KV, hist *history.Log, notifier *reminder.Notifier, health HealthRecorder, clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock()
	}
	t := &Tracker{
		store:    store,
		history:  hist,
		notifier: notifier,
		health:   health,
		clock:    clock,
	}
	t.load(context.Background())
	return t
}

// load refreshes in-memory state from the store. Besides startup, it runs
// at the top of every rollover check so entries written out-of-process by
// the quick-add trigger are picked up.
func (t *Tracker) load(ctx context.Context) {
	current, err := t.store.GetInt(ctx, storage.KeyCurrentAmount, 0)
	if err != nil {
		slog.WarnContext(ctx, "Load currentAmount failed", "error", err)
	}

	target, err := t.store.GetInt(ctx, storage.KeyTargetAmount, core.DefaultTargetAmount)
	if err != nil {
		slog.WarnContext(ctx, "Load targetAmount failed", "error", err)
	}
	if target <= 0 {
		target = core.DefaultTargetAmount
	}

	var entries []core.DrinkEntry
	if _, err := t.store.GetJSON(ctx, storage.KeyDrinkEntries, &entries); err != nil {
		slog.WarnContext(ctx, "Load drinkEntries failed", "error", err)
		entries = nil
	}

	var lastReset time.Time
	raw, err := t.store.GetString(ctx, storage.KeyLastResetDate, "")
	if err != nil {
		slog.WarnContext(ctx, "Load lastResetDate failed", "error", err)
	} else if raw != "" {
		if parsed, perr := time.Parse(time.RFC3339, raw); perr == nil {
			lastReset = parsed.In(time.Local)
		} else {
			slog.WarnContext(ctx, "Parse lastResetDate failed", "error", perr, "value", raw)
		}
	}

	t.state = core.TrackerState{
		CurrentAmount: current,
		TargetAmount:  target,
		LastResetDate: lastReset,
		Entries:       entries,
	}
}

func (t *Tracker) persist(ctx context.Context) {
	if err := t.store.SetInt(ctx, storage.KeyCurrentAmount, t.state.CurrentAmount); err != nil {
		slog.WarnContext(ctx, "Save currentAmount failed", "error", err)
	}
	if err := t.store.SetInt(ctx, storage.KeyTargetAmount, t.state.TargetAmount); err != nil {
		slog.WarnContext(ctx, "Save targetAmount failed", "error", err)
	}
	if err := t.store.SetString(ctx, storage.KeyLastResetDate, t.state.LastResetDate.Format(time.RFC3339)); err != nil {
		slog.WarnContext(ctx, "Save lastResetDate failed", "error", err)
	}
	if err := t.store.SetJSON(ctx, storage.KeyDrinkEntries, t.state.Entries); err != nil {
		slog.WarnContext(ctx, "Save drinkEntries failed", "error", err)
	}
}

// ResetIfNeeded performs the daily rollover when lastResetDate has gone
// stale. Idempotent within a day. Called at the top of every mutating
// operation and whenever the app becomes active.
func (t *Tracker) ResetIfNeeded(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeededLocked(ctx)
}

func (t *Tracker) resetIfNeededLocked(ctx context.Context) {
	t.load(ctx)

	now := t.clock.Now()
	if core.SameDay(now, t.state.LastResetDate) {
		return
	}

	if t.state.CurrentAmount > 0 {
		if err := t.history.AddEntry(ctx, t.state.CurrentAmount); err != nil {
			slog.ErrorContext(ctx, "History archive failed", "error", err,
				"amount_ml", t.state.CurrentAmount)
		}

		syncEnabled, err := t.store.GetBool(ctx, storage.KeyHealthSyncEnabled, false)
		if err != nil {
			slog.WarnContext(ctx, "Health sync flag read failed", "error", err)
		}
		if syncEnabled && t.health != nil {
			// The archived day matches the history entry: yesterday's
			// local midnight relative to the rollover moment.
			day := core.StartOfDay(now).AddDate(0, 0, -1)
			if err := t.health.RecordRollover(ctx, day, t.state.CurrentAmount); err != nil {
				slog.ErrorContext(ctx, "Health sync failed", "error", err,
					"day", day.Format("2006-01-02"),
					"amount_ml", t.state.CurrentAmount)
			}
		}
	}

	t.state.CurrentAmount = 0
	t.state.Entries = nil
	t.state.LastResetDate = now
	t.persist(ctx)

	slog.InfoContext(ctx, "Daily total archived and reset",
		"last_reset", now.Format(time.RFC3339))
}

// AddDrink records a drink of amount milliliters at the current instant.
// No upper bound is enforced on a single amount or the daily total.
func (t *Tracker) AddDrink(ctx context.Context, amount int) (core.DrinkEntry, error) {
	if amount <= 0 {
		return core.DrinkEntry{}, core.ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeededLocked(ctx)

	entry := core.NewDrinkEntry(amount, t.clock.Now())
	t.state.Entries = append(t.state.Entries, entry)
	t.state.CurrentAmount += amount
	t.persist(ctx)
	t.refreshRemindersLocked(ctx)

	slog.InfoContext(ctx, "Drink added",
		"entry_id", entry.ID,
		"amount_ml", amount,
		"total_ml", t.state.CurrentAmount)
	return entry, nil
}

// DeleteDrink removes the entry with the given id. Unknown ids are a
// silent no-op.
func (t *Tracker) DeleteDrink(ctx context.Context, id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeededLocked(ctx)

	for i, e := range t.state.Entries {
		if e.ID == id {
			t.state.CurrentAmount -= e.Amount
			t.state.Entries = append(t.state.Entries[:i], t.state.Entries[i+1:]...)
			t.persist(ctx)
			t.refreshRemindersLocked(ctx)

			slog.InfoContext(ctx, "Drink deleted",
				"entry_id", id,
				"amount_ml", e.Amount,
				"total_ml", t.state.CurrentAmount)
			return
		}
	}
}

// UpdateDrinkEntry corrects an entry's timestamp in place; amount and id
// are unchanged and the entry list stays sorted ascending by timestamp.
// Unknown ids are a silent no-op.
func (t *Tracker) UpdateDrinkEntry(ctx context.Context, id uuid.UUID, newTimestamp time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeededLocked(ctx)

	for i := range t.state.Entries {
		if t.state.Entries[i].ID == id {
			t.state.Entries[i].Timestamp = newTimestamp
			sort.Slice(t.state.Entries, func(a, b int) bool {
				return t.state.Entries[a].Timestamp.Before(t.state.Entries[b].Timestamp)
			})
			t.persist(ctx)
			t.refreshRemindersLocked(ctx)

			slog.InfoContext(ctx, "Drink entry timestamp updated",
				"entry_id", id,
				"timestamp", newTimestamp.Format(time.RFC3339))
			return
		}
	}
}

// SetTarget changes the daily goal and recomputes reminders against it.
func (t *Tracker) SetTarget(ctx context.Context, amount int) error {
	if amount <= 0 {
		return core.ErrInvalidTarget
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeededLocked(ctx)

	t.state.TargetAmount = amount
	t.persist(ctx)
	t.refreshRemindersLocked(ctx)
	return nil
}

// SetHealthSyncEnabled toggles mirroring of archived days to the health
// store. Takes effect at the next rollover.
func (t *Tracker) SetHealthSyncEnabled(ctx context.Context, enabled bool) {
	if err := t.store.SetBool(ctx, storage.KeyHealthSyncEnabled, enabled); err != nil {
		slog.WarnContext(ctx, "Save healthKitSyncEnabled failed", "error", err)
	}
}

// SetNotificationsEnabled records the notification permission state and,
// when granted, installs the reminder set immediately.
func (t *Tracker) SetNotificationsEnabled(ctx context.Context, granted bool) {
	if err := t.store.SetBool(ctx, storage.KeyNotifications, granted); err != nil {
		slog.WarnContext(ctx, "Save notificationPermissions failed", "error", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshRemindersLocked(ctx)
}

func (t *Tracker) refreshRemindersLocked(ctx context.Context) {
	if t.notifier == nil {
		return
	}
	t.notifier.Refresh(ctx, t.state.CurrentAmount, t.state.TargetAmount)
}

// Snapshot returns a copy of the current state for read-only consumers.
func (t *Tracker) Snapshot() core.TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.state
	snap.Entries = make([]core.DrinkEntry, len(t.state.Entries))
	copy(snap.Entries, t.state.Entries)
	return snap
}
