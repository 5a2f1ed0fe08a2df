package history

import (
	"context"
	"testing"
	"time"

	"sorso/internal/core"
	"sorso/internal/storage"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 18, 9, 30, 0, 0, time.Local)
}

func TestAddEntryArchivesYesterday(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	l := NewLogWithClock(store, fixedNow)

	if err := l.AddEntry(ctx, 1500); err != nil {
		t.Fatalf("add entry: %v", err)
	}

	entries, err := l.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	wantDate := time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local)
	if !entries[0].Date.Equal(wantDate) {
		t.Fatalf("archived date = %v, want %v", entries[0].Date, wantDate)
	}
	if entries[0].Amount != 1500 {
		t.Fatalf("archived amount = %d, want 1500", entries[0].Amount)
	}
}

func TestFullListWithToday(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	l := NewLogWithClock(store, fixedNow)

	seed := []core.DailyTotal{
		{Date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local), Amount: 1800},
		{Date: time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local), Amount: 2100},
	}
	if err := store.SetJSON(ctx, storage.KeyDailyWaterEntries, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	list, err := l.FullListWithToday(ctx, 650)
	if err != nil {
		t.Fatalf("full list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list = %d entries, want 3", len(list))
	}

	// Descending by date, today first with the live total.
	today := time.Date(2025, 6, 18, 0, 0, 0, 0, time.Local)
	if !list[0].Date.Equal(today) || list[0].Amount != 650 {
		t.Fatalf("head = %+v, want today with 650", list[0])
	}
	for i := 1; i < len(list); i++ {
		if list[i].Date.After(list[i-1].Date) {
			t.Fatalf("list not descending at %d: %v after %v", i, list[i].Date, list[i-1].Date)
		}
	}
}

func TestLast7DaysFillsGapsWithZero(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	l := NewLogWithClock(store, fixedNow)

	// Archived days -1 and -3; day -2 and everything older missing.
	seed := []core.DailyTotal{
		{Date: time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local), Amount: 2100},
		{Date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local), Amount: 1800},
	}
	if err := store.SetJSON(ctx, storage.KeyDailyWaterEntries, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	window, err := l.Last7Days(ctx, 650)
	if err != nil {
		t.Fatalf("last 7 days: %v", err)
	}
	if len(window) != 7 {
		t.Fatalf("window = %d entries, want 7", len(window))
	}

	wantAmounts := []int{0, 0, 0, 1800, 0, 2100, 650}
	for i, want := range wantAmounts {
		if window[i].Amount != want {
			t.Fatalf("day %d amount = %d, want %d (window %+v)", i, window[i].Amount, want, window)
		}
	}

	// Ascending, ending today.
	for i := 1; i < len(window); i++ {
		if !window[i].Date.After(window[i-1].Date) {
			t.Fatalf("window not ascending at %d", i)
		}
	}
	today := time.Date(2025, 6, 18, 0, 0, 0, 0, time.Local)
	if !window[6].Date.Equal(today) {
		t.Fatalf("window ends at %v, want %v", window[6].Date, today)
	}
}

func TestEntriesMissingKey(t *testing.T) {
	ctx := context.Background()
	l := NewLog(storage.NewMemory())

	entries, err := l.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d, want 0 for empty store", len(entries))
	}
}
