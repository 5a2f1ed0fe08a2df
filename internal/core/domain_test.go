package core

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	loc := time.Local
	in := time.Date(2025, 3, 14, 15, 9, 26, 535, loc)
	got := StartOfDay(in)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("StartOfDay = %v, want %v", got, want)
	}
}

func TestSameDay(t *testing.T) {
	loc := time.Local
	cases := []struct {
		a, b time.Time
		want bool
	}{
		{time.Date(2025, 3, 14, 0, 0, 0, 0, loc), time.Date(2025, 3, 14, 23, 59, 59, 0, loc), true},
		{time.Date(2025, 3, 14, 23, 59, 59, 0, loc), time.Date(2025, 3, 15, 0, 0, 0, 0, loc), false},
		{time.Date(2025, 3, 14, 12, 0, 0, 0, loc), time.Time{}, false},
	}
	for i, tc := range cases {
		if got := SameDay(tc.a, tc.b); got != tc.want {
			t.Fatalf("case %d: SameDay(%v, %v) = %v, want %v", i, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNewDrinkEntry(t *testing.T) {
	ts := time.Now()
	a := NewDrinkEntry(200, ts)
	b := NewDrinkEntry(200, ts)

	if a.ID == b.ID {
		t.Fatalf("expected distinct identifiers, both %v", a.ID)
	}
	if a.Amount != 200 || !a.Timestamp.Equal(ts) {
		t.Fatalf("unexpected entry: %+v", a)
	}
}

func TestDrinkEntryValidate(t *testing.T) {
	if err := NewDrinkEntry(250, time.Now()).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := DrinkEntry{Amount: 0, Timestamp: time.Now()}
	if err := bad.Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestEntriesTotal(t *testing.T) {
	ts := time.Now()
	entries := []DrinkEntry{
		NewDrinkEntry(200, ts),
		NewDrinkEntry(330, ts),
		NewDrinkEntry(500, ts),
	}
	if got := EntriesTotal(entries); got != 1030 {
		t.Fatalf("EntriesTotal = %d, want 1030", got)
	}
	if got := EntriesTotal(nil); got != 0 {
		t.Fatalf("EntriesTotal(nil) = %d, want 0", got)
	}
}
