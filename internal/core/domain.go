package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultTargetAmount is the daily goal used until the user sets one, in milliliters.
const DefaultTargetAmount = 2000

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidTarget = errors.New("target must be positive")
)

type (
	// DrinkEntry is a single recorded drink. Amount is in milliliters.
	// Entries live for one day only; rollover discards them after archiving
	// the daily total.
	DrinkEntry struct {
		ID        uuid.UUID `json:"id"`
		Amount    int       `json:"amount"`
		Timestamp time.Time `json:"timestamp"`
	}

	// DailyTotal is one archived day. Date is normalized to local midnight.
	DailyTotal struct {
		Date   time.Time `json:"date"`
		Amount int       `json:"amount"`
	}

	// TrackerState is a read-only snapshot of today's accumulation.
	TrackerState struct {
		CurrentAmount int          `json:"currentAmount"`
		TargetAmount  int          `json:"targetAmount"`
		LastResetDate time.Time    `json:"lastResetDate"`
		Entries       []DrinkEntry `json:"entries"`
	}
)

// NewDrinkEntry creates an entry with a fresh identifier.
func NewDrinkEntry(amount int, timestamp time.Time) DrinkEntry {
	return DrinkEntry{
		ID:        uuid.New(),
		Amount:    amount,
		Timestamp: timestamp,
	}
}

func (e DrinkEntry) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// StartOfDay returns local midnight for the given instant.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day
// in a's location.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b.In(a.Location())))
}

// EntriesTotal sums the amounts of the given entries.
func EntriesTotal(entries []DrinkEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Amount
	}
	return total
}
