package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sorso/internal/health"
)

// Record is one captured SaveWater call.
type Record struct {
	AmountML int
	Day      time.Time
}

// Sink is an in-memory WaterWriter used by tests and creds-less runs.
type Sink struct {
	mu      sync.Mutex
	records []Record

	// FailSaves makes every SaveWater call fail, for exercising the
	// fire-and-forget error paths.
	FailSaves bool
}

var _ health.WaterWriter = (*Sink)(nil)

func New() *Sink {
	return &Sink{}
}

func (s *Sink) SaveWater(_ context.Context, amountML int, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return fmt.Errorf("save water: sink unavailable")
	}
	s.records = append(s.records, Record{AmountML: amountML, Day: day})
	return nil
}

// Records returns a copy of the captured calls.
func (s *Sink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
