package reminder

import (
	"context"
	"log/slog"
	"sync"

	"sorso/internal/storage"
)

// Scheduler installs reminder requests. Replace clears the previously
// installed set and installs the given one; installing a request whose
// identifier is already pending overwrites it.
type Scheduler interface {
	Replace(ctx context.Context, requests []Request) error
	Pending(ctx context.Context) ([]Request, error)
}

// Notifier recomputes and reinstalls the reminder set after every tracker
// mutation. When notification permission has not been granted it skips
// scheduling entirely; the user re-enables via settings.
type Notifier struct {
	store storage.KV
	sched Scheduler
}

func NewNotifier(store storage.KV, sched Scheduler) *Notifier {
	return &Notifier{store: store, sched: sched}
}

// Refresh replaces the installed reminders based on current progress.
// Failures are logged, never propagated: reminder scheduling is a side
// effect of tracking, not part of its contract.
func (n *Notifier) Refresh(ctx context.Context, currentAmount, targetAmount int) {
	granted, err := n.store.GetBool(ctx, storage.KeyNotifications, false)
	if err != nil {
		slog.WarnContext(ctx, "Notification permission read failed", "error", err)
		return
	}
	if !granted {
		return
	}

	requests := Plan(currentAmount, targetAmount)
	if err := n.sched.Replace(ctx, requests); err != nil {
		slog.ErrorContext(ctx, "Reminder scheduling failed",
			"error", err,
			"requests", len(requests))
		return
	}

	slog.DebugContext(ctx, "Reminders scheduled",
		"requests", len(requests),
		"amount_ml", currentAmount,
		"target_ml", targetAmount)
}

// MemoryScheduler keeps the pending reminder set in process. It is the
// device-facing stand-in: the UI layer reads Pending to mirror requests
// into the platform notification center.
type MemoryScheduler struct {
	mu      sync.Mutex
	pending map[string]Request
	order   []string
}

var _ Scheduler = (*MemoryScheduler)(nil)

func NewMemoryScheduler() *MemoryScheduler {
	return &MemoryScheduler{pending: make(map[string]Request)}
}

func (s *MemoryScheduler) Replace(_ context.Context, requests []Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = make(map[string]Request, len(requests))
	s.order = s.order[:0]
	for _, r := range requests {
		if _, exists := s.pending[r.Identifier]; !exists {
			s.order = append(s.order, r.Identifier)
		}
		s.pending[r.Identifier] = r
	}
	return nil
}

func (s *MemoryScheduler) Pending(_ context.Context) ([]Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pending[id])
	}
	return out, nil
}
