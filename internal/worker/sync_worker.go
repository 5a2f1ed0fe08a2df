package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sorso/internal/amqp"
	"sorso/internal/health"
	"sorso/internal/storage"
)

// Journal is the worker-side view of the rollover journal.
type Journal interface {
	PendingRollovers(ctx context.Context, limit int) ([]storage.PendingRollover, error)
	MarkRolloverSynced(ctx context.Context, day time.Time) error
}

// SyncWorker mirrors archived daily totals into the health store. It
// drains the AMQP queue and, as a safety net, periodically sweeps the
// local journal for days whose publish was missed.
type SyncWorker struct {
	journal   Journal
	sink      health.WaterWriter
	batchSize int
}

func NewSyncWorker(journal Journal, sink health.WaterWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		journal:   journal,
		sink:      sink,
		batchSize: batchSize,
	}
}

// HandleRollover processes a single rollover message. A sink failure is
// returned so the delivery is requeued.
func (w *SyncWorker) HandleRollover(ctx context.Context, msg *amqp.RolloverMessage) error {
	slog.InfoContext(ctx, "Processing rollover message",
		"day", msg.Day.Format("2006-01-02"),
		"amount_ml", msg.AmountML)

	if err := w.sink.SaveWater(ctx, msg.AmountML, msg.Day); err != nil {
		return fmt.Errorf("save water: %w", err)
	}

	if w.journal != nil {
		if err := w.journal.MarkRolloverSynced(ctx, msg.Day); err != nil {
			slog.WarnContext(ctx, "Mark rollover synced failed",
				"error", err,
				"day", msg.Day.Format("2006-01-02"))
		}
	}
	return nil
}

// ProcessPending sweeps the journal for unsynced days, oldest first. Used
// at startup and on a periodic tick to catch rollovers whose live publish
// never arrived.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	if w.journal == nil {
		return nil
	}

	pending, err := w.journal.PendingRollovers(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("pending rollovers: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending rollovers", "count", len(pending))

	for _, p := range pending {
		if err := w.sink.SaveWater(ctx, p.AmountML, p.Day); err != nil {
			slog.ErrorContext(ctx, "Pending rollover sync failed",
				"error", err,
				"day", p.Day.Format("2006-01-02"))
			continue // retried on the next sweep
		}
		if err := w.journal.MarkRolloverSynced(ctx, p.Day); err != nil {
			slog.WarnContext(ctx, "Mark rollover synced failed",
				"error", err,
				"day", p.Day.Format("2006-01-02"))
		}
	}
	return nil
}
