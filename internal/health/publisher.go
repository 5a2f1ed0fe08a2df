package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type (
	// Journal records archived days locally so missed publishes can be
	// retried by the worker's catch-up pass.
	Journal interface {
		JournalRollover(ctx context.Context, day time.Time, amountML int) error
	}

	// Queue hands an archived day to the sync pipeline.
	Queue interface {
		PublishRollover(ctx context.Context, day time.Time, amountML int) error
	}
)

// Publisher is the tracker-facing end of health sync: journal first, then
// publish. Either collaborator may be nil; a nil queue leaves the day in
// the journal for the worker's catch-up pass.
type Publisher struct {
	journal Journal
	queue   Queue
}

func NewPublisher(journal Journal, queue Queue) *Publisher {
	return &Publisher{journal: journal, queue: queue}
}

// RecordRollover forwards one archived day. The journal write happens
// before the publish so a queue outage never loses the day.
func (p *Publisher) RecordRollover(ctx context.Context, day time.Time, amountML int) error {
	if p.journal != nil {
		if err := p.journal.JournalRollover(ctx, day, amountML); err != nil {
			slog.ErrorContext(ctx, "Rollover journal write failed",
				"error", err,
				"day", day.Format("2006-01-02"))
			// Keep going: the live publish can still succeed.
		}
	}

	if p.queue == nil {
		slog.WarnContext(ctx, "AMQP client not available, rollover left in journal",
			"day", day.Format("2006-01-02"))
		return nil
	}

	if err := p.queue.PublishRollover(ctx, day, amountML); err != nil {
		return fmt.Errorf("publish rollover: %w", err)
	}
	return nil
}
