package health

import (
	"context"
	"time"
)

// WaterWriter mirrors a daily water total into an external health record
// store. Calls are fire-and-forget from the tracker's perspective:
// failures are logged by callers and never block or roll back local state.
type WaterWriter interface {
	// SaveWater records amountML of water for the given day. Day is the
	// archived day's local midnight, which is also used as the event
	// timestamp of the record.
	SaveWater(ctx context.Context, amountML int, day time.Time) error
}
