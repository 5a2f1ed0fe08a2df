package storage

import "context"

// Persisted keys. The shapes match what the mobile client stores: scalars
// plus JSON-serialized entry lists, all keyed by string.
const (
	KeyCurrentAmount     = "currentAmount"
	KeyTargetAmount      = "targetAmount"
	KeyLastResetDate     = "lastResetDate"
	KeyDrinkEntries      = "drinkEntries"
	KeyDailyWaterEntries = "dailyWaterEntries"
	KeyNotifications     = "notificationPermissions"
	KeyHealthSyncEnabled = "healthKitSyncEnabled"
)

// KV is the persistence port used by the tracker and the history log.
// Implementations are best-effort stores with no transactions; a missing
// key yields the caller-provided default, never an error.
type KV interface {
	GetInt(ctx context.Context, key string, def int) (int, error)
	SetInt(ctx context.Context, key string, value int) error

	GetBool(ctx context.Context, key string, def bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error

	GetString(ctx context.Context, key string, def string) (string, error)
	SetString(ctx context.Context, key, value string) error

	// GetJSON unmarshals the stored value into target. A missing key leaves
	// target untouched and returns false.
	GetJSON(ctx context.Context, key string, target any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
}
