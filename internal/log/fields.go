package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldEntryID    = "entry_id"
	FieldAmountML   = "amount_ml"
	FieldTargetML   = "target_ml"
	FieldDay        = "day"
	FieldReminderID = "reminder_id"
	FieldKey        = "key"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentTracker  = "tracker"
	ComponentHistory  = "history"
	ComponentReminder = "reminder"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentHealth   = "health"
)

// Operations defines standard operation names
const (
	OpAdd      = "add"
	OpDelete   = "delete"
	OpUpdate   = "update"
	OpReset    = "reset"
	OpArchive  = "archive"
	OpSync     = "sync"
	OpSchedule = "schedule"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
