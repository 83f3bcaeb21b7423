package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidMode     ErrorCode = "invalid_mode"
	ErrInvalidTimezone ErrorCode = "invalid_timezone"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Cycle errors
	ErrInitDevice ErrorCode = "init_device_failed"
	ErrLink       ErrorCode = "link_unavailable"
	ErrTimeSync   ErrorCode = "clock_sync_failed"
	ErrFetch      ErrorCode = "telemetry_fetch_failed"
	ErrData       ErrorCode = "telemetry_invalid_data"
	ErrRender     ErrorCode = "render_failed"
	ErrArmAlarm   ErrorCode = "alarm_arm_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrUnavailable:     "Service unavailable",
	ErrAlreadyRunning:  "Another cycle is already running",
	ErrInvalidConfig:   "Invalid configuration",
	ErrMissingConfig:   "Missing configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read config file",
	ErrInvalidMode:     "Invalid run mode",
	ErrInvalidTimezone: "Invalid timezone",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrInitDevice:      "Failed to initialize device context",
	ErrLink:            "Network link unavailable",
	ErrTimeSync:        "Failed to synchronize local time",
	ErrFetch:           "Failed to fetch telemetry",
	ErrData:            "Malformed telemetry document",
	ErrRender:          "Failed to render frame",
	ErrArmAlarm:        "Failed to arm wake alarm",
	ErrOperationFailed: "Operation failed",
	ErrTimeout:         "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
