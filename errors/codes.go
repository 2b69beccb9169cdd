package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors
const (
	// ErrCodeServiceUnavailable indicates the device or service is busy or absent.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Access errors
const (
	// ErrCodeForbidden indicates the caller may not perform the request.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Process execution errors
const (
	// ErrCodeInvalidCommand indicates an empty or malformed command specification.
	ErrCodeInvalidCommand ErrorCode = "INVALID_COMMAND"
	// ErrCodeSpawnFailed indicates the OS could not create the process.
	ErrCodeSpawnFailed ErrorCode = "SPAWN_FAILED"
	// ErrCodePipeFailed indicates the output pipes could not be acquired.
	ErrCodePipeFailed ErrorCode = "PIPE_FAILED"
	// ErrCodeProcessFailed indicates the process ran but reported failure.
	ErrCodeProcessFailed ErrorCode = "PROCESS_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Flashing tools are never retried automatically; a partial write must be
// inspected by the operator first.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
