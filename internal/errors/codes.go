// Package errors provides structured error handling for the lnx reader core.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Query/input errors
//   - 3XX: Data integrity errors
//   - 4XX: Resource errors (pools, shutdown)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryInput indicates rejected-request errors (bad queries, bad payloads).
	CategoryInput Category = "INPUT"
	// CategoryIntegrity indicates invalid-dataset errors.
	CategoryIntegrity Category = "INTEGRITY"
	// CategoryResource indicates pool and shutdown errors.
	CategoryResource Category = "RESOURCE"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the process can continue.
	SeverityError Severity = "ERROR"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid       = "ERR_101_CONFIG_INVALID"
	ErrCodeMissingPrivateField = "ERR_102_MISSING_PRIVATE_FIELD"
	ErrCodeUnknownSearchField  = "ERR_103_UNKNOWN_SEARCH_FIELD"

	// Query/input errors (200-299)
	ErrCodeBadQuery        = "ERR_201_BAD_QUERY"
	ErrCodeModeMismatch    = "ERR_202_MODE_MISMATCH"
	ErrCodeUnknownDocument = "ERR_203_UNKNOWN_DOCUMENT"
	ErrCodeNotFastField    = "ERR_204_NOT_FAST_FIELD"

	// Data integrity errors (300-399)
	ErrCodeCorruptDataset = "ERR_301_CORRUPT_DATASET"

	// Resource errors (400-499)
	ErrCodeGateClosed      = "ERR_401_GATE_CLOSED"
	ErrCodeChannelClosed   = "ERR_402_CHANNEL_CLOSED"
	ErrCodePoolExhausted   = "ERR_403_POOL_EXHAUSTED"
	ErrCodeDispatchStopped = "ERR_404_DISPATCH_STOPPED"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeSearchFailed = "ERR_502_SEARCH_FAILED"
	ErrCodeStopWords    = "ERR_503_STOP_WORDS"
)

// categoryFromCode extracts the category from an error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryInput
	case '3':
		return CategoryIntegrity
	case '4':
		return CategoryResource
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the severity from an error code.
// Config and integrity failures poison the whole index or dataset;
// everything else fails a single request.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryConfig, CategoryIntegrity:
		return SeverityFatal
	default:
		return SeverityError
	}
}
