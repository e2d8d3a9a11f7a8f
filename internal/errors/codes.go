// Package errors provides structured error handling for runcat.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO and decode errors (run files, catalog load)
//   - 3XX: Query errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates run file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryQuery indicates search query errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeMalformedStart = "ERR_202_MALFORMED_START"
	ErrCodeDecode         = "ERR_203_DECODE"
	ErrCodePatternInvalid = "ERR_204_PATTERN_INVALID"

	// Query errors (300-399)
	ErrCodeQueryInvalid = "ERR_301_QUERY_INVALID"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode derives the category from the code's number block.
func categoryFromCode(code string) Category {
	switch {
	case hasBlock(code, '1'):
		return CategoryConfig
	case hasBlock(code, '2'):
		return CategoryIO
	case hasBlock(code, '3'):
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the severity from the code. Load failures abort
// the refresh cycle that raised them but not the catalog itself.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodePatternInvalid:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// hasBlock reports whether the numeric part of an ERR_XXX_* code starts
// with the given digit.
func hasBlock(code string, digit byte) bool {
	const prefix = "ERR_"
	return len(code) > len(prefix) && code[len(prefix)] == digit
}
