package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter         ErrorCode = 100
	ErrCodeInvalidConfiguration     ErrorCode = 101
	ErrCodeInvalidType              ErrorCode = 107
	ErrCodeInvalidPeriod            ErrorCode = 108
	ErrCodeMissingParameter         ErrorCode = 109
	ErrCodeInvalidStdDevMultiplier  ErrorCode = 113
	ErrCodeInvalidInterval          ErrorCode = 120
	ErrCodeInvalidRange             ErrorCode = 121
	ErrCodeInvalidSymbol            ErrorCode = 122
	ErrCodeInvalidIndicatorSettings ErrorCode = 123

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound   ErrorCode = 200
	ErrCodeQueryFailed    ErrorCode = 202
	ErrCodeWatchlistStore ErrorCode = 206

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301

	// Market data errors (700-799)
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeInvalidProvider       ErrorCode = 704
	ErrCodeConfiguration         ErrorCode = 710
	ErrCodeUpstream              ErrorCode = 711
	ErrCodeTransport             ErrorCode = 712
	ErrCodeCacheClosed           ErrorCode = 713
)
