package ports

import "errors"

// Standard application-level errors.
// Adapters and the trade service wrap underlying failures with these standard
// errors so the Discord layer can pick a distinct user-facing message per case.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrValidation         = errors.New("invalid trade input")
	ErrNotFound           = errors.New("trade not found or already closed")
	ErrTimeout            = errors.New("operation timed out")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Quote Source Errors
	ErrQuoteUnavailable    = errors.New("could not fetch a price from the exchange")
	ErrExchangeUnsupported = errors.New("exchange is not supported")

	// Render Surface Errors
	ErrRenderFailed = errors.New("failed to create or update the trade message")

	// Database Errors
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
)
