package ports

import "context"

// Logger is the structured logging contract used across the bot. Fields are
// free-form key/value maps so adapters can feed any structured backend; the
// context travels along for implementations that extract request metadata.
type Logger interface {
	// Debug logs fine-grained diagnostics (per-trade refreshes, store hits).
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs lifecycle events worth keeping in production output.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs recoverable conditions, such as a skipped refresh.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs a failure together with its underlying error.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
