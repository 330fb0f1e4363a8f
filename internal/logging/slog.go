package logging

import (
	"log/slog"
	"net/url"
	"os"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyTool      = "tool"
	KeyTransport = "transport"
	KeyStoreURL  = "store_url"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Setup installs the process-wide default logger: a text handler writing to
// stderr. Stdout is reserved for the stdio transport, so logs must never go
// there.
func Setup(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithTransport returns a logger with the transport attribute set.
func WithTransport(logger *slog.Logger, transport string) *slog.Logger {
	return logger.With(slog.String(KeyTransport, transport))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Transport returns a slog attribute for the transport name.
func Transport(transport string) slog.Attr {
	return slog.String(KeyTransport, transport)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Duration returns a slog attribute for an elapsed duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// RedactURL returns a representation of a URL safe for logging: any password
// embedded in the userinfo section is masked. Strings that do not parse as a
// URL are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// StoreURL returns a slog attribute with the redacted task store base URL.
// This is a convenience function to reduce repetition in logging calls and
// ensure credentials never leak into log output.
//
// Usage:
//
//	logger.Info("store configured", logging.StoreURL(baseURL))
func StoreURL(raw string) slog.Attr {
	return slog.String(KeyStoreURL, RedactURL(raw))
}
