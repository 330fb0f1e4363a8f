// Package logging provides structured logging utilities for the taskbridge application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Consistent attribute naming across the codebase
//   - URL redaction so store credentials never reach log output
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "list_tasks")
//	logger.Info("tool invoked",
//	    logging.Status("success"))
//
// Redact configuration values before logging:
//
//	logger.Info("store configured",
//	    logging.StoreURL(baseURL))
//
// # Output Discipline
//
// The default handler installed by Setup writes to stderr. The stdio transport
// owns stdout for protocol frames, so nothing in this codebase may log there.
package logging
