// Package logging provides the structured logging facade used across coa.
//
// It is a thin layer over Go's standard slog package that tags every entry
// with a subsystem and applies level filtering at the handler.
//
// # Log Levels
//   - **Debug**: request and flow tracing
//   - **Info**: normal lifecycle events (token saved, flow completed)
//   - **Warn**: recoverable problems (browser could not be opened)
//   - **Error**: failures
//
// # Usage
//
//	logging.InitForCLI(logging.LevelWarn, os.Stderr)
//
//	logging.Info("Registry", "Added client %s", name)
//	logging.Error("Refresher", err, "Refresh failed for %s", name)
//
// Before InitForCLI is called only Error entries are written (to stderr).
//
// # Subsystems
//
//   - **Config**: configuration loading and validation
//   - **Storage**: record backends
//   - **Registry**: client registrations
//   - **Tokens**: token persistence and refresh
//   - **OAuth**: token endpoint requests
//   - **AuthFlow**: authorization flows and the callback listener
//
// # Security Audit Events
//
// Writes and deletions of token records are logged directly through slog
// with a "SECURITY_AUDIT:" message prefix and an "event" attribute. They
// never contain token values.
package logging
