// Package logging provides slog helpers for consistent attribute naming.
//
// Tool handlers, the credential store, and the HTTP servers all log
// through these helpers so log lines stay queryable by the same keys.
// User identifiers are anonymized and tokens masked before logging.
package logging
