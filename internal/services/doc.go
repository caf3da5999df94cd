// Package services defines shared utilities consumed by the montage pipeline
// and the external tool clients beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and the current batch
//     directory for logging and the journal.
//   - Structured error markers plus the Wrap helper that separate fatal
//     precondition failures from pair-scoped tool failures.
//
// Tool clients live in subpackages (magick, sevenzip) and share the same
// Executor shape so tests can substitute fakes.
package services
