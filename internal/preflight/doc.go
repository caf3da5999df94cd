// Package preflight provides the precondition checks that run before any image
// is touched.
//
// These checks run in two contexts:
//   - The auto and pair commands call RunAll/CheckImage and abort with a
//     precondition error when any required check fails.
//   - The check command renders every result as a table.
//
// Checks that depend on configuration (7-Zip, the journal directory) are only
// included when the corresponding feature is enabled.
package preflight
