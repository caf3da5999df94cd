// Package journal keeps a SQLite ledger of montage runs and the pairs each run
// produced.
//
// The database lives outside the processed tree (under the state directory by
// default) so it is never mistaken for an image. Each automatic or manual run
// opens a row in runs; every matched pair appends a row to entries with the
// transform and disposition outcome. The history command reads it back.
//
// Journal writes are best effort from the caller's point of view: the batch
// walker logs failures and keeps going.
package journal
