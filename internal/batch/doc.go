// Package batch walks a directory tree and pairs images directory by
// directory.
//
// Each directory is an independent batch: its candidates are listed once,
// every unordered pair is offered to the matcher in sorted order, and the
// first match for an image hands the pair to the montage orchestrator. Both
// images then leave candidacy for the rest of the pass. Images are never
// paired across directories.
package batch
