package montage

import (
	"context"
	"errors"
)

// Disposition names what happens to the source images after a montage.
type Disposition string

const (
	DispositionNone    Disposition = "none"
	DispositionDelete  Disposition = "delete"
	DispositionArchive Disposition = "archive"
)

// TransformStatus records how the montage output came to exist (or not).
type TransformStatus string

const (
	TransformComposed TransformStatus = "composed"
	TransformExisting TransformStatus = "existing"
	TransformDryRun   TransformStatus = "dry_run"
	TransformFailed   TransformStatus = "failed"
	// TransformConflict means another pair in the same run already claimed
	// the output path; the pair is left untouched.
	TransformConflict TransformStatus = "conflict"
)

// File actions reported in FileOutcome.
const (
	ActionDeleted     = "deleted"
	ActionAlreadyGone = "already_gone"
	ActionArchived    = "archived"
	ActionSkipped     = "skipped"
	ActionFailed      = "failed"
)

// Options controls a single Compose call.
type Options struct {
	Resize           bool
	OutputFormat     string
	DryRun           bool
	Disposition      Disposition
	ArchivePassword  string
	UsePassword      bool
	ArchiveExtension string
	ArchiveDirName   string
	Suffix           string
}

// FileOutcome is the disposition result for one source image.
type FileOutcome struct {
	Path   string
	Action string
	Err    error
}

// Result summarizes one Compose call.
type Result struct {
	Output       string
	Transform    TransformStatus
	TransformErr error
	Disposition  Disposition
	Files        []FileOutcome
}

// DeleteFailed reports whether a delete disposition stopped on an error.
func (r Result) DeleteFailed() bool {
	if r.Disposition != DispositionDelete {
		return false
	}
	for _, f := range r.Files {
		if f.Action == ActionFailed {
			return true
		}
	}
	return false
}

// DispositionErr joins every per-file disposition error.
func (r Result) DispositionErr() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// DispositionStatus condenses Files into ok, partial, failed or skipped.
func (r Result) DispositionStatus() string {
	if r.Disposition == "" || r.Disposition == DispositionNone {
		return "none"
	}
	if len(r.Files) == 0 {
		return ActionSkipped
	}
	failed := 0
	for _, f := range r.Files {
		if f.Action == ActionFailed {
			failed++
		}
	}
	switch {
	case failed == 0:
		return "ok"
	case failed == len(r.Files):
		return ActionFailed
	default:
		return "partial"
	}
}

// Composer performs the pixel work.
type Composer interface {
	Append(ctx context.Context, inputs []string, output, format string) error
	Rescale(ctx context.Context, path string, percent float64, format string) error
}

// Archiver moves a file into an archive.
type Archiver interface {
	Archive(ctx context.Context, src, archivePath, password string) error
}
