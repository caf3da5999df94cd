package batch

import (
	"landscaper/internal/journal"
	"landscaper/internal/montage"
	"landscaper/internal/pairing"
)

// Stats accumulates the outcome of a run.
type Stats struct {
	Directories       int
	Candidates        int
	Compared          int
	ClassifyFailures  int
	Matched           int
	Composed          int
	Existing          int
	DryRun            int
	TransformFailures int
	Conflicts         int
	Deleted           int
	DeleteFailures    int
	Archived          int
	ArchiveFailures   int
}

func (s *Stats) addDecision(d pairing.Decision) {
	s.Compared++
	if d.Reason == pairing.ReasonClassifyFailed {
		s.ClassifyFailures++
	}
	if d.Matched {
		s.Matched++
	}
}

func (s *Stats) addResult(r montage.Result) {
	switch r.Transform {
	case montage.TransformComposed:
		s.Composed++
	case montage.TransformExisting:
		s.Existing++
	case montage.TransformDryRun:
		s.DryRun++
	case montage.TransformFailed:
		s.TransformFailures++
	case montage.TransformConflict:
		s.Conflicts++
	}
	for _, f := range r.Files {
		switch {
		case r.Disposition == montage.DispositionDelete && (f.Action == montage.ActionDeleted || f.Action == montage.ActionAlreadyGone):
			s.Deleted++
		case r.Disposition == montage.DispositionDelete && f.Action == montage.ActionFailed:
			s.DeleteFailures++
		case f.Action == montage.ActionArchived:
			s.Archived++
		case r.Disposition == montage.DispositionArchive && f.Action == montage.ActionFailed:
			s.ArchiveFailures++
		}
	}
}

// Merge adds other into s.
func (s *Stats) Merge(other Stats) {
	s.Directories += other.Directories
	s.Candidates += other.Candidates
	s.Compared += other.Compared
	s.ClassifyFailures += other.ClassifyFailures
	s.Matched += other.Matched
	s.Composed += other.Composed
	s.Existing += other.Existing
	s.DryRun += other.DryRun
	s.TransformFailures += other.TransformFailures
	s.Conflicts += other.Conflicts
	s.Deleted += other.Deleted
	s.DeleteFailures += other.DeleteFailures
	s.Archived += other.Archived
	s.ArchiveFailures += other.ArchiveFailures
}

// Failures counts every per-pair failure.
func (s Stats) Failures() int {
	return s.TransformFailures + s.Conflicts + s.DeleteFailures + s.ArchiveFailures
}

// ExitFailure reports whether the run must end with a non-zero status even
// though it completed. Only delete failures qualify.
func (s Stats) ExitFailure() bool {
	return s.DeleteFailures > 0
}

// Totals condenses s for the journal.
func (s Stats) Totals() journal.Totals {
	return journal.Totals{
		Directories: s.Directories,
		Candidates:  s.Candidates,
		Matched:     s.Matched,
		Composed:    s.Composed,
		Failures:    s.Failures(),
	}
}
