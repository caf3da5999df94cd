package journal

import "time"

// RunStatus is the lifecycle state of a run row.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCanceled  RunStatus = "canceled"
	RunFailed    RunStatus = "failed"
)

// Totals are the headline counters persisted with a finished run.
type Totals struct {
	Directories int
	Candidates  int
	Matched     int
	Composed    int
	Failures    int
}

// Run is one invocation of the auto or pair command.
type Run struct {
	ID         string
	Root       string
	Mode       string
	Options    string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Totals     Totals
}

// Entry records one matched pair and what happened to it.
type Entry struct {
	ID                int64
	RunID             string
	Directory         string
	First             string
	Second            string
	Output            string
	Transform         string
	Disposition       string
	DispositionStatus string
	Error             string
	CreatedAt         time.Time
}
