package preflight

import (
	"fmt"
	"path/filepath"
	"strings"

	"landscaper/internal/config"
	"landscaper/internal/deps"
	"landscaper/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the preflight checks for processing root (empty root skips
// the directory check) with the given disposition.
func RunAll(cfg *config.Config, root, disposition string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if root != "" {
		results = append(results, CheckDirectoryAccess("Image directory", root))
	}
	if cfg.Journal.Enabled && cfg.Journal.Path != "" {
		// The run continues without history when the journal cannot be opened.
		journal := CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Journal.Path))
		journal.Optional = true
		results = append(results, journal)
	}
	for _, status := range CheckSystemDeps(cfg, disposition) {
		results = append(results, FromStatus(status))
	}
	return results
}

// FromStatus converts a dependency status into a preflight result.
func FromStatus(status deps.Status) Result {
	detail := status.Command
	if status.Detail != "" {
		detail = status.Detail
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   detail,
	}
}

// Err folds failed required results into one precondition error, or nil.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Passed || r.Optional {
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrPrecondition, "preflight", "check", strings.Join(failed, "; "), nil)
}
