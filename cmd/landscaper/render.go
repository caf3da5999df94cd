package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"landscaper/internal/batch"
	"landscaper/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderHeader(title string) string {
	return fmt.Sprintf("== %s ==", strings.TrimSpace(title))
}

func paint(value, color string, colorize bool) string {
	if !colorize || color == "" {
		return value
	}
	return color + value + ansiReset
}

// titleize turns snake_case identifiers such as "dry_run" into "Dry Run".
func titleize(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "_", " "))
	if value == "" {
		return "-"
	}
	return cases.Title(language.English).String(value)
}

func renderSummary(stats batch.Stats, dryRun, colorize bool) string {
	rows := [][]string{
		{"directories", strconv.Itoa(stats.Directories)},
		{"candidates", strconv.Itoa(stats.Candidates)},
		{"pairs compared", strconv.Itoa(stats.Compared)},
		{"classify failures", strconv.Itoa(stats.ClassifyFailures)},
		{"pairs matched", strconv.Itoa(stats.Matched)},
		{"montages composed", strconv.Itoa(stats.Composed)},
		{"montages existing", strconv.Itoa(stats.Existing)},
		{"transform failures", strconv.Itoa(stats.TransformFailures)},
		{"output conflicts", strconv.Itoa(stats.Conflicts)},
		{"originals deleted", strconv.Itoa(stats.Deleted)},
		{"delete failures", strconv.Itoa(stats.DeleteFailures)},
		{"originals archived", strconv.Itoa(stats.Archived)},
		{"archive failures", strconv.Itoa(stats.ArchiveFailures)},
	}
	if dryRun {
		rows = append(rows, []string{"dry run pairs", strconv.Itoa(stats.DryRun)})
	}
	for i := range rows {
		rows[i][0] = titleize(rows[i][0])
	}

	color := ansiBlue
	switch {
	case stats.ExitFailure():
		color = ansiRed
	case stats.Failures() > 0:
		color = ansiYellow
	}
	title := paint(renderHeader("Run summary"), color, colorize)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(renderTable([]string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")
	return b.String()
}

func renderPreflight(results []preflight.Result, colorize bool) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := paint("OK", ansiGreen, colorize)
		switch {
		case r.Passed:
		case r.Optional:
			status = paint("OPTIONAL", ansiYellow, colorize)
		default:
			status = paint("MISSING", ansiRed, colorize)
		}
		detail := strings.TrimSpace(r.Detail)
		if detail == "" {
			detail = "-"
		}
		rows = append(rows, []string{r.Name, status, detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, nil)
}
