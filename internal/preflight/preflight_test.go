package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"landscaper/internal/config"
	"landscaper/internal/services"
	"landscaper/internal/testsupport"
)

func testConfig(t *testing.T, binaries ...string) *config.Config {
	t.Helper()
	opts := []testsupport.ConfigOption{}
	if len(binaries) > 0 {
		opts = append(opts, testsupport.WithStubbedBinaries(binaries...))
	}
	cfg := testsupport.NewConfig(t, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return cfg
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail for missing dir, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckImage(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	paths := testsupport.WriteImages(t, dir, "a.JPG", "notes.txt")
	jpg, txt := paths[0], paths[1]

	if r := CheckImage(cfg, "First image", jpg); !r.Passed {
		t.Fatalf("expected jpg to pass, got %s", r.Detail)
	}
	if r := CheckImage(cfg, "Second image", txt); r.Passed || !strings.Contains(r.Detail, "extension") {
		t.Fatalf("expected extension failure, got %+v", r)
	}
	if r := CheckImage(cfg, "Second image", filepath.Join(dir, "gone.jpg")); r.Passed {
		t.Fatal("expected failure for missing file")
	}
	if r := CheckImage(cfg, "Second image", dir); r.Passed {
		t.Fatal("expected failure for a directory")
	}
}

func TestCheckSystemDepsArchiveNeeds7z(t *testing.T) {
	cfg := testConfig(t, "magick")

	statuses := CheckSystemDeps(cfg, config.DispositionArchive)
	if len(statuses) != 2 {
		t.Fatalf("expected two statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("magick stub should be found: %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Optional {
		t.Fatalf("7z should be missing and required: %+v", statuses[1])
	}

	statuses = CheckSystemDeps(cfg, config.DispositionDelete)
	if !statuses[1].Optional {
		t.Fatal("7z should be optional without archiving")
	}
}

func TestRunAllAndErr(t *testing.T) {
	cfg := testConfig(t, "magick")
	root := t.TempDir()

	if err := Err(RunAll(cfg, root, config.DispositionDelete)); err != nil {
		t.Fatalf("expected no precondition error, got %v", err)
	}

	err := Err(RunAll(cfg, root, config.DispositionArchive))
	if !errors.Is(err, services.ErrPrecondition) || !strings.Contains(err.Error(), "7-Zip") {
		t.Fatalf("expected 7-Zip precondition error, got %v", err)
	}

	err = Err(RunAll(cfg, filepath.Join(root, "missing"), config.DispositionNone))
	if !errors.Is(err, services.ErrPrecondition) || !strings.Contains(err.Error(), "Image directory") {
		t.Fatalf("expected directory precondition error, got %v", err)
	}
}

func TestRunAllJournalDirectoryIsOptional(t *testing.T) {
	cfg := testConfig(t, "magick")
	cfg.Journal.Path = filepath.Join(t.TempDir(), "missing", "journal.db")

	results := RunAll(cfg, t.TempDir(), config.DispositionNone)
	var journal *Result
	for i := range results {
		if results[i].Name == "Journal directory" {
			journal = &results[i]
		}
	}
	if journal == nil || journal.Passed || !journal.Optional {
		t.Fatalf("expected optional failed journal check, got %+v", journal)
	}
	if err := Err(results); err != nil {
		t.Fatalf("journal directory must not block the run: %v", err)
	}
}
