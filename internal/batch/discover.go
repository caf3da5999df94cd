package batch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"landscaper/internal/logging"
	"landscaper/internal/montage"
)

// Selector decides which directory entries are candidate images.
type Selector struct {
	// Extensions are lowercase, without the leading dot.
	Extensions []string
	// Suffix marks montage outputs, which are never candidates.
	Suffix string
}

// Accept reports whether name is a candidate image.
func (s Selector) Accept(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return false
	}
	allowed := false
	for _, candidate := range s.Extensions {
		if candidate == ext {
			allowed = true
			break
		}
	}
	return allowed && !montage.IsMontage(name, s.Suffix)
}

// Directories lists root followed by every subdirectory in WalkDir's
// depth-first lexical order (root only when recursive is false). A symlink to
// a directory is listed as a scope of its own but never descended into, and a
// directory reachable through several paths is listed once. A symlinked root
// is walked through its target with paths reported under root. Unreadable
// subdirectories are logged and skipped; an unreadable root is an error.
func Directories(root string, recursive bool, logger *slog.Logger) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	if !recursive {
		return []string{root}, nil
	}

	walkRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil && resolved != filepath.Clean(root) {
		walkRoot = resolved
	}

	var dirs []string
	seen := make(map[string]bool)
	addScope := func(path string) {
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			resolved = path
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		dirs = append(dirs, path)
	}
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if rel, relErr := filepath.Rel(walkRoot, path); relErr == nil {
			path = filepath.Join(root, rel)
		}
		if err != nil {
			if path == filepath.Clean(root) {
				return err
			}
			logging.WarnWithContext(logger, "directory skipped", "directory_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
				logging.String(logging.FieldImpact, "images in this directory are not paired"),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case d.IsDir():
			addScope(path)
		case d.Type()&fs.ModeSymlink != 0:
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				addScope(path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return dirs, nil
}

// Candidates lists the candidate images directly inside dir, sorted. Symlinks
// count when they resolve to a regular file.
func Candidates(dir string, sel Selector) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !sel.Accept(entry.Name()) || !isRegular(dir, entry) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isRegular(dir string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}
