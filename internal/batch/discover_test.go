package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"landscaper/internal/logging"
)

func TestDirectoriesOrder(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"b", "a/x", "a-b"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	dirs, err := Directories(root, true, logging.NewNop())
	if err != nil {
		t.Fatalf("Directories returned error: %v", err)
	}
	want := []string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "x"),
		filepath.Join(root, "a-b"),
		filepath.Join(root, "b"),
	}
	if !reflect.DeepEqual(dirs, want) {
		t.Fatalf("dirs = %v, want %v", dirs, want)
	}

	dirs, err = Directories(root, false, logging.NewNop())
	if err != nil || !reflect.DeepEqual(dirs, []string{root}) {
		t.Fatalf("non-recursive = %v, %v", dirs, err)
	}
}

func TestDirectoriesRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.jpg")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Directories(file, true, logging.NewNop()); err == nil {
		t.Fatal("expected error for file root")
	}
}

func TestSelectorAccept(t *testing.T) {
	sel := Selector{Extensions: []string{"png", "jpg"}, Suffix: "_montage"}
	cases := map[string]bool{
		"a.jpg":         true,
		"a.JPG":         true,
		"a.png":         true,
		"a.jpeg":        false,
		"a":             false,
		"a_montage.png": false,
		"montage_a.png": true,
		".hidden.jpg":   true,
	}
	for name, want := range cases {
		if got := sel.Accept(name); got != want {
			t.Errorf("Accept(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCandidatesSortedRegularFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.jpg", "a.png", "b.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Candidates(dir, Selector{Extensions: []string{"png", "jpg"}, Suffix: "_montage"})
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.jpg"), filepath.Join(dir, "c.jpg")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
}

func TestCandidatesFollowFileSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.jpg")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(dir, "linked.jpg")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(dir, "missing.jpg"), filepath.Join(dir, "dangling.jpg")); err != nil {
		t.Fatal(err)
	}

	got, err := Candidates(dir, Selector{Extensions: []string{"jpg"}, Suffix: "_montage"})
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	want := []string{filepath.Join(dir, "linked.jpg")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
}

func TestDirectoriesListsSymlinkedDirsWithoutDescending(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.MkdirAll(filepath.Join(outside, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "b")); err != nil {
		t.Fatal(err)
	}
	// A link back to root names a scope that is already listed.
	if err := os.Symlink(root, filepath.Join(root, "a", "loop")); err != nil {
		t.Fatal(err)
	}

	dirs, err := Directories(root, true, logging.NewNop())
	if err != nil {
		t.Fatalf("Directories returned error: %v", err)
	}
	want := []string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "b"),
	}
	if !reflect.DeepEqual(dirs, want) {
		t.Fatalf("dirs = %v, want %v", dirs, want)
	}
}

func TestDirectoriesWalksSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	if err := os.Mkdir(filepath.Join(target, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(target, root); err != nil {
		t.Fatal(err)
	}

	dirs, err := Directories(root, true, logging.NewNop())
	if err != nil {
		t.Fatalf("Directories returned error: %v", err)
	}
	want := []string{root, filepath.Join(root, "sub")}
	if !reflect.DeepEqual(dirs, want) {
		t.Fatalf("dirs = %v, want %v", dirs, want)
	}
}
