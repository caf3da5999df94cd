package sevenzip_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"landscaper/internal/services"
	"landscaper/internal/services/sevenzip"
)

type stubExecutor struct {
	err    error
	binary string
	args   [][]string
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string) ([]byte, error) {
	s.binary = binary
	s.args = append(s.args, append([]string(nil), args...))
	return nil, s.err
}

func TestArgs(t *testing.T) {
	got := sevenzip.Args("/p/a.jpg", "/p/premontage/a.7z", "secret")
	want := []string{"a", "-bb0", "-sdel", "-psecret", "/p/premontage/a.7z", "/p/a.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Args = %v, want %v", got, want)
	}
	got = sevenzip.Args("/p/a.jpg", "/p/premontage/a.7z", "")
	want = []string{"a", "-bb0", "-sdel", "/p/premontage/a.7z", "/p/a.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Args without password = %v, want %v", got, want)
	}
}

func TestArchiveCreatesDirectoryAndRuns(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "premontage", "a.7z")
	exec := &stubExecutor{}
	client, err := sevenzip.New("7z", sevenzip.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Archive(context.Background(), filepath.Join(dir, "a.jpg"), archive, ""); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(archive)); err != nil || !info.IsDir() {
		t.Fatalf("expected archive directory, err=%v", err)
	}
	if exec.binary != "7z" || len(exec.args) != 1 {
		t.Fatalf("unexpected invocation %s %v", exec.binary, exec.args)
	}
}

func TestArchiveRedactsPasswordInErrors(t *testing.T) {
	exec := &stubExecutor{err: fmt.Errorf("7z a -bb0 -sdel -psecret x.7z x.jpg: exit status 2")}
	client, _ := sevenzip.New("7z", sevenzip.WithExecutor(exec))

	dir := t.TempDir()
	err := client.Archive(context.Background(), filepath.Join(dir, "x.jpg"), filepath.Join(dir, "x.7z"), "secret")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("password leaked into error: %v", err)
	}
}

func TestArchiveValidatesPaths(t *testing.T) {
	client, _ := sevenzip.New("7z", sevenzip.WithExecutor(&stubExecutor{}))
	if err := client.Archive(context.Background(), "", "/p/a.7z", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
