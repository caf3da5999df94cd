package services_test

import (
	"errors"
	"strings"
	"testing"

	"landscaper/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "magick", "append", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"magick", "append", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"precondition", services.Wrap(services.ErrPrecondition, "cli", "auto", "missing dir", nil), true},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), true},
		{"tool", services.Wrap(services.ErrExternalTool, "7z", "archive", "exit 2", nil), false},
		{"validation", services.Wrap(services.ErrValidation, "aspect", "parse", "no geometry", nil), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := services.IsFatal(tc.err); got != tc.want {
			t.Errorf("%s: IsFatal=%v, want %v", tc.name, got, tc.want)
		}
	}
}
