package sevenzip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"landscaper/internal/services"
)

const component = "sevenzip"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps 7-Zip CLI interactions.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a 7-Zip client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("7z binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Archive adds src to archivePath and removes src. An empty password creates
// an unencrypted archive.
func (c *Client) Archive(ctx context.Context, src, archivePath, password string) error {
	if strings.TrimSpace(src) == "" || strings.TrimSpace(archivePath) == "" {
		return services.Wrap(services.ErrValidation, component, "archive", "source and archive paths required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, component, "archive", "create archive directory", err)
	}
	if _, err := c.exec.Run(ctx, c.binary, Args(src, archivePath, password)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, component, "archive", filepath.Base(src), redact(err, password))
	}
	return nil
}

// Args builds the `7z a` argument list for moving src into archivePath.
func Args(src, archivePath, password string) []string {
	args := []string{"a", "-bb0", "-sdel"}
	if password != "" {
		args = append(args, "-p"+password)
	}
	return append(args, archivePath, src)
}

// redact keeps the archive password out of error text that ends up in logs
// and the journal.
func redact(err error, password string) error {
	if password == "" || !strings.Contains(err.Error(), password) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), "-p"+password, "-p***"))
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail == "" {
			return stdout.Bytes(), fmt.Errorf("%s %s: %w", binary, strings.Join(args, " "), err)
		}
		return stdout.Bytes(), fmt.Errorf("%s %s: %w: %s", binary, strings.Join(args, " "), err, detail)
	}
	return stdout.Bytes(), nil
}
