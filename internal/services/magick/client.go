package magick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"landscaper/internal/services"
)

const component = "magick"

// Executor abstracts command execution for testability. Run returns the
// command's stdout.
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

// Client wraps ImageMagick CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs an ImageMagick client. timeoutSeconds <= 0 disables the
// per-call timeout.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("imagemagick binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	if timeoutSeconds > 0 {
		client.timeout = time.Duration(timeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Identify returns the raw `magick identify` description of path.
func (c *Client) Identify(ctx context.Context, path string) (string, error) {
	out, err := c.run(ctx, "identify", []string{"identify", path})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Append joins inputs left to right into output, encoded as format.
func (c *Client) Append(ctx context.Context, inputs []string, output, format string) error {
	if len(inputs) < 2 {
		return services.Wrap(services.ErrValidation, component, "append", "at least two inputs required", nil)
	}
	if strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrValidation, component, "append", "output path required", nil)
	}
	args := append([]string(nil), inputs...)
	args = append(args, "+append", formatTarget(format, output))
	_, err := c.run(ctx, "append", args)
	return err
}

// Rescale scales path in place by percent (100 leaves it unchanged).
func (c *Client) Rescale(ctx context.Context, path string, percent float64, format string) error {
	if percent <= 0 {
		return services.Wrap(services.ErrValidation, component, "rescale", fmt.Sprintf("invalid percent %v", percent), nil)
	}
	args := []string{path, "-scale", FormatPercent(percent), formatTarget(format, path)}
	_, err := c.run(ctx, "rescale", args)
	return err
}

// FormatPercent renders a geometry percentage such as "93.75%".
func FormatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', -1, 64) + "%"
}

func formatTarget(format, path string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return path
	}
	return format + ":" + path
}

func (c *Client) run(ctx context.Context, operation string, args []string) ([]byte, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	out, err := c.exec.Run(callCtx, c.binary, args)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return nil, services.Wrap(services.ErrTimeout, component, operation, fmt.Sprintf("exceeded %s", c.timeout), err)
	}
	return nil, services.Wrap(services.ErrExternalTool, component, operation, "", err)
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
			return stdout.Bytes(), fmt.Errorf("%s %s: %w", binary, strings.Join(args, " "), err)
		}
		return stdout.Bytes(), fmt.Errorf("%s %s: %w: %s", binary, strings.Join(args, " "), err, detail)
	}
	return stdout.Bytes(), nil
}
