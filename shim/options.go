package shim

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/meigma/wheelpack"
)

// Option configures the primitives and the tool installed by [Run].
type Option func(*config)

type config struct {
	timestamp      time.Time
	level          int
	normalizeModes bool
	logger         *slog.Logger
	stdout         io.Writer
	stderr         io.Writer
}

// WithTimestamp fixes the archive timestamp instead of using the tree's
// root modification time. A zero time is ignored.
func WithTimestamp(t time.Time) Option {
	return func(c *config) {
		c.timestamp = t
	}
}

// WithLevel sets the DEFLATE level passed to the packer.
func WithLevel(level int) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithNormalizedModes makes the packer record normalized permissions.
func WithNormalizedModes() Option {
	return func(c *config) {
		c.normalizeModes = true
	}
}

// WithLogger sets the logger shared by the walker, packer, and tool.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithOutput redirects the tool's standard output and error streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

func newConfig(opts []Option) config {
	c := config{
		level:  wheelpack.DefaultLevel,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

func (c config) walkOptions() []wheelpack.WalkOption {
	return []wheelpack.WalkOption{wheelpack.WalkWithLogger(c.logger)}
}

func (c config) packOptions() []wheelpack.PackOption {
	opts := []wheelpack.PackOption{
		wheelpack.PackWithLevel(c.level),
		wheelpack.PackWithLogger(c.logger),
	}
	if !c.timestamp.IsZero() {
		opts = append(opts, wheelpack.PackWithTimestamp(c.timestamp))
	}
	if c.normalizeModes {
		opts = append(opts, wheelpack.PackWithNormalizedModes())
	}
	return opts
}
