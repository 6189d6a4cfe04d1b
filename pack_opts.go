package wheelpack

import (
	"log/slog"
	"time"

	"github.com/meigma/wheelpack/internal/write"
)

// ChangeDetection controls how strictly file changes are detected while packing.
type ChangeDetection uint8

const (
	ChangeDetectionNone ChangeDetection = iota
	ChangeDetectionStrict
)

// DefaultLevel is the DEFLATE level used when no PackWithLevel option is set.
const DefaultLevel = write.DefaultLevel

// packConfig holds configuration for archive creation.
type packConfig struct {
	timestamp       time.Time
	level           int
	order           Order
	normalizeModes  bool
	changeDetection ChangeDetection
	progress        ProgressFunc
	logger          *slog.Logger
	atomic          bool
	skip            func(path string) bool
}

// PackOption configures archive creation.
type PackOption func(*packConfig)

// PackWithTimestamp sets the modification time stamped on every entry.
// Without it the root directory's modification time is used.
func PackWithTimestamp(t time.Time) PackOption {
	return func(cfg *packConfig) {
		cfg.timestamp = t
	}
}

// PackWithLevel sets the DEFLATE level, from -2 (Huffman only) to 9.
// The level is part of the output: archives packed at different levels differ.
func PackWithLevel(level int) PackOption {
	return func(cfg *packConfig) {
		cfg.level = level
	}
}

// PackWithOrder replaces the default wheel ordering policy.
func PackWithOrder(o Order) PackOption {
	return func(cfg *packConfig) {
		cfg.order = o
	}
}

// PackWithNormalizedModes records 0o755 for executable files and 0o644 for
// all others instead of the on-disk permissions, so that umask differences
// between hosts do not change the output.
func PackWithNormalizedModes() PackOption {
	return func(cfg *packConfig) {
		cfg.normalizeModes = true
	}
}

// PackWithChangeDetection controls whether the packer verifies files did not
// change while they were read. The zero value disables change detection to
// reduce syscalls.
func PackWithChangeDetection(cd ChangeDetection) PackOption {
	return func(cfg *packConfig) {
		cfg.changeDetection = cd
	}
}

// PackWithProgress sets a callback that receives progress updates.
func PackWithProgress(fn ProgressFunc) PackOption {
	return func(cfg *packConfig) {
		cfg.progress = fn
	}
}

// PackWithLogger sets the logger for pack operations.
func PackWithLogger(logger *slog.Logger) PackOption {
	return func(cfg *packConfig) {
		cfg.logger = logger
	}
}

// PackWithAtomicWrite controls how [Pack] writes the destination. When
// enabled (the default) the archive is written to a temporary file next to
// the destination and renamed into place on success, so a failed pack leaves
// any existing destination untouched. When disabled the destination is
// written in place and removed if packing fails.
func PackWithAtomicWrite(enabled bool) PackOption {
	return func(cfg *packConfig) {
		cfg.atomic = enabled
	}
}

func newPackConfig(opts []PackOption) packConfig {
	cfg := packConfig{
		level:  DefaultLevel,
		order:  DefaultOrder(),
		atomic: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
