package wheelpack

import "log/slog"

// walkConfig holds configuration for traversal.
type walkConfig struct {
	order  Order
	logger *slog.Logger
	skip   func(path string) bool
}

// WalkOption configures traversal.
type WalkOption func(*walkConfig)

// WalkWithOrder replaces the default wheel ordering policy.
func WalkWithOrder(o Order) WalkOption {
	return func(cfg *walkConfig) {
		cfg.order = o
	}
}

// WalkWithLogger sets the logger for traversal diagnostics.
// Skipped entries are reported at debug level.
func WalkWithLogger(logger *slog.Logger) WalkOption {
	return func(cfg *walkConfig) {
		cfg.logger = logger
	}
}

// WalkWithSkip leaves out every entry whose walk-relative path satisfies
// skip. Skipped entries still count toward [Dir.Skipped].
func WalkWithSkip(skip func(path string) bool) WalkOption {
	return func(cfg *walkConfig) {
		cfg.skip = skip
	}
}

func newWalkConfig(opts []WalkOption) walkConfig {
	cfg := walkConfig{order: DefaultOrder()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}
