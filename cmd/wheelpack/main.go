// Command wheelpack repairs and repacks wheels reproducibly.
//
// It runs the wheel repair tool with a deterministic walker and packer and
// always restricts output platform tags to the target platform:
//
//	wheelpack repair dist/pkg-1.0-py3-none-any.whl -w wheelhouse
//
// Configuration comes from wheelpack.toml (working directory, then the user
// config directory) and WHEELPACK_LOG_LEVEL, WHEELPACK_LEVEL,
// WHEELPACK_NORMALIZE_MODES, and SOURCE_DATE_EPOCH.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/meigma/wheelpack/repair"
	"github.com/meigma/wheelpack/shim"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := loadConfig(configPaths()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return repair.ExitUsage
	}
	logger, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return repair.ExitUsage
	}
	opts, err := cfg.shimOptions()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return repair.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return shim.Run(ctx, args, append(opts, shim.WithLogger(logger))...)
}

// newLogger returns a slog logger rendered by charmbracelet/log.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix: appName,
		Level:  lvl,
	})
	return slog.New(handler), nil
}
