package repair

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes returned by [Tool.Main].
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// OnlyPlatFlag restricts output tags to the target platform alone.
const OnlyPlatFlag = "only-plat"

// DefaultWheelDir is the output directory used when -w is not given.
const DefaultWheelDir = "wheelhouse"

// Tool is the wheel repair command-line tool.
type Tool struct {
	prims  Primitives
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Tool.
type Option func(*Tool)

// WithPrimitives sets the traversal and packing primitives.
func WithPrimitives(p Primitives) Option {
	return func(t *Tool) {
		t.prims = p
	}
}

// WithLogger sets the logger for tool diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) {
		t.logger = logger
	}
}

// WithOutput redirects the tool's standard output and error streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(t *Tool) {
		t.stdout = stdout
		t.stderr = stderr
	}
}

// New creates a Tool.
func New(opts ...Option) *Tool {
	t := &Tool{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.prims = t.prims.withDefaults()
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	return t
}

// usageError marks command-line mistakes so Main can exit with ExitUsage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// globalFlags are accepted by every subcommand.
type globalFlags struct {
	onlyPlat bool
}

// Main runs the tool with args (excluding the program name) and returns the
// process exit code.
func (t *Tool) Main(ctx context.Context, args []string) int {
	root := t.command()
	// cobra falls back to os.Args for a nil slice.
	root.SetArgs(append([]string{}, args...))
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(t.stderr, "error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitFailure
	}
	return ExitOK
}

// command builds the cobra command tree for one invocation.
func (t *Tool) command() *cobra.Command {
	var global globalFlags
	root := &cobra.Command{
		Use:   "wheelpack",
		Short: "Repair and repack binary wheels",
		Long: `wheelpack retags wheels for a build platform, regenerates their RECORD
manifest, and writes the repacked archive.

Examples:
  wheelpack repair dist/mpich-4.2.0-py3-none-any.whl -w wheelhouse
  wheelpack pack build/wheel -w dist
  wheelpack show wheelhouse/mpich-4.2.0-py3-none-linux_x86_64.whl`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(t.stdout)
	root.SetErr(t.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	root.PersistentFlags().BoolVar(&global.onlyPlat, OnlyPlatFlag, false, "restrict platform tags to the target platform only")

	root.AddCommand(t.repairCommand(&global))
	root.AddCommand(t.packCommand(&global))
	root.AddCommand(t.showCommand())
	return root
}
