// Package shim runs the wheel repair tool with reproducible primitives.
//
// [Run] builds a [repair.Tool] whose directory traversal is the
// deterministic [wheelpack.Walk] and whose archive writer is
// [wheelpack.Pack], forces platform-only tagging by appending
// --only-plat to the arguments, and returns the tool's exit code
// unchanged. Every call constructs its own tool; nothing global is patched.
package shim

import (
	"context"
	"iter"
	"slices"

	"github.com/meigma/wheelpack"
	"github.com/meigma/wheelpack/repair"
)

// OnlyPlatArg is the argument appended to every delegated invocation.
const OnlyPlatArg = "--" + repair.OnlyPlatFlag

// endOfFlags stops flag parsing in the tool's command line.
const endOfFlags = "--"

// Primitives returns repair primitives backed by the reproducible walker
// and packer.
func Primitives(opts ...Option) repair.Primitives {
	cfg := newConfig(opts)
	return primitives(cfg)
}

func primitives(cfg config) repair.Primitives {
	walkOpts := cfg.walkOptions()
	packOpts := cfg.packOptions()
	return repair.Primitives{
		Walk: func(root string) iter.Seq2[wheelpack.Dir, error] {
			return wheelpack.Walk(root, walkOpts...)
		},
		Pack: func(ctx context.Context, srcDir, dst string) (*wheelpack.Result, error) {
			return wheelpack.Pack(ctx, srcDir, dst, packOpts...)
		},
	}
}

// Run installs the reproducible primitives into a new repair tool, invokes
// it with args plus --only-plat, and returns its exit code.
func Run(ctx context.Context, args []string, opts ...Option) int {
	cfg := newConfig(opts)
	tool := repair.New(
		repair.WithPrimitives(primitives(cfg)),
		repair.WithLogger(cfg.logger),
		repair.WithOutput(cfg.stdout, cfg.stderr),
	)
	delegated := WithOnlyPlat(args)
	cfg.logger.Debug("delegating to repair tool", "args", delegated)

	code := tool.Main(ctx, delegated)
	cfg.logger.Debug("repair tool finished", "exit_code", code)
	return code
}

// WithOnlyPlat returns a copy of args with --only-plat appended. When args
// contain a "--" terminator the flag is inserted before it so it is still
// parsed as a flag. args is not modified.
func WithOnlyPlat(args []string) []string {
	out := make([]string, 0, len(args)+1)
	if i := slices.Index(args, endOfFlags); i >= 0 {
		out = append(out, args[:i]...)
		out = append(out, OnlyPlatArg)
		return append(out, args[i:]...)
	}
	out = append(out, args...)
	return append(out, OnlyPlatArg)
}
