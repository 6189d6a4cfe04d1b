package wheelpack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/meigma/wheelpack/internal/write"
)

// archiveMode is the permission set on written archives.
const archiveMode = 0o644

// tempPrefix starts the name of every temp file written by Pack.
const tempPrefix = ".wheelpack-"

// Pack writes a reproducible archive of srcDir to dst.
//
// See [PackFS] for the archive layout. srcDir is opened with [os.OpenRoot],
// so symlinks that leave the tree fail the pack. Parent directories of dst
// are created as needed. By default dst is replaced atomically; see
// [PackWithAtomicWrite].
//
// The archive timestamp is read from srcDir before dst is touched. When dst
// lies inside srcDir, dst and Pack's temp files are left out of the archive.
func Pack(ctx context.Context, srcDir, dst string, opts ...PackOption) (*Result, error) {
	cfg := newPackConfig(opts)
	if !write.ValidLevel(cfg.level) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, cfg.level)
	}

	root, err := openRoot("pack", srcDir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	// Creating dst inside srcDir would move the root mtime.
	cfg.timestamp, err = packTimestamp(root.FS(), cfg.timestamp)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, classify("create directory", filepath.Dir(dst), err)
	}
	cfg.skip = destinationSkip(srcDir, dst)

	var res *Result
	fill := func(w io.Writer) error {
		var packErr error
		res, packErr = packFS(ctx, root.FS(), w, cfg)
		return packErr
	}
	if cfg.atomic {
		err = writeFileAtomic(dst, fill)
	} else {
		err = writeFileInPlace(dst, fill)
	}
	if err != nil {
		return nil, err
	}
	res.Path = dst
	return res, nil
}

// destinationSkip returns a predicate matching dst and its temp files by
// their path relative to srcDir, or nil when dst lies outside srcDir.
func destinationSkip(srcDir, dst string) func(string) bool {
	src, err := resolvePath(srcDir)
	if err != nil {
		return nil
	}
	dstDir, err := resolvePath(filepath.Dir(dst))
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(src, dstDir)
	if err != nil || !filepath.IsLocal(rel) {
		return nil
	}
	relDir := filepath.ToSlash(rel)
	relDst := path.Join(relDir, filepath.Base(dst))
	return func(p string) bool {
		if p == relDst {
			return true
		}
		return path.Dir(p) == relDir && strings.HasPrefix(path.Base(p), tempPrefix)
	}
}

// resolvePath returns the absolute form of p with symlinks evaluated.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// writeFileAtomic streams fill to a temp file then renames to target,
// ensuring atomic replacement of the target file.
func writeFileAtomic(target string, fill func(io.Writer) error) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return classify("create", target, err)
	}
	tmpPath := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(archiveMode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return classify("chmod", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return classify("write", target, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return classify("rename", target, err)
	}
	return nil
}

// writeFileInPlace streams fill directly to target, removing it on failure.
func writeFileInPlace(target string, fill func(io.Writer) error) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, archiveMode)
	if err != nil {
		return classify("create", target, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		os.Remove(target)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return classify("write", target, err)
	}
	return nil
}
