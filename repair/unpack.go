package repair

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/wheelpack/internal/write"
)

const copyBufferSize = 32 * 1024

// unpack extracts the wheel at src into dir and returns the latest entry
// modification time found in the archive.
func unpack(ctx context.Context, src, dir string) (latest time.Time, err error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return time.Time{}, fmt.Errorf("open wheel %s: %w", src, err)
	}
	defer zr.Close()

	buf := make([]byte, copyBufferSize)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		name := strings.TrimSuffix(f.Name, "/")
		rel := filepath.FromSlash(name)
		if name == "" || !filepath.IsLocal(rel) {
			return time.Time{}, fmt.Errorf("wheel %s: unsafe member name %q", src, f.Name)
		}
		if f.Modified.After(latest) {
			latest = f.Modified
		}

		target := filepath.Join(dir, rel)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return time.Time{}, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return time.Time{}, err
		}
		if err := extractFile(ctx, f, target, buf); err != nil {
			return time.Time{}, fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return latest, nil
}

func extractFile(ctx context.Context, f *zip.File, target string, buf []byte) (err error) {
	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	_, err = write.CopyWithContext(ctx, out, rc, buf)
	return err
}

// replaceFile overwrites path with data, keeping its permission bits.
func replaceFile(path string, data []byte) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, data, perm)
}

// errNoMember reports a wheel lacking a requested .dist-info member.
var errNoMember = errors.New("no such .dist-info member")

// readWheelMember returns the contents of the root-level .dist-info member
// called name inside the wheel at src.
func readWheelMember(src, name string) ([]byte, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open wheel %s: %w", src, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		dir, base, ok := strings.Cut(f.Name, "/")
		if !ok || base != name || !strings.HasSuffix(dir, ".dist-info") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		return data, err
	}
	return nil, fmt.Errorf("wheel %s: .dist-info/%s: %w", src, name, errNoMember)
}
