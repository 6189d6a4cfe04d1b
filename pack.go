package wheelpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/wheelpack/internal/pathutil"
	"github.com/meigma/wheelpack/internal/platform"
	"github.com/meigma/wheelpack/internal/write"
)

var errNotRegular = errors.New("not a regular file")

var (
	// zipEpoch is the earliest time representable in a ZIP entry.
	zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	// zipLatest is the latest time representable in a ZIP entry.
	// The extended timestamp field holds unsigned 32-bit Unix seconds,
	// which ends earlier than the MS-DOS date range.
	zipLatest = time.Date(2106, time.February, 7, 6, 28, 14, 0, time.UTC)
)

// Entry describes one member of a packed archive.
type Entry struct {
	// Name is the slash-separated member name. Directory markers end in "/".
	Name string

	// Modified is the shared archive timestamp.
	Modified time.Time

	// Method is zip.Deflate for files and zip.Store for directory markers.
	Method uint16

	// Mode is the mode recorded in the entry's external attributes.
	Mode fs.FileMode

	// Size is the uncompressed size in bytes.
	Size uint64

	// Dir is true for empty-directory markers.
	Dir bool
}

// Result describes a completed pack operation.
type Result struct {
	// Path is the destination written by [Pack]. Empty for [PackFS].
	Path string

	// Entries lists archive members in the order they were written.
	Entries []Entry

	// Size is the number of archive bytes written.
	Size uint64

	// Digest is the sha256 digest of the archive bytes.
	Digest digest.Digest

	// Modified is the timestamp applied to every entry.
	Modified time.Time
}

// NormalizeTimestamp converts t to the value stored in archive entries:
// UTC, rounded down to the two-second resolution of ZIP timestamps, and
// clamped to the range ZIP can represent.
func NormalizeTimestamp(t time.Time) time.Time {
	t = t.UTC()
	if t.Before(zipEpoch) {
		return zipEpoch
	}
	if t.After(zipLatest) {
		return zipLatest
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second()&^1, 0, time.UTC)
}

// PackFS writes a reproducible archive of fsys to w.
//
// Entries follow [WalkFS] order. Each non-root directory that has neither
// files nor subdirectories becomes a zero-length member named with a
// trailing slash; each file becomes a DEFLATE-compressed member. Every entry
// carries the same timestamp: the PackWithTimestamp value, or the
// modification time of fsys's root.
//
// Identical trees produce identical bytes. Output written to w before a
// failure is not rolled back.
func PackFS(ctx context.Context, fsys fs.FS, w io.Writer, opts ...PackOption) (*Result, error) {
	return packFS(ctx, fsys, w, newPackConfig(opts))
}

func packFS(ctx context.Context, fsys fs.FS, w io.Writer, cfg packConfig) (*Result, error) {
	if !write.ValidLevel(cfg.level) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, cfg.level)
	}
	modified, err := packTimestamp(fsys, cfg.timestamp)
	if err != nil {
		return nil, err
	}

	digester := digest.Canonical.Digester()
	cw := &write.CountingWriter{W: io.MultiWriter(w, digester.Hash())}
	zw := zip.NewWriter(cw)
	zw.RegisterCompressor(zip.Deflate, write.Deflater(cfg.level))

	p := &packer{
		fsys:     fsys,
		cfg:      cfg,
		zw:       zw,
		modified: modified,
		buf:      make([]byte, 32*1024),
		logger:   cfg.logger,
	}
	p.log().Info("packing archive", "timestamp", modified.Format(time.RFC3339), "level", cfg.level)
	p.reportProgress(StageEnumerating, "")

	walkOpts := []WalkOption{WalkWithOrder(cfg.order), WalkWithLogger(p.log())}
	if cfg.skip != nil {
		walkOpts = append(walkOpts, WalkWithSkip(cfg.skip))
	}
	for d, walkErr := range WalkFS(fsys, walkOpts...) {
		if walkErr != nil {
			return nil, walkErr
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !d.IsRoot() && d.IsEmpty() {
			if err := p.addDir(d.Path); err != nil {
				return nil, err
			}
		}
		for _, name := range d.Files {
			if err := p.addFile(ctx, pathutil.Join(d.Path, name)); err != nil {
				return nil, err
			}
		}
	}

	p.reportProgress(StageFinalizing, "")
	if err := zw.Close(); err != nil {
		return nil, classify("write archive", ".", err)
	}

	res := &Result{
		Entries:  p.entries,
		Size:     cw.N,
		Digest:   digester.Digest(),
		Modified: modified,
	}
	p.log().Debug("archive written", "entries", len(res.Entries), "size", res.Size, "digest", res.Digest.String())
	return res, nil
}

// packTimestamp returns the normalized archive timestamp.
func packTimestamp(fsys fs.FS, override time.Time) (time.Time, error) {
	if !override.IsZero() {
		return NormalizeTimestamp(override), nil
	}
	info, err := fs.Stat(fsys, ".")
	if err != nil {
		return time.Time{}, classify("pack", ".", err)
	}
	return NormalizeTimestamp(info.ModTime()), nil
}

// packer holds state for a single pack operation.
type packer struct {
	fsys      fs.FS
	cfg       packConfig
	zw        *zip.Writer
	modified  time.Time
	buf       []byte
	entries   []Entry
	bytesDone uint64
	logger    *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (p *packer) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// reportProgress sends a progress event if a callback is configured.
func (p *packer) reportProgress(stage ProgressStage, path string) {
	if p.cfg.progress == nil {
		return
	}
	p.cfg.progress(ProgressEvent{
		Stage:       stage,
		Path:        path,
		BytesDone:   p.bytesDone,
		EntriesDone: len(p.entries),
	})
}

// header builds the entry header shared by files and directory markers.
func (p *packer) header(name string, mode fs.FileMode) *zip.FileHeader {
	fh := &zip.FileHeader{
		Name:     name,
		Modified: p.modified,
	}
	fh.SetMode(p.entryMode(mode))
	return fh
}

func (p *packer) entryMode(mode fs.FileMode) fs.FileMode {
	if !p.cfg.normalizeModes {
		return mode
	}
	if mode.IsDir() {
		return fs.ModeDir | 0o755
	}
	return platform.NormalizeMode(mode)
}

// addDir writes a zero-length marker for an empty directory.
func (p *packer) addDir(dir string) error {
	info, err := fs.Stat(p.fsys, dir)
	if err != nil {
		return classify("stat", dir, err)
	}
	name := pathutil.DirMember(dir)
	fh := p.header(name, info.Mode())
	fh.Method = zip.Store
	if _, err := p.zw.CreateHeader(fh); err != nil {
		return classify("write archive", name, err)
	}
	p.entries = append(p.entries, Entry{
		Name:     name,
		Modified: p.modified,
		Method:   zip.Store,
		Mode:     fh.Mode(),
		Dir:      true,
	})
	p.log().Debug("added directory", "path", name)
	p.reportProgress(StageCompressing, name)
	return nil
}

// addFile compresses the full contents of name into a new entry.
func (p *packer) addFile(ctx context.Context, name string) error {
	f, err := p.fsys.Open(name)
	if err != nil {
		return classify("open", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return classify("stat", name, err)
	}
	if !info.Mode().IsRegular() {
		return &PathError{Op: "open", Path: name, Kind: ErrIOFailure, Err: errNotRegular}
	}

	fh := p.header(name, info.Mode())
	fh.Method = zip.Deflate
	ew, err := p.zw.CreateHeader(fh)
	if err != nil {
		return classify("write archive", name, err)
	}
	n, err := write.CopyWithContext(ctx, ew, f, p.buf)
	if err != nil {
		return classify("archive", name, err)
	}
	if err := write.CheckFileUnchanged(f, name, info, p.cfg.changeDetection == ChangeDetectionStrict); err != nil {
		return classify("archive", name, err)
	}

	p.bytesDone += n
	p.entries = append(p.entries, Entry{
		Name:     name,
		Modified: p.modified,
		Method:   zip.Deflate,
		Mode:     fh.Mode(),
		Size:     n,
	})
	p.reportProgress(StageCompressing, name)
	return nil
}
