package wheelpack

import (
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"os"

	"github.com/meigma/wheelpack/internal/pathutil"
)

var errNotDir = errors.New("not a directory")

// Dir is one step of a traversal: a directory and its ordered children.
type Dir struct {
	// Path is slash-separated and relative to the walk root. The root
	// itself is ".".
	Path string

	// Dirs holds child directory names in the order they are visited.
	Dirs []string

	// Files holds child file names in archive order.
	Files []string

	// Skipped counts children left out of Dirs and Files: directory
	// symlinks, special files, and entries rejected by WalkWithSkip.
	Skipped int
}

// IsRoot reports whether d is the walk root.
func (d Dir) IsRoot() bool {
	return d.Path == "."
}

// IsEmpty reports whether d has no children at all, listed or skipped.
func (d Dir) IsEmpty() bool {
	return len(d.Dirs) == 0 && len(d.Files) == 0 && d.Skipped == 0
}

// Walk returns a depth-first, pre-order traversal of the tree rooted at root.
//
// The root is opened when iteration starts and stays confined with
// [os.OpenRoot]: symlinks that leave the tree fail the walk. A failing root
// yields a single error and nothing else. A failure deeper in the tree is
// yielded once and ends the iteration.
func Walk(root string, opts ...WalkOption) iter.Seq2[Dir, error] {
	return func(yield func(Dir, error) bool) {
		r, err := openRoot("walk", root)
		if err != nil {
			yield(Dir{}, err)
			return
		}
		defer r.Close()

		for d, err := range WalkFS(r.FS(), opts...) {
			if !yield(d, err) {
				return
			}
		}
	}
}

// WalkFS is like [Walk] but traverses fsys starting at ".".
//
// Children are ordered by the configured [Order] regardless of the order
// fsys reports them in. Directories are visited in the order returned for
// their parent, so the ordering applies at every depth.
//
// Symlinks to regular files are listed as files. Symlinks to directories
// are neither listed nor descended. Other special files are skipped.
func WalkFS(fsys fs.FS, opts ...WalkOption) iter.Seq2[Dir, error] {
	cfg := newWalkConfig(opts)
	return func(yield func(Dir, error) bool) {
		info, err := fs.Stat(fsys, ".")
		if err != nil {
			yield(Dir{}, classify("walk", ".", err))
			return
		}
		if !info.IsDir() {
			yield(Dir{}, &PathError{Op: "walk", Path: ".", Kind: ErrInvalidRoot, Err: errNotDir})
			return
		}
		w := &walker{fsys: fsys, order: cfg.order, logger: cfg.logger, skip: cfg.skip}
		w.walk(".", yield)
	}
}

// Collect drains a traversal into a slice, stopping at the first error.
func Collect(seq iter.Seq2[Dir, error]) ([]Dir, error) {
	var dirs []Dir
	for d, err := range seq {
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

type walker struct {
	fsys   fs.FS
	order  Order
	logger *slog.Logger
	skip   func(path string) bool
}

// walk yields dir and then its subtrees. It returns false once iteration
// must stop, either because yield asked to or because an error was yielded.
func (w *walker) walk(dir string, yield func(Dir, error) bool) bool {
	d, err := w.readDir(dir)
	if err != nil {
		yield(Dir{}, err)
		return false
	}
	if !yield(d, nil) {
		return false
	}
	for _, name := range d.Dirs {
		if !w.walk(pathutil.Join(dir, name), yield) {
			return false
		}
	}
	return true
}

// readDir lists dir and applies the ordering policy for its position in the tree.
func (w *walker) readDir(dir string) (Dir, error) {
	entries, err := fs.ReadDir(w.fsys, dir)
	if err != nil {
		return Dir{}, classify("read directory", dir, err)
	}

	var dirs, files []string
	skipped := 0
	for _, e := range entries {
		name := e.Name()
		path := pathutil.Join(dir, name)
		if w.skip != nil && w.skip(path) {
			w.logger.Debug("skipped excluded entry", "path", path)
			skipped++
			continue
		}
		typ := e.Type()
		switch {
		case typ.IsDir():
			dirs = append(dirs, name)
		case typ.IsRegular():
			files = append(files, name)
		case typ&fs.ModeSymlink != 0:
			info, err := fs.Stat(w.fsys, path)
			if err != nil {
				return Dir{}, classify("resolve symlink", path, err)
			}
			switch {
			case info.Mode().IsRegular():
				files = append(files, name)
			case info.IsDir():
				w.logger.Debug("skipped directory symlink", "path", path)
				skipped++
			default:
				w.logger.Debug("skipped special file", "path", path, "mode", info.Mode().String())
				skipped++
			}
		default:
			w.logger.Debug("skipped special file", "path", path, "mode", typ.String())
			skipped++
		}
	}

	inRootMetadataDir := pathutil.IsRootChild(dir) && w.order.IsMetadataDir(dir)
	return Dir{
		Path:    dir,
		Dirs:    w.order.SortDirs(dirs, dir == "."),
		Files:   w.order.SortFiles(files, inRootMetadataDir),
		Skipped: skipped,
	}, nil
}

// openRoot opens root for confined access, classifying failures.
func openRoot(op, root string) (*os.Root, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, classify(op, root, err)
	}
	if !info.IsDir() {
		return nil, &PathError{Op: op, Path: root, Kind: ErrInvalidRoot, Err: errNotDir}
	}
	r, err := os.OpenRoot(root)
	if err != nil {
		return nil, classify(op, root, err)
	}
	return r, nil
}
