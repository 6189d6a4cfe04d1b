package repair

import (
	"context"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/wheelpack"
	"github.com/meigma/wheelpack/internal/write"
)

// WalkFunc enumerates the tree rooted at root, one directory at a time.
type WalkFunc func(root string) iter.Seq2[wheelpack.Dir, error]

// PackFunc writes an archive of srcDir to dst.
type PackFunc func(ctx context.Context, srcDir, dst string) (*wheelpack.Result, error)

// Primitives are the traversal and archive operations the tool delegates to.
// Nil fields fall back to the matching [DefaultPrimitives] entry.
type Primitives struct {
	Walk WalkFunc
	Pack PackFunc
}

// DefaultPrimitives returns the generic primitives: a plain lexical walk and
// a packer that keeps each file's own modification time. Their output
// depends on when and where the tree was created.
func DefaultPrimitives() Primitives {
	return Primitives{
		Walk: plainWalk,
		Pack: plainPack,
	}
}

func (p Primitives) withDefaults() Primitives {
	def := DefaultPrimitives()
	if p.Walk == nil {
		p.Walk = def.Walk
	}
	if p.Pack == nil {
		p.Pack = def.Pack
	}
	return p
}

// plainWalk sorts names at every level without grouping metadata last.
func plainWalk(root string) iter.Seq2[wheelpack.Dir, error] {
	return wheelpack.Walk(root, wheelpack.WalkWithOrder(wheelpack.Order{}))
}

// plainPack archives srcDir in filepath.WalkDir order with per-file times.
func plainPack(ctx context.Context, srcDir, dst string) (res *wheelpack.Result, err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(dst)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	digester := digest.Canonical.Digester()
	cw := &write.CountingWriter{W: io.MultiWriter(f, digester.Hash())}
	zw := zip.NewWriter(cw)
	res = &wheelpack.Result{Path: dst}

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		n, err := io.Copy(w, src)
		src.Close()
		if err != nil {
			return err
		}
		res.Entries = append(res.Entries, wheelpack.Entry{
			Name:     header.Name,
			Modified: header.Modified,
			Method:   zip.Deflate,
			Mode:     header.Mode(),
			Size:     uint64(n), //nolint:gosec // io.Copy never returns a negative count
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	res.Size = cw.N
	res.Digest = digester.Digest()
	return res, nil
}
