// Package testutil provides helpers shared by wheelpack tests.
package testutil

import (
	"bytes"
	"io"
	"io/fs"
	"maps"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// WriteTree creates files under dir from a map of slash-separated paths to
// contents. Keys ending in "/" create empty directories.
func WriteTree(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				tb.Fatalf("mkdir %s: %v", name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", filepath.Dir(name), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
}

// SetTreeTimes sets the modification time of every file and directory
// under dir, including dir itself.
func SetTreeTimes(tb testing.TB, dir string, t time.Time) {
	tb.Helper()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Chtimes(path, t, t)
	})
	if err != nil {
		tb.Fatalf("set tree times: %v", err)
	}
}

// ShuffledFS wraps an fs.FS and reports directory entries in a random order.
// It stands in for filesystems whose enumeration order differs between hosts.
type ShuffledFS struct {
	FS   fs.FS
	Rand *rand.Rand
}

// NewShuffledFS returns a ShuffledFS whose shuffles are driven by seed.
func NewShuffledFS(fsys fs.FS, seed uint64) *ShuffledFS {
	return &ShuffledFS{FS: fsys, Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Open implements fs.FS.
func (s *ShuffledFS) Open(name string) (fs.File, error) {
	return s.FS.Open(name)
}

// Stat implements fs.StatFS.
func (s *ShuffledFS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(s.FS, name)
}

// ReadDir implements fs.ReadDirFS, returning entries in shuffled order.
func (s *ShuffledFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(s.FS, name)
	if err != nil {
		return nil, err
	}
	s.Rand.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
	return entries, nil
}

// ZipEntry is a decoded archive member.
type ZipEntry struct {
	Name     string
	Modified time.Time
	Method   uint16
	Mode     fs.FileMode
	Content  []byte
}

// ReadZip decodes every member of a ZIP archive in stored order.
func ReadZip(tb testing.TB, data []byte) []ZipEntry {
	tb.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		tb.Fatalf("open zip: %v", err)
	}
	entries := make([]ZipEntry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			tb.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			tb.Fatalf("read %s: %v", f.Name, err)
		}
		entries = append(entries, ZipEntry{
			Name:     f.Name,
			Modified: f.Modified,
			Method:   f.Method,
			Mode:     f.Mode(),
			Content:  content,
		})
	}
	return entries
}

// ReadZipFile reads and decodes the archive at path.
func ReadZipFile(tb testing.TB, path string) []ZipEntry {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read %s: %v", path, err)
	}
	return ReadZip(tb, data)
}

// Names returns the member names of entries in order.
func Names(entries []ZipEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// WriteZip writes an archive to path holding files in sorted name order,
// every member stamped with modified.
func WriteZip(tb testing.TB, path string, files map[string]string, modified time.Time) {
	tb.Helper()
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range slices.Sorted(maps.Keys(files)) {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified}
		header.SetMode(0o644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			tb.Fatalf("create member %s: %v", name, err)
		}
		if _, err := io.WriteString(w, files[name]); err != nil {
			tb.Fatalf("write member %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip: %v", err)
	}
}
