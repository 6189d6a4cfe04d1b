package wheel

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"strconv"

	"github.com/meigma/wheelpack"
	"github.com/meigma/wheelpack/internal/pathutil"
)

// RecordName is the manifest file name inside the .dist-info directory.
const RecordName = wheelpack.DefaultManifest

// DistInfoDir returns the single root-level metadata directory listed in root.
func DistInfoDir(root wheelpack.Dir) (string, error) {
	order := wheelpack.DefaultOrder()
	var found []string
	for _, name := range root.Dirs {
		if order.IsMetadataDir(name) {
			found = append(found, name)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("wheel: no %s directory at the wheel root", wheelpack.DefaultMetadataSuffix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("wheel: multiple %s directories at the wheel root: %v", wheelpack.DefaultMetadataSuffix, found)
	}
}

// BuildRecord computes RECORD contents for the files enumerated by dirs.
//
// Rows follow traversal order. Each file is listed with its urlsafe base64
// sha256 digest and size; the row for recordPath itself has neither.
// Empty directories do not appear.
func BuildRecord(fsys fs.FS, dirs iter.Seq2[wheelpack.Dir, error], recordPath string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for d, err := range dirs {
		if err != nil {
			return nil, err
		}
		for _, name := range d.Files {
			path := pathutil.Join(d.Path, name)
			if path == recordPath {
				if err := w.Write([]string{path, "", ""}); err != nil {
					return nil, err
				}
				continue
			}
			hash, size, err := hashFile(fsys, path)
			if err != nil {
				return nil, fmt.Errorf("hash %s: %w", path, err)
			}
			if err := w.Write([]string{path, hash, strconv.FormatInt(size, 10)}); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// hashFile returns the RECORD hash field and size of a file.
func hashFile(fsys fs.FS, path string) (string, int64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return "sha256=" + base64.RawURLEncoding.EncodeToString(h.Sum(nil)), n, nil
}
