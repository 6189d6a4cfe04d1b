package write

import (
	"fmt"
	"io/fs"
)

// CheckFileUnchanged verifies a file wasn't modified while it was archived.
// In strict mode, it compares size, mtime, and permissions before/after.
func CheckFileUnchanged(f fs.File, path string, before fs.FileInfo, strict bool) error {
	if !strict {
		return nil
	}
	after, err := f.Stat()
	if err != nil {
		return err
	}
	if after.Size() != before.Size() || !after.ModTime().Equal(before.ModTime()) || after.Mode().Perm() != before.Mode().Perm() {
		return fmt.Errorf("file changed during archive creation: %s", path)
	}
	return nil
}
