//go:build !unix

package platform

import "io/fs"

// NormalizeMode returns 0o644 for every file. Execute bits are not tracked
// on non-Unix systems.
func NormalizeMode(fs.FileMode) fs.FileMode {
	return 0o644
}
