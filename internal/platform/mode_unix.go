//go:build unix

package platform

import "io/fs"

// NormalizeMode maps a file mode to 0o755 when any execute bit is set and
// 0o644 otherwise, discarding umask-dependent group and other bits.
func NormalizeMode(mode fs.FileMode) fs.FileMode {
	if mode&0o111 != 0 {
		return 0o755
	}
	return 0o644
}
