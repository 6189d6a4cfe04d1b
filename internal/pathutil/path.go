// Package pathutil provides path manipulation for slash-separated archive paths.
package pathutil

import "strings"

// Join appends name to the walk-relative directory dir.
// The walk root "." contributes no prefix.
func Join(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return dir + "/" + name
}

// IsRootChild reports whether path names an immediate child of the walk root.
func IsRootChild(path string) bool {
	if path == "" || path == "." {
		return false
	}
	return !strings.Contains(path, "/")
}

// DirMember converts a walk-relative directory path to its archive member
// name, which always carries a trailing slash.
func DirMember(path string) string {
	return strings.TrimSuffix(path, "/") + "/"
}
