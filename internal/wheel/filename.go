// Package wheel reads and rewrites the parts of a wheel that repacking touches:
// the archive filename, the WHEEL and METADATA headers, and the RECORD manifest.
package wheel

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Ext is the wheel file extension.
const Ext = ".whl"

// ErrInvalidFilename is returned when a name does not follow the wheel
// filename convention.
var ErrInvalidFilename = errors.New("wheel: invalid filename")

var unsafeNameChars = regexp.MustCompile(`[^\w\d.]+`)

// Filename is a parsed wheel filename:
// {distribution}-{version}(-{build})?-{python}-{abi}-{platform}.whl
//
// Each tag field holds the dot-separated components of a compressed tag set.
type Filename struct {
	Distribution string
	Version      string
	Build        string
	Python       []string
	ABI          []string
	Platform     []string
}

// ParseFilename parses the base name of a wheel file.
func ParseFilename(name string) (Filename, error) {
	stem, ok := strings.CutSuffix(name, Ext)
	if !ok {
		return Filename{}, fmt.Errorf("%w: %q lacks %s extension", ErrInvalidFilename, name, Ext)
	}
	parts := strings.Split(stem, "-")
	var f Filename
	switch len(parts) {
	case 5:
		f = Filename{Distribution: parts[0], Version: parts[1]}
	case 6:
		if parts[2] == "" || parts[2][0] < '0' || parts[2][0] > '9' {
			return Filename{}, fmt.Errorf("%w: build tag %q must start with a digit", ErrInvalidFilename, parts[2])
		}
		f = Filename{Distribution: parts[0], Version: parts[1], Build: parts[2]}
	default:
		return Filename{}, fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	n := len(parts)
	f.Python = strings.Split(parts[n-3], ".")
	f.ABI = strings.Split(parts[n-2], ".")
	f.Platform = strings.Split(parts[n-1], ".")
	for _, p := range parts {
		if p == "" {
			return Filename{}, fmt.Errorf("%w: %q has an empty component", ErrInvalidFilename, name)
		}
	}
	return f, nil
}

// String renders the filename with each tag set sorted and deduplicated.
func (f Filename) String() string {
	parts := []string{EscapeName(f.Distribution), EscapeVersion(f.Version)}
	if f.Build != "" {
		parts = append(parts, f.Build)
	}
	parts = append(parts, compress(f.Python), compress(f.ABI), compress(f.Platform))
	return strings.Join(parts, "-") + Ext
}

// Tags expands the compressed tag sets into every python-abi-platform triple.
func (f Filename) Tags() []Tag {
	var tags []Tag
	for _, py := range unique(f.Python) {
		for _, abi := range unique(f.ABI) {
			for _, plat := range unique(f.Platform) {
				tags = append(tags, Tag{Python: py, ABI: abi, Platform: plat})
			}
		}
	}
	return tags
}

// EscapeName converts a distribution name to its filename form.
func EscapeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// EscapeVersion converts a version to its filename form.
func EscapeVersion(version string) string {
	return strings.ReplaceAll(version, "-", "_")
}

func compress(set []string) string {
	return strings.Join(unique(set), ".")
}

func unique(set []string) []string {
	out := slices.Clone(set)
	slices.Sort(out)
	return slices.Compact(out)
}
