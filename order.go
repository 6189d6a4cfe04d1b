package wheelpack

import (
	"slices"
	"strings"
)

const (
	// DefaultMetadataSuffix identifies root-level metadata directories.
	DefaultMetadataSuffix = ".dist-info"

	// DefaultManifest is the file listed last inside a root-level metadata directory.
	DefaultManifest = "RECORD"
)

// Order is the ordering policy applied at every directory level of a walk.
//
// Names are always sorted lexicographically by byte value. Directories
// whose name ends in MetadataSuffix are grouped after all other directories,
// but only at the walk root. Manifest is moved to the end of the file list,
// but only inside a root-level metadata directory. Empty fields disable the
// respective rule.
type Order struct {
	MetadataSuffix string
	Manifest       string
}

// DefaultOrder returns the wheel ordering: ".dist-info" directories last,
// "RECORD" last within them.
func DefaultOrder() Order {
	return Order{
		MetadataSuffix: DefaultMetadataSuffix,
		Manifest:       DefaultManifest,
	}
}

// IsMetadataDir reports whether name carries the metadata directory suffix.
func (o Order) IsMetadataDir(name string) bool {
	return o.MetadataSuffix != "" && strings.HasSuffix(name, o.MetadataSuffix)
}

// SortDirs returns child directory names in traversal order. The input
// slice is not modified.
func (o Order) SortDirs(names []string, atRoot bool) []string {
	if !atRoot || o.MetadataSuffix == "" {
		return sorted(names)
	}
	regular := make([]string, 0, len(names))
	var metadata []string
	for _, name := range names {
		if o.IsMetadataDir(name) {
			metadata = append(metadata, name)
		} else {
			regular = append(regular, name)
		}
	}
	slices.Sort(regular)
	slices.Sort(metadata)
	return append(regular, metadata...)
}

// SortFiles returns file names in traversal order. The input slice is not
// modified.
func (o Order) SortFiles(names []string, inRootMetadataDir bool) []string {
	out := sorted(names)
	if !inRootMetadataDir || o.Manifest == "" {
		return out
	}
	i := slices.Index(out, o.Manifest)
	if i < 0 {
		return out
	}
	out = slices.Delete(out, i, i+1)
	return append(out, o.Manifest)
}

func sorted(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return out
}
