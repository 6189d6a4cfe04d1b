package wheelpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderSortDirs(t *testing.T) {
	t.Parallel()

	o := DefaultOrder()
	tests := []struct {
		name   string
		input  []string
		atRoot bool
		want   []string
	}{
		{"root groups metadata last", []string{"b", "a", "pkg.dist-info"}, true, []string{"a", "b", "pkg.dist-info"}},
		{"multiple metadata dirs", []string{"z.dist-info", "a", "m.dist-info"}, true, []string{"a", "m.dist-info", "z.dist-info"}},
		{"metadata sorts first lexically", []string{"zlib", "a.dist-info", "bin"}, true, []string{"bin", "zlib", "a.dist-info"}},
		{"non-root is plain lexical", []string{"zlib", "a.dist-info", "bin"}, false, []string{"a.dist-info", "bin", "zlib"}},
		{"byte order puts upper case first", []string{"b", "B", "a", "A"}, false, []string{"A", "B", "a", "b"}},
		{"empty", nil, true, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := o.SortDirs(tt.input, tt.atRoot)
			assert.Equal(t, len(tt.want), len(got))
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOrderSortDirsDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := []string{"b.dist-info", "c", "a"}
	_ = DefaultOrder().SortDirs(input, true)
	assert.Equal(t, []string{"b.dist-info", "c", "a"}, input)
}

func TestOrderSortFiles(t *testing.T) {
	t.Parallel()

	o := DefaultOrder()
	tests := []struct {
		name     string
		input    []string
		metadata bool
		want     []string
	}{
		{"plain lexical", []string{"x.txt", "a.txt"}, false, []string{"a.txt", "x.txt"}},
		{"manifest last", []string{"METADATA", "RECORD", "WHEEL"}, true, []string{"METADATA", "WHEEL", "RECORD"}},
		{"manifest absent", []string{"WHEEL", "METADATA"}, true, []string{"METADATA", "WHEEL"}},
		{"manifest untouched outside metadata dir", []string{"RECORD", "WHEEL", "METADATA"}, false, []string{"METADATA", "RECORD", "WHEEL"}},
		{"only manifest", []string{"RECORD"}, true, []string{"RECORD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, o.SortFiles(tt.input, tt.metadata))
		})
	}
}

func TestOrderDisabledRules(t *testing.T) {
	t.Parallel()

	var o Order
	assert.Equal(t, []string{"a", "b.dist-info", "c"}, o.SortDirs([]string{"c", "b.dist-info", "a"}, true))
	assert.Equal(t, []string{"METADATA", "RECORD", "WHEEL"}, o.SortFiles([]string{"WHEEL", "RECORD", "METADATA"}, true))
	assert.False(t, o.IsMetadataDir("pkg.dist-info"))
}

func TestOrderCustomSuffix(t *testing.T) {
	t.Parallel()

	o := Order{MetadataSuffix: ".egg-info", Manifest: "SOURCES.txt"}
	assert.Equal(t, []string{"a", "pkg.dist-info", "pkg.egg-info"}, o.SortDirs([]string{"pkg.egg-info", "pkg.dist-info", "a"}, true))
	assert.Equal(t, []string{"PKG-INFO", "top_level.txt", "SOURCES.txt"}, o.SortFiles([]string{"SOURCES.txt", "top_level.txt", "PKG-INFO"}, true))
}
