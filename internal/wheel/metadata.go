package wheel

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Tag is one python-abi-platform compatibility tag.
type Tag struct {
	Python   string
	ABI      string
	Platform string
}

func (t Tag) String() string {
	return t.Python + "-" + t.ABI + "-" + t.Platform
}

// ParseTag parses a "python-abi-platform" triple.
func ParseTag(s string) (Tag, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Tag{}, fmt.Errorf("wheel: invalid tag %q", s)
	}
	return Tag{Python: parts[0], ABI: parts[1], Platform: parts[2]}, nil
}

// Header is one "Key: Value" field of a WHEEL or METADATA file.
type Header struct {
	Key   string
	Value string
}

// Headers is the ordered header block of a WHEEL or METADATA file.
type Headers []Header

// ParseHeaders reads the header block of data, stopping at the first blank
// line. Continuation lines are ignored.
func ParseHeaders(data []byte) Headers {
	var h Headers
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		h = append(h, Header{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return h
}

// Get returns the first value for key, matched case-insensitively.
func (h Headers) Get(key string) string {
	for _, f := range h {
		if strings.EqualFold(f.Key, key) {
			return f.Value
		}
	}
	return ""
}

// Values returns every value for key, matched case-insensitively.
func (h Headers) Values(key string) []string {
	var out []string
	for _, f := range h {
		if strings.EqualFold(f.Key, key) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Tags parses every Tag field of a WHEEL file.
func Tags(wheelFile []byte) ([]Tag, error) {
	var tags []Tag
	for _, v := range ParseHeaders(wheelFile).Values("Tag") {
		t, err := ParseTag(v)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// RewritePlatforms replaces the platform of every Tag field in a WHEEL file.
//
// Each distinct python-abi pair is paired with every platform in plats, in
// sorted order. The new Tag lines take the place of the first existing one;
// all other lines are preserved byte for byte.
func RewritePlatforms(wheelFile []byte, plats []string) ([]byte, error) {
	tags, err := Tags(wheelFile)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("wheel: WHEEL file has no Tag fields")
	}

	type pair struct{ python, abi string }
	var pairs []pair
	seen := map[pair]bool{}
	for _, t := range tags {
		p := pair{t.Python, t.ABI}
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}

	var replacement bytes.Buffer
	for _, p := range pairs {
		for _, plat := range unique(plats) {
			fmt.Fprintf(&replacement, "Tag: %s\n", Tag{Python: p.python, ABI: p.abi, Platform: plat})
		}
	}

	var out bytes.Buffer
	written := false
	for _, line := range bytes.SplitAfter(wheelFile, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		key, _, ok := strings.Cut(string(line), ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), "Tag") {
			if !written {
				out.Write(replacement.Bytes())
				written = true
			}
			continue
		}
		out.Write(line)
	}
	return out.Bytes(), nil
}

// FilenameFromMetadata derives the canonical wheel filename from the
// METADATA and WHEEL files of an unpacked wheel.
func FilenameFromMetadata(metadata, wheelFile []byte) (Filename, error) {
	meta := ParseHeaders(metadata)
	name, version := meta.Get("Name"), meta.Get("Version")
	if name == "" || version == "" {
		return Filename{}, fmt.Errorf("wheel: METADATA lacks Name or Version")
	}
	tags, err := Tags(wheelFile)
	if err != nil {
		return Filename{}, err
	}
	if len(tags) == 0 {
		return Filename{}, fmt.Errorf("wheel: WHEEL file has no Tag fields")
	}
	f := Filename{
		Distribution: name,
		Version:      version,
		Build:        ParseHeaders(wheelFile).Get("Build"),
	}
	for _, t := range tags {
		f.Python = append(f.Python, t.Python)
		f.ABI = append(f.ABI, t.ABI)
		f.Platform = append(f.Platform, t.Platform)
	}
	f.Python, f.ABI, f.Platform = unique(f.Python), unique(f.ABI), unique(f.Platform)
	return f, nil
}
