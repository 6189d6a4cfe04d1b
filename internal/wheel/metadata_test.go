package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wheelFile = `Wheel-Version: 1.0
Generator: setuptools (75.1.0)
Root-Is-Purelib: false
Tag: py3-none-linux_x86_64
Build: 2
`

func TestParseHeaders(t *testing.T) {
	t.Parallel()

	h := ParseHeaders([]byte("Name: mpich\nVersion: 4.2.0\nClassifier: A\nClassifier: B\n  continued\n\nBody: ignored\n"))
	assert.Equal(t, "mpich", h.Get("name"))
	assert.Equal(t, "4.2.0", h.Get("Version"))
	assert.Equal(t, []string{"A", "B"}, h.Values("Classifier"))
	assert.Empty(t, h.Get("Body"))
}

func TestTags(t *testing.T) {
	t.Parallel()

	tags, err := Tags([]byte(wheelFile))
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Python: "py3", ABI: "none", Platform: "linux_x86_64"}}, tags)

	_, err = Tags([]byte("Tag: py3-none\n"))
	require.Error(t, err)
}

func TestRewritePlatforms(t *testing.T) {
	t.Parallel()

	got, err := RewritePlatforms([]byte(wheelFile), []string{"manylinux_2_17_x86_64", "linux_x86_64"})
	require.NoError(t, err)
	assert.Equal(t, `Wheel-Version: 1.0
Generator: setuptools (75.1.0)
Root-Is-Purelib: false
Tag: py3-none-linux_x86_64
Tag: py3-none-manylinux_2_17_x86_64
Build: 2
`, string(got))
}

func TestRewritePlatformsMultiplePairs(t *testing.T) {
	t.Parallel()

	in := "Wheel-Version: 1.0\nTag: py2-none-any\nTag: py3-none-any\nTag: py3-none-win32\n"
	got, err := RewritePlatforms([]byte(in), []string{"linux_aarch64"})
	require.NoError(t, err)
	assert.Equal(t, "Wheel-Version: 1.0\nTag: py2-none-linux_aarch64\nTag: py3-none-linux_aarch64\n", string(got))
}

func TestRewritePlatformsNoTags(t *testing.T) {
	t.Parallel()

	_, err := RewritePlatforms([]byte("Wheel-Version: 1.0\n"), []string{"any"})
	require.Error(t, err)
}

func TestFilenameFromMetadata(t *testing.T) {
	t.Parallel()

	f, err := FilenameFromMetadata([]byte("Metadata-Version: 2.4\nName: mpich\nVersion: 4.2.0\n"), []byte(wheelFile))
	require.NoError(t, err)
	assert.Equal(t, "mpich-4.2.0-2-py3-none-linux_x86_64.whl", f.String())

	_, err = FilenameFromMetadata([]byte("Name: mpich\n"), []byte(wheelFile))
	require.Error(t, err)
}
