//go:build unix

package platform

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode fs.FileMode
		want fs.FileMode
	}{
		{0o600, 0o644},
		{0o664, 0o644},
		{0o700, 0o755},
		{0o775, 0o755},
		{0o744, 0o755},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeMode(tt.mode), "mode %o", tt.mode)
	}
}
