//go:build integration

package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/wheelpack"
	"github.com/meigma/wheelpack/internal/testutil"
	"github.com/meigma/wheelpack/repair"
	"github.com/meigma/wheelpack/shim"
)

var packTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func packTree(t *testing.T, files map[string]string, dst string, opts ...wheelpack.PackOption) *wheelpack.Result {
	t.Helper()
	src := filepath.Join(t.TempDir(), "tree")
	createTestFiles(t, src, files)
	res, err := wheelpack.Pack(context.Background(), src, dst, opts...)
	require.NoError(t, err)
	return res
}

func TestCPythonReadsPackedArchive(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "mpi4py-4.0-cp312-cp312-any.whl")
	res := packTree(t, unpackedWheel, dst, wheelpack.PackWithTimestamp(packTime))

	var listing zipListing
	runPython(t, listScript, dst, &listing)
	require.Nil(t, listing.BadMember, "CRC check")

	ours := testutil.ReadZipFile(t, dst)
	require.Len(t, listing.Entries, len(ours))
	require.Len(t, res.Entries, len(ours))
	for i, got := range listing.Entries {
		want := ours[i]
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, [6]int{2024, 3, 1, 12, 0, 0}, got.DateTime, got.Name)
		assert.Equal(t, uint32(want.Mode.Perm()), got.Mode&0o777, got.Name)
		if strings.HasSuffix(got.Name, "/") {
			assert.True(t, got.IsDir, got.Name)
			assert.Equal(t, 0, got.CompressType, "%s stored", got.Name)
		} else {
			assert.Equal(t, 8, got.CompressType, "%s deflated", got.Name)
		}
	}

	names := make([]string, len(listing.Entries))
	for i, e := range listing.Entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{
		"mpi4py/MPI.so",
		"mpi4py/__init__.py",
		"mpi4py/include/",
		"mpi4py/util/pool.py",
		"mpi4py-4.0.data/scripts/mpirun",
		"mpi4py-4.0.dist-info/METADATA",
		"mpi4py-4.0.dist-info/WHEEL",
		"mpi4py-4.0.dist-info/RECORD",
	}, names)
}

func TestCPythonSeesClampedTimestamp(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "early.zip")
	packTree(t, map[string]string{"a.txt": "a"}, dst, wheelpack.PackWithTimestamp(time.Unix(0, 0)))

	var listing zipListing
	runPython(t, listScript, dst, &listing)
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, [6]int{1980, 1, 1, 0, 0, 0}, listing.Entries[0].DateTime)
}

func TestReproducibleAcrossTreeTimes(t *testing.T) {
	t.Parallel()

	var digests []string
	var listings []zipListing
	for _, mtime := range []time.Time{packTime, packTime.Add(72 * time.Hour)} {
		src := filepath.Join(t.TempDir(), "tree")
		createTestFiles(t, src, unpackedWheel)
		testutil.SetTreeTimes(t, src, mtime)

		dst := filepath.Join(t.TempDir(), "out.whl")
		res, err := wheelpack.Pack(context.Background(), src, dst, wheelpack.PackWithTimestamp(packTime))
		require.NoError(t, err)
		digests = append(digests, res.Digest.String())

		var listing zipListing
		runPython(t, listScript, dst, &listing)
		listings = append(listings, listing)
	}

	assert.Equal(t, digests[0], digests[1])
	assert.Equal(t, listings[0], listings[1])
}

func TestRepairedWheelRecordVerifies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "mpi4py-4.0-cp312-cp312-any.whl")
	packTree(t, unpackedWheel, src)

	out := filepath.Join(dir, "wheelhouse")
	var stdout, stderr bytes.Buffer
	code := shim.Run(context.Background(),
		[]string{"repair", src, "-w", out, "--plat", "linux_x86_64"},
		shim.WithTimestamp(packTime),
		shim.WithOutput(&stdout, &stderr))
	require.Equal(t, repair.ExitOK, code, stderr.String())

	repaired := filepath.Join(out, "mpi4py-4.0-cp312-cp312-linux_x86_64.whl")
	require.FileExists(t, repaired)

	var check recordCheck
	runPython(t, recordScript, repaired, &check)
	assert.Equal(t, "mpi4py-4.0.dist-info/RECORD", check.Record)
	assert.Empty(t, check.Problems, "RECORD rows with wrong digest or size")
	assert.Empty(t, check.Missing, "archive members missing from RECORD")

	var listing zipListing
	runPython(t, listScript, repaired, &listing)
	require.NotEmpty(t, listing.Entries)
	assert.Equal(t, "mpi4py-4.0.dist-info/RECORD", listing.Entries[len(listing.Entries)-1].Name)
	for _, e := range listing.Entries {
		assert.Equal(t, [6]int{2024, 3, 1, 12, 0, 0}, e.DateTime, e.Name)
	}
}

func TestNormalizedModesSurviveCPython(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "tree")
	createTestFiles(t, src, map[string]string{"bin/tool": "#!/bin/sh\n", "lib/data.txt": "x"})
	require.NoError(t, os.Chmod(filepath.Join(src, "bin", "tool"), 0o700))

	dst := filepath.Join(t.TempDir(), "modes.zip")
	_, err := wheelpack.Pack(context.Background(), src, dst,
		wheelpack.PackWithTimestamp(packTime), wheelpack.PackWithNormalizedModes())
	require.NoError(t, err)

	var listing zipListing
	runPython(t, listScript, dst, &listing)
	modes := map[string]uint32{}
	for _, e := range listing.Entries {
		modes[e.Name] = e.Mode & 0o777
	}
	assert.Equal(t, map[string]uint32{"bin/tool": 0o755, "lib/data.txt": 0o644}, modes)
}
