//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
	"github.com/testcontainers/testcontainers-go/wait"
)

// --- Python Container Setup ---

const pythonImage = "python:3.12-alpine"

var (
	pythonOnce      sync.Once
	pythonContainer testcontainers.Container
	pythonErr       error
)

// getPython returns the shared CPython container, starting it if needed.
// The container is shared across all tests for performance.
func getPython(tb testing.TB) testcontainers.Container {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	pythonOnce.Do(func() {
		pythonContainer, pythonErr = startPythonContainer(context.Background())
	})

	if pythonErr != nil {
		tb.Fatalf("start python container: %v", pythonErr)
	}

	return pythonContainer
}

// startPythonContainer starts an idle CPython container.
func startPythonContainer(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:      pythonImage,
		Cmd:        []string{"sleep", "infinity"},
		WaitingFor: wait.ForExec([]string{"python3", "-c", "import zipfile"}),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start python container: %w", err)
	}

	// Note: Container cleanup is handled by testcontainers Reaper.

	return container, nil
}

// --- Python Helpers ---

// runPython copies the archive at hostPath into the container, runs script
// with the copied path as its only argument, and decodes its JSON output.
func runPython(tb testing.TB, script, hostPath string, out any) {
	tb.Helper()

	ctx := context.Background()
	container := getPython(tb)
	target := "/tmp/" + filepath.Base(filepath.Dir(hostPath)) + "-" + filepath.Base(hostPath)
	require.NoError(tb, container.CopyFileToContainer(ctx, hostPath, target, 0o644), "copy archive")

	code, reader, err := container.Exec(ctx, []string{"python3", "-c", script, target}, tcexec.Multiplexed())
	require.NoError(tb, err, "exec python")
	output, err := io.ReadAll(reader)
	require.NoError(tb, err, "read python output")
	require.Equal(tb, 0, code, "python failed: %s", output)
	require.NoError(tb, json.Unmarshal(output, out), "decode python output: %s", output)
}

// zipListing is what CPython's zipfile reports for one archive.
type zipListing struct {
	// BadMember is the first member failing its CRC check, if any.
	BadMember *string    `json:"bad"`
	Entries   []zipEntry `json:"entries"`
}

type zipEntry struct {
	Name         string `json:"name"`
	DateTime     [6]int `json:"date_time"`
	CompressType int    `json:"compress_type"`
	Mode         uint32 `json:"mode"`
	IsDir        bool   `json:"is_dir"`
}

const listScript = `
import json, sys, zipfile
with zipfile.ZipFile(sys.argv[1]) as zf:
    entries = [
        {
            "name": i.filename,
            "date_time": list(i.date_time),
            "compress_type": i.compress_type,
            "mode": i.external_attr >> 16,
            "is_dir": i.is_dir(),
        }
        for i in zf.infolist()
    ]
    print(json.dumps({"bad": zf.testzip(), "entries": entries}))
`

// recordCheck is the result of verifying a wheel's RECORD in CPython.
type recordCheck struct {
	Record   string   `json:"record"`
	Problems []string `json:"problems"`
	Missing  []string `json:"missing"`
}

const recordScript = `
import base64, csv, hashlib, io, json, sys, zipfile
with zipfile.ZipFile(sys.argv[1]) as zf:
    names = zf.namelist()
    record = next(n for n in names if n.count("/") == 1 and n.endswith(".dist-info/RECORD"))
    rows = list(csv.reader(io.TextIOWrapper(zf.open(record), encoding="utf-8")))
    problems, listed = [], set()
    for path, digest, size in rows:
        listed.add(path)
        if path == record:
            continue
        data = zf.read(path)
        want = "sha256=" + base64.urlsafe_b64encode(hashlib.sha256(data).digest()).rstrip(b"=").decode()
        if digest != want or int(size) != len(data):
            problems.append(path)
    missing = [n for n in names if not n.endswith("/") and n not in listed]
    print(json.dumps({"record": record, "problems": problems, "missing": missing}))
`

// --- Test Data Helpers ---

// createTestFiles writes test files to a directory. Keys ending in "/"
// create empty directories.
func createTestFiles(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for path, content := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(path))
		if path[len(path)-1] == '/' {
			require.NoError(tb, os.MkdirAll(fullPath, 0o755))
			continue
		}
		require.NoError(tb, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(tb, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

// --- Standard Test Fixtures ---

// unpackedWheel is an unpacked wheel with nested packages, a data
// directory, an executable script, and an empty directory.
var unpackedWheel = map[string]string{
	"mpi4py/__init__.py":             "from .MPI import *\n",
	"mpi4py/MPI.so":                  "\x7fELF\x02\x01\x01",
	"mpi4py/include/":                "",
	"mpi4py/util/pool.py":            "def map(): pass\n",
	"mpi4py-4.0.data/scripts/mpirun": "#!/bin/sh\nexec mpiexec \"$@\"\n",
	"mpi4py-4.0.dist-info/METADATA":  "Metadata-Version: 2.1\nName: mpi4py\nVersion: 4.0\n",
	"mpi4py-4.0.dist-info/WHEEL":     "Wheel-Version: 1.0\nRoot-Is-Purelib: false\nTag: cp312-cp312-any\n",
	"mpi4py-4.0.dist-info/RECORD":    "",
}
