// Package platform provides host-specific helpers for wheel packaging.
package platform

import (
	"fmt"
	"runtime"
)

var linuxArch = map[string]string{
	"386":     "i686",
	"amd64":   "x86_64",
	"arm":     "armv7l",
	"arm64":   "aarch64",
	"ppc64le": "ppc64le",
	"riscv64": "riscv64",
	"s390x":   "s390x",
}

// Tag returns the wheel platform tag of the running build platform.
func Tag() (string, error) {
	return TagFor(runtime.GOOS, runtime.GOARCH)
}

// TagFor returns the wheel platform tag for a GOOS/GOARCH pair.
func TagFor(goos, goarch string) (string, error) {
	switch goos {
	case "linux":
		if arch, ok := linuxArch[goarch]; ok {
			return "linux_" + arch, nil
		}
	case "darwin":
		switch goarch {
		case "amd64":
			return "macosx_10_9_x86_64", nil
		case "arm64":
			return "macosx_11_0_arm64", nil
		}
	case "windows":
		switch goarch {
		case "386":
			return "win32", nil
		case "amd64":
			return "win_amd64", nil
		case "arm64":
			return "win_arm64", nil
		}
	}
	return "", fmt.Errorf("no wheel platform tag for %s/%s", goos, goarch)
}
