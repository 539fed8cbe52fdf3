// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"runtime"
	"strconv"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// Host identifies an operating system and the native word size of the
// running binary.
type Host struct {
	OS       string // runtime.GOOS value, e.g. "linux"
	WordSize int    // 32 or 64
}

// Current returns the Host the process is running on.
func Current() Host {
	return Host{OS: runtime.GOOS, WordSize: strconv.IntSize}
}

// Is64Bit reports whether the host uses 64-bit words.
func (h Host) Is64Bit() bool { return h.WordSize == 64 }

// IsWindows reports whether the host runs Windows.
func (h Host) IsWindows() bool { return h.OS == Windows }

// IsDarwin reports whether the host runs macOS.
func (h Host) IsDarwin() bool { return h.OS == Darwin }

// String returns "os/bits", e.g. "linux/64".
func (h Host) String() string {
	return h.OS + "/" + strconv.Itoa(h.WordSize)
}
