// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// windowsReservedNames are device names Windows refuses as file names,
// regardless of extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether a single path element is a Windows
// device name such as "CON" or "nul.txt".
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(strings.TrimRight(name, " ."))
	if idx := strings.IndexByte(upper, '.'); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// HasWindowsReservedElement reports whether any slash-separated element of
// an archive entry name is a Windows device name.
func HasWindowsReservedElement(name string) bool {
	for elem := range strings.FieldsFuncSeq(name, isPathSeparator) {
		if IsWindowsReservedName(elem) {
			return true
		}
	}
	return false
}

func isPathSeparator(r rune) bool { return r == '/' || r == '\\' }
