// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"fmt"
	"strings"
)

// Format identifies an archive container.
type Format int

const (
	// FormatUnsupported is any file name without a known archive extension.
	FormatUnsupported Format = iota
	// FormatZip is a zip archive (".zip").
	FormatZip
	// FormatTarGz is a gzip-compressed tarball (".tar.gz", ".tgz", ".gz").
	FormatTarGz
)

// UnsupportedFormatError is returned by Extract for archives whose format
// cannot be determined from the file name.
type UnsupportedFormatError struct {
	Name string
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported archive format: %s (expected .zip, .tar.gz or .tgz)", e.Name)
}

// DetectFormat infers the archive format from name's extension.
func DetectFormat(name string) Format {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"), strings.HasSuffix(lower, ".gz"):
		return FormatTarGz
	default:
		return FormatUnsupported
	}
}

// String returns a short human-readable name.
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarGz:
		return "tar.gz"
	case FormatUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}
