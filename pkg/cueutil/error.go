// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize is the largest CUE file accepted (1 MiB).
const DefaultMaxFileSize int64 = 1 << 20

type (
	// Problem is one schema violation, located by its field path.
	Problem struct {
		// Path is the dotted field path, e.g. "network.timeout" or "hooks[0]".
		// Empty for problems CUE does not attach to a field, such as syntax errors.
		Path    string
		Message string
	}

	// ValidationError reports every schema violation found in one file.
	ValidationError struct {
		File     string
		Problems []Problem
	}

	// FileTooLargeError is returned by CheckFileSize.
	FileTooLargeError struct {
		File  string
		Size  int64
		Limit int64
	}
)

// Error renders "file: path: message" for a single problem and an indented
// list otherwise.
func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return e.File + ": " + e.Problems[0].String()
	}
	var b strings.Builder
	b.WriteString(e.File)
	b.WriteString(": validation failed:")
	for _, p := range e.Problems {
		b.WriteString("\n  ")
		b.WriteString(p.String())
	}
	return b.String()
}

// Paths lists the field paths of all located problems.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Path != "" {
			paths = append(paths, p.Path)
		}
	}
	return paths
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.File, e.Size, e.Limit)
}

// FormatError converts a CUE error into a *ValidationError naming each
// offending field. Errors that carry no CUE detail are wrapped with the file
// name instead.
//
//	config.cue: network.timeout: invalid value "soon"
//	config.cue: game.sounds: conflicting values true and "yes"
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	verr := &ValidationError{File: filePath}
	for _, e := range cueErrors {
		path := formatPath(errors.Path(e))
		msg := e.Error()
		if path != "" {
			if rest, ok := strings.CutPrefix(msg, path); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			}
		}
		verr.Problems = append(verr.Problems, Problem{Path: path, Message: msg})
	}
	return verr
}

// formatPath converts a CUE error path such as ["hooks", "0", "script"] to
// "hooks[0].script". A leading numeric element stays a field name.
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// CheckFileSize returns a *FileTooLargeError when data exceeds maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return &FileTooLargeError{File: filename, Size: size, Limit: maxSize}
	}
	return nil
}
