// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Entry describes one member of a test archive.
type Entry struct {
	Name     string
	Body     string
	Mode     os.FileMode
	Dir      bool
	Linkname string
}

// ReleaseEntries returns the layout of a game release archive whose
// VERSION.txt reports the given build number.
func ReleaseEntries(build string) []Entry {
	return []Entry{
		{Name: "VERSION.txt", Body: fmt.Sprintf("build type: experimental\nbuild number: %s\ncommit sha: 0123456789abcdef\n", build), Mode: 0o644},
		{Name: "data/", Dir: true, Mode: 0o755},
		{Name: "data/json/items.json", Body: "[]", Mode: 0o644},
		{Name: "gfx/tiles.png", Body: "png", Mode: 0o644},
		{Name: "cataclysm-tiles", Body: "#!/bin/sh\n", Mode: 0o755},
	}
}

// ZipBytes encodes entries as a deflated zip archive.
func ZipBytes(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		mode := e.Mode
		if e.Dir {
			mode |= os.ModeDir
		}
		if mode == 0 {
			mode = 0o644
		}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("creating zip entry %s: %w", e.Name, err)
		}
		if e.Dir {
			continue
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			return nil, fmt.Errorf("writing zip entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// TarGzBytes encodes entries as a gzip-compressed tarball. Entries with a
// Linkname become symlinks.
func TarGzBytes(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: int64(e.Mode.Perm())}
		switch {
		case e.Dir:
			hdr.Typeflag = tar.TypeDir
		case e.Linkname != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Linkname
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("writing tar header %s: %w", e.Name, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if _, err := tw.Write([]byte(e.Body)); err != nil {
			return nil, fmt.Errorf("writing tar body %s: %w", e.Name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar writer: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteZip writes entries as a zip archive to path.
// The test fails immediately if encoding or writing fails.
func WriteZip(t testing.TB, path string, entries []Entry) {
	t.Helper()
	data, err := ZipBytes(entries)
	if err != nil {
		t.Fatal(err)
	}
	MustWriteFile(t, path, data)
}

// WriteTarGz writes entries as a gzip-compressed tarball to path.
// The test fails immediately if encoding or writing fails.
func WriteTarGz(t testing.TB, path string, entries []Entry) {
	t.Helper()
	data, err := TarGzBytes(entries)
	if err != nil {
		t.Fatal(err)
	}
	MustWriteFile(t, path, data)
}

// MustWriteFile writes data to path, creating parent directories as needed.
func MustWriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// AssertFile fails the test unless path exists with exactly want as content.
func AssertFile(t testing.TB, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(got) != want {
		t.Errorf("%s = %q, want %q", path, got, want)
	}
}
