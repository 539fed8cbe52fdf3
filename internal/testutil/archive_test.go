// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

func TestZipBytes(t *testing.T) {
	t.Parallel()

	data, err := ZipBytes(ReleaseEntries("2024-05-01-0100"))
	if err != nil {
		t.Fatalf("ZipBytes() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}

	names := map[string]*zip.File{}
	for _, f := range zr.File {
		names[f.Name] = f
	}
	if len(names) != 5 {
		t.Fatalf("archive has %d entries, want 5", len(names))
	}
	if !names["data/"].FileInfo().IsDir() {
		t.Error("data/ should be a directory entry")
	}
	if got := names["cataclysm-tiles"].Mode().Perm(); got != 0o755 {
		t.Errorf("cataclysm-tiles mode = %v, want 0755", got)
	}

	rc, err := names["VERSION.txt"].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(body, []byte("build number: 2024-05-01-0100\n")) {
		t.Errorf("VERSION.txt = %q, want build number line", body)
	}
}

func TestTarGzBytes(t *testing.T) {
	t.Parallel()

	data, err := TarGzBytes([]Entry{
		{Name: "data/", Dir: true, Mode: 0o755},
		{Name: "VERSION.txt", Body: "build number: 7\n", Mode: 0o644},
		{Name: "link", Linkname: "VERSION.txt"},
	})
	if err != nil {
		t.Fatalf("TarGzBytes() error = %v", err)
	}

	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gr)

	want := []struct {
		name string
		typ  byte
	}{
		{"data/", tar.TypeDir},
		{"VERSION.txt", tar.TypeReg},
		{"link", tar.TypeSymlink},
	}
	for _, w := range want {
		hdr, err := tr.Next()
		if err != nil {
			t.Fatalf("reading header for %s: %v", w.name, err)
		}
		if hdr.Name != w.name || hdr.Typeflag != w.typ {
			t.Errorf("entry = %s (%c), want %s (%c)", hdr.Name, hdr.Typeflag, w.name, w.typ)
		}
	}
	if _, err := tr.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF after last entry, got %v", err)
	}
}

func TestWriteZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "build.zip")
	WriteZip(t, path, []Entry{{Name: "a.txt", Body: "a"}})

	data, err := ZipBytes([]Entry{{Name: "a.txt", Body: "a"}})
	if err != nil {
		t.Fatal(err)
	}
	AssertFile(t, path, string(data))
}
