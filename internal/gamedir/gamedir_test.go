// SPDX-License-Identifier: MPL-2.0

package gamedir

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeVersion(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, VersionFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "simple",
			content: "build number: 12345\n",
			want:    "12345",
		},
		{
			name:    "real file layout",
			content: "build type: windows-tiles-sounds-x64\nbuild number: 2024-05-01-0123\ncommit sha: abc\ncommit url: https://github.com/CleverRaven/Cataclysm-DDA/commit/abc\n",
			want:    "2024-05-01-0123",
		},
		{
			name:    "crlf line endings",
			content: "build number:  99 \r\nother: x\r\n",
			want:    "99",
		},
		{
			name:    "text after last colon",
			content: "build number: a:b:c\n",
			want:    "c",
		},
		{
			name:    "first matching line wins",
			content: "build number: 1\nbuild number: 2\n",
			want:    "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeVersion(t, dir, tt.content)

			got, err := BuildNumber(dir)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildNumber_MissingFile(t *testing.T) {
	t.Parallel()

	got, err := BuildNumber(filepath.Join(t.TempDir(), "game"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("BuildNumber() = %q, want empty", got)
	}
}

func TestBuildNumber_NoBuildLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVersion(t, dir, "build type: linux\n  build number: indented lines do not count\n")

	_, err := BuildNumber(dir)
	if !errors.Is(err, ErrBuildNumberMissing) {
		t.Fatalf("expected ErrBuildNumberMissing, got %v", err)
	}
}

func TestClearCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, p := range []string{"cache/world", "data/json", "save/keep", "config"} {
		if err := os.MkdirAll(filepath.Join(dir, p), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "data", "json", "items.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := ClearCache(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(removed, []string{"cache", "data"}) {
		t.Errorf("removed = %v, want [cache data]", removed)
	}

	for _, gone := range []string{"cache", "data", "gfx"} {
		if _, err := os.Stat(filepath.Join(dir, gone)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s still exists", gone)
		}
	}
	for _, kept := range []string{"save/keep", "config"} {
		if _, err := os.Stat(filepath.Join(dir, kept)); err != nil {
			t.Errorf("%s was removed: %v", kept, err)
		}
	}
}

func TestClearCache_NothingToRemove(t *testing.T) {
	t.Parallel()

	removed, err := ClearCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("removed = %v, want none", removed)
	}
}

func TestReceipt_WriteAndRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	got, err := ReadReceipt(dir)
	if err != nil || got != nil {
		t.Fatalf("ReadReceipt() on empty dir = %v, %v", got, err)
	}

	want := Receipt{
		Release:     "Cataclysm-DDA experimental build 2024-05-01-0123",
		Build:       "2024-05-01-0123",
		Asset:       "cdda-linux-terminal-only-x64-2024-05-01-0123.tar.gz",
		PublishedAt: time.Date(2024, 5, 1, 1, 23, 0, 0, time.UTC),
		InstalledAt: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
	}
	if err := WriteReceipt(dir, want); err != nil {
		t.Fatalf("WriteReceipt() error: %v", err)
	}

	got, err = ReadReceipt(dir)
	if err != nil {
		t.Fatalf("ReadReceipt() error: %v", err)
	}
	if got.Release != want.Release || got.Build != want.Build || got.Asset != want.Asset {
		t.Errorf("ReadReceipt() = %+v, want %+v", got, want)
	}
	if !got.PublishedAt.Equal(want.PublishedAt) || !got.InstalledAt.Equal(want.InstalledAt) {
		t.Errorf("timestamps = %v/%v, want %v/%v", got.PublishedAt, got.InstalledAt, want.PublishedAt, want.InstalledAt)
	}
}

func TestReadReceipt_Corrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ReceiptFile), []byte("release = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadReceipt(dir); err == nil {
		t.Error("expected a decoding error")
	}
}
