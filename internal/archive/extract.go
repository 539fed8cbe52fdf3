// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/cdda-tools/cdda-updater/pkg/platform"
)

const (
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// ErrUnsafePath is returned for entries that would be written outside the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Extract unpacks the archive at src into dest, creating dest if needed.
// Existing files are overwritten. The format is chosen by DetectFormat.
func Extract(ctx context.Context, src, dest string) error {
	format := DetectFormat(src)
	if format == FormatUnsupported {
		return &UnsupportedFormatError{Name: filepath.Base(src)}
	}

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolving destination: %w", err)
	}
	if err := os.MkdirAll(absDest, defaultDirMode); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	switch format {
	case FormatZip:
		err = extractZip(ctx, src, absDest)
	case FormatTarGz:
		err = extractTarGz(ctx, src, absDest)
	case FormatUnsupported:
	}
	if err != nil {
		return fmt.Errorf("extracting %s: %w", filepath.Base(src), err)
	}
	return nil
}

func extractZip(ctx context.Context, src, dest string) (err error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer func() {
		if closeErr := zr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := resolve(dest, file.Name)
		if err != nil {
			return err
		}

		mode := file.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, dirMode(mode)); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
		case mode.IsRegular():
			if err := writeZipFile(file, target); err != nil {
				return fmt.Errorf("writing %s: %w", file.Name, err)
			}
		}
	}

	return nil
}

func writeZipFile(file *zip.File, target string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return writeFile(target, rc, file.Mode())
}

func extractTarGz(ctx context.Context, src, dest string) (err error) {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = f.Close() }() // read-only file handle

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			return nil
		}
		if errors.Is(nextErr, tar.ErrInsecurePath) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
		}
		if nextErr != nil {
			return fmt.Errorf("reading tar entry: %w", nextErr)
		}

		target, err := resolve(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode(hdr.FileInfo().Mode())); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return fmt.Errorf("writing %s: %w", hdr.Name, err)
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dest, target, hdr.Linkname); err != nil {
				return fmt.Errorf("linking %s: %w", hdr.Name, err)
			}
		}
	}
}

// resolve joins an archive entry name onto dest, rejecting absolute names
// and names that climb out of dest.
func resolve(dest, name string) (string, error) {
	return resolveOn(runtime.GOOS, dest, name)
}

// resolveOn is resolve for the given GOOS. On Windows, entries naming a
// device such as NUL or COM1 are rejected too.
func resolveOn(goos, dest, name string) (string, error) {
	if goos == platform.Windows && platform.HasWindowsReservedElement(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}

	local := filepath.FromSlash(name)
	if filepath.IsAbs(local) || filepath.VolumeName(local) != "" || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}

	target := filepath.Join(dest, local)
	if !within(dest, target) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func within(dest, target string) bool {
	rel, err := filepath.Rel(dest, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeFile(target string, r io.Reader, mode fs.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	// Never write through a symlink left by an earlier install.
	if info, statErr := os.Lstat(target); statErr == nil && info.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return err
		}
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = defaultFileMode
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // G110: archives come from the configured release feed.
	if _, err := io.Copy(out, r); err != nil {
		return err
	}
	return out.Chmod(perm)
}

func writeSymlink(dest, target, linkname string) error {
	if filepath.IsAbs(linkname) || !within(dest, filepath.Join(filepath.Dir(target), filepath.FromSlash(linkname))) {
		return fmt.Errorf("%w: link to %s", ErrUnsafePath, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Symlink(linkname, target)
}

func dirMode(mode fs.FileMode) fs.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm
	}
	return defaultDirMode
}
