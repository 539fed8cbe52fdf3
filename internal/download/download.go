// SPDX-License-Identifier: MPL-2.0

package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/cdda-tools/cdda-updater/internal/releases"
)

const (
	// chunkSize is the read size between progress updates.
	chunkSize = 32 << 10

	// partSuffix marks an archive that is still being written.
	partSuffix = ".part"
)

var (
	// ErrMissingContentLength is returned when the asset host does not
	// advertise the archive size.
	ErrMissingContentLength = errors.New("response has no Content-Length")

	// ErrShortDownload is returned when the stream ends before the advertised
	// number of bytes was received.
	ErrShortDownload = errors.New("download ended early")

	// ErrInvalidAssetName is returned for asset names that are not plain file names.
	ErrInvalidAssetName = errors.New("invalid asset file name")
)

type (
	// Source opens asset downloads. *releases.Client implements it.
	Source interface {
		DownloadAsset(ctx context.Context, url string) (*releases.AssetStream, error)
	}

	// Progress receives the cumulative byte count after every chunk.
	Progress interface {
		Update(downloaded, total int64)
		Done()
	}

	// Result describes where a fetched archive lives.
	Result struct {
		Path   string // Absolute or dir-relative path of the archive
		Size   int64  // Archive size in bytes
		Cached bool   // True when the archive was already present and no request was made
	}

	// InsufficientSpaceError is returned when the download directory's
	// filesystem cannot hold the archive.
	InsufficientSpaceError struct {
		Dir       string
		Required  uint64
		Available uint64
	}

	// Downloader fetches assets into a cache directory.
	Downloader struct {
		source    Source
		dir       string
		logger    *log.Logger
		progress  Progress
		freeSpace func(ctx context.Context, dir string) (uint64, error)
	}

	// Option configures a Downloader during construction.
	Option func(*Downloader)

	nopProgress struct{}
)

// Error implements the error interface.
func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("not enough free space in %s: need %s, have %s",
		e.Dir, FormatMB(int64(e.Required)), FormatMB(int64(e.Available))) //nolint:gosec // Sizes fit in int64.
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithProgress sets the sink that receives progress updates.
func WithProgress(p Progress) Option {
	return func(d *Downloader) {
		if p != nil {
			d.progress = p
		}
	}
}

// New creates a Downloader that stores archives in dir.
func New(source Source, dir string, opts ...Option) *Downloader {
	d := &Downloader{
		source:    source,
		dir:       dir,
		logger:    log.New(io.Discard),
		progress:  nopProgress{},
		freeSpace: diskFree,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dir returns the cache directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Fetch makes asset available in the cache directory and returns its path.
// An existing file with the asset's name is returned as is.
func (d *Downloader) Fetch(ctx context.Context, asset releases.Asset) (*Result, error) {
	name, err := fileName(asset.Name)
	if err != nil {
		return nil, err
	}
	dest := filepath.Join(d.dir, name)

	if info, statErr := os.Stat(dest); statErr == nil && info.Mode().IsRegular() {
		d.logger.Debug("using cached archive", "path", dest, "size", info.Size())
		return &Result{Path: dest, Size: info.Size(), Cached: true}, nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}

	d.logger.Debug("downloading asset", "url", asset.BrowserDownloadURL, "dest", dest)
	stream, err := d.source.DownloadAsset(ctx, asset.BrowserDownloadURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Body.Close() }() // read-only HTTP response body

	if stream.Size < 0 {
		return nil, fmt.Errorf("downloading %s: %w", name, ErrMissingContentLength)
	}

	if err := d.checkSpace(ctx, uint64(stream.Size)); err != nil {
		return nil, err
	}

	if err := d.writePart(ctx, stream, dest); err != nil {
		return nil, fmt.Errorf("downloading %s: %w", name, err)
	}

	return &Result{Path: dest, Size: stream.Size}, nil
}

// checkSpace fails with InsufficientSpaceError when the download directory
// has less than required bytes free. A failing usage query is only logged.
func (d *Downloader) checkSpace(ctx context.Context, required uint64) error {
	free, err := d.freeSpace(ctx, d.dir)
	if err != nil {
		d.logger.Warn("could not determine free disk space", "dir", d.dir, "error", err)
		return nil
	}
	if free < required {
		return &InsufficientSpaceError{Dir: d.dir, Required: required, Available: free}
	}
	return nil
}

// writePart streams the body into dest+".part" and renames it to dest once
// the advertised size has been written.
func (d *Downloader) writePart(ctx context.Context, stream *releases.AssetStream, dest string) (err error) {
	partPath := dest + partSuffix

	f, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", partPath, err)
	}
	defer func() {
		if err != nil {
			// Best-effort removal of the partial archive.
			_ = os.Remove(partPath)
		}
	}()

	written, copyErr := d.copyWithProgress(ctx, f, stream.Body, stream.Size)
	closeErr := f.Close()
	d.progress.Done()

	switch {
	case copyErr != nil:
		return copyErr
	case closeErr != nil:
		return fmt.Errorf("closing %s: %w", partPath, closeErr)
	case written != stream.Size:
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortDownload, written, stream.Size)
	}

	if err := os.Rename(partPath, dest); err != nil {
		return fmt.Errorf("finalizing %s: %w", dest, err)
	}
	return nil
}

func (d *Downloader) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("writing archive: %w", err)
			}
			written += int64(n)
			d.progress.Update(written, total)
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("reading response: %w", readErr)
		}
	}
}

// fileName validates that name can be used as a file in the cache directory.
func fileName(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return name, nil
}

func diskFree(ctx context.Context, dir string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("querying disk usage: %w", err)
	}
	return usage.Free, nil
}

func (nopProgress) Update(int64, int64) {}

func (nopProgress) Done() {}
