// SPDX-License-Identifier: MPL-2.0

package download

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cdda-tools/cdda-updater/internal/releases"
)

type (
	fakeSource struct {
		body  string
		size  int64
		err   error
		calls atomic.Int32
	}

	recordingProgress struct {
		updates []int64
		total   int64
		done    bool
	}
)

func (f *fakeSource) DownloadAsset(context.Context, string) (*releases.AssetStream, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &releases.AssetStream{Body: io.NopCloser(strings.NewReader(f.body)), Size: f.size}, nil
}

func (p *recordingProgress) Update(downloaded, total int64) {
	p.updates = append(p.updates, downloaded)
	p.total = total
}

func (p *recordingProgress) Done() { p.done = true }

func plentyOfSpace(context.Context, string) (uint64, error) { return 1 << 40, nil }

func newTestDownloader(src Source, dir string, opts ...Option) *Downloader {
	d := New(src, dir, opts...)
	d.freeSpace = plentyOfSpace
	return d
}

func TestFetch_WritesArchiveAndReportsProgress(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "download")
	body := strings.Repeat("x", chunkSize*2+17)
	src := &fakeSource{body: body, size: int64(len(body))}
	progress := &recordingProgress{}

	d := newTestDownloader(src, dir, WithProgress(progress))
	res, err := d.Fetch(context.Background(), releases.Asset{Name: "cdda-linux.tar.gz", BrowserDownloadURL: "https://example.invalid/a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Cached {
		t.Error("expected a fresh download")
	}
	if res.Path != filepath.Join(dir, "cdda-linux.tar.gz") {
		t.Errorf("Path = %q", res.Path)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	if string(data) != body {
		t.Error("archive content mismatch")
	}
	if _, err := os.Stat(res.Path + partSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected .part file to be gone, stat err = %v", err)
	}

	if len(progress.updates) == 0 {
		t.Fatal("expected progress updates")
	}
	if last := progress.updates[len(progress.updates)-1]; last != int64(len(body)) {
		t.Errorf("last progress = %d, want %d", last, len(body))
	}
	for i := 1; i < len(progress.updates); i++ {
		if progress.updates[i] <= progress.updates[i-1] {
			t.Errorf("progress not increasing: %v", progress.updates)
			break
		}
	}
	if progress.total != int64(len(body)) {
		t.Errorf("total = %d, want %d", progress.total, len(body))
	}
	if !progress.done {
		t.Error("expected Done to be called")
	}
}

func TestFetch_CachedArchiveSkipsNetwork(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cached := filepath.Join(dir, "cdda-windows.zip")
	if err := os.WriteFile(cached, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{err: errors.New("network must not be used")}
	d := newTestDownloader(src, dir)

	res, err := d.Fetch(context.Background(), releases.Asset{Name: "cdda-windows.zip"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Cached || res.Path != cached || res.Size != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
	if src.calls.Load() != 0 {
		t.Errorf("expected no download calls, got %d", src.calls.Load())
	}
}

func TestFetch_PartFileIsNotACacheHit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.zip"+partSuffix), []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{body: "complete", size: 8}
	d := newTestDownloader(src, dir)

	res, err := d.Fetch(context.Background(), releases.Asset{Name: "a.zip"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cached || src.calls.Load() != 1 {
		t.Errorf("expected a network download, got %+v after %d calls", res, src.calls.Load())
	}
}

func TestFetch_MissingContentLength(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := newTestDownloader(&fakeSource{body: "data", size: -1}, dir)

	_, err := d.Fetch(context.Background(), releases.Asset{Name: "a.zip"})
	if !errors.Is(err, ErrMissingContentLength) {
		t.Fatalf("expected ErrMissingContentLength, got %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestFetch_ShortBodyLeavesNoArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := newTestDownloader(&fakeSource{body: "12345", size: 10}, dir)

	_, err := d.Fetch(context.Background(), releases.Asset{Name: "a.zip"})
	if !errors.Is(err, ErrShortDownload) {
		t.Fatalf("expected ErrShortDownload, got %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestFetch_InsufficientSpace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := &fakeSource{body: strings.Repeat("y", 4096), size: 4096}
	d := New(src, dir)
	d.freeSpace = func(context.Context, string) (uint64, error) { return 1024, nil }

	_, err := d.Fetch(context.Background(), releases.Asset{Name: "a.zip"})

	var spaceErr *InsufficientSpaceError
	if !errors.As(err, &spaceErr) {
		t.Fatalf("expected *InsufficientSpaceError, got %v", err)
	}
	if spaceErr.Required != 4096 || spaceErr.Available != 1024 {
		t.Errorf("unexpected error fields: %+v", spaceErr)
	}
	assertEmptyDir(t, dir)
}

func TestFetch_FreeSpaceQueryFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := New(&fakeSource{body: "ok", size: 2}, dir)
	d.freeSpace = func(context.Context, string) (uint64, error) { return 0, errors.New("unsupported") }

	if _, err := d.Fetch(context.Background(), releases.Asset{Name: "a.zip"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newTestDownloader(&fakeSource{body: "data", size: 4}, dir)
	_, err := d.Fetch(ctx, releases.Asset{Name: "a.zip"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestFetch_RejectsPathLikeNames(t *testing.T) {
	t.Parallel()

	d := newTestDownloader(&fakeSource{}, t.TempDir())
	for _, name := range []string{"", "..", "../evil.zip", `dir\evil.zip`} {
		if _, err := d.Fetch(context.Background(), releases.Asset{Name: name}); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("Fetch(%q): expected ErrInvalidAssetName, got %v", name, err)
		}
	}
}

func TestFetch_ThroughReleasesClient(t *testing.T) {
	t.Parallel()

	const payload = "PK-fake-archive"
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = io.WriteString(w, payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := newTestDownloader(releases.NewClient("o", "r", releases.WithHTTPClient(srv.Client())), dir)
	asset := releases.Asset{Name: "cdda.zip", BrowserDownloadURL: srv.URL + "/cdda.zip"}

	for range 2 {
		if _, err := d.Fetch(context.Background(), asset); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected a single request, got %d", hits.Load())
	}
}

func TestPurge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.zip", "b.tar.gz", "c.zip.part"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	n, err := Purge(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("removed %d files, want 3", n)
	}

	if n, err := Purge(filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Errorf("Purge(missing) = %d, %v", n, err)
	}
}

func TestProgressLine(t *testing.T) {
	t.Parallel()

	got := ProgressLine(1572864, 209715200)
	if got != "downloaded: 1.50 MB / 200.00 MB" {
		t.Errorf("ProgressLine() = %q", got)
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected %s to be empty, found %v", dir, names)
	}
}
