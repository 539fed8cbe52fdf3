// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cdda-tools/cdda-updater/internal/releases"
	"github.com/cdda-tools/cdda-updater/internal/testutil"
	"github.com/cdda-tools/cdda-updater/pkg/platform"
)

const (
	// Owners the fake server treats specially.
	rateLimitedOwner = "ratelimited"
	brokenOwner      = "broken"

	buildNewest = "2024-05-03-0300"
	buildMiddle = "2024-05-02-0200"
	buildOldest = "2024-05-01-0100"
)

// fakeGitHub serves a small experimental-release feed and the archives it
// references. Asset names are derived from host so that the CLI under test
// selects them.
type fakeGitHub struct {
	*httptest.Server
	host      platform.Host
	downloads atomic.Int32
}

func newFakeGitHub(host platform.Host) *fakeGitHub {
	f := &fakeGitHub{host: host}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/releases", f.serveReleases)
	mux.HandleFunc("GET /assets/{name}", f.serveAsset)
	f.Server = httptest.NewServer(mux)
	return f
}

func (f *fakeGitHub) searchString(terminalOnly bool) string {
	return releases.SearchString(releases.Target{Host: f.host, TerminalOnly: terminalOnly})
}

func (f *fakeGitHub) assetName(terminalOnly bool, build string) string {
	return f.searchString(terminalOnly) + "-" + build + ".zip"
}

func (f *fakeGitHub) asset(name string) map[string]any {
	return map[string]any{
		"name":                 name,
		"browser_download_url": f.URL + "/assets/" + name,
		"size":                 1024,
		"content_type":         "application/zip",
	}
}

func (f *fakeGitHub) feed() []map[string]any {
	release := func(build string, published time.Time, prerelease bool, assets ...map[string]any) map[string]any {
		if assets == nil {
			assets = []map[string]any{}
		}
		return map[string]any{
			"name":         "Cataclysm-DDA experimental build " + build,
			"tag_name":     "cdda-experimental-" + build,
			"published_at": published.Format(time.RFC3339),
			"prerelease":   prerelease,
			"html_url":     "https://github.com/CleverRaven/Cataclysm-DDA/releases/tag/cdda-experimental-" + build,
			"assets":       assets,
		}
	}

	return []map[string]any{
		// Stable releases never count as candidates.
		release("0.H", time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC), false, f.asset(f.assetName(false, "0.H"))),
		// Newest experimental build whose assets are still uploading.
		release(buildNewest, time.Date(2024, 5, 3, 3, 0, 0, 0, time.UTC), true,
			f.asset("cdda-android-bundle-"+buildNewest+".aab")),
		release(buildMiddle, time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC), true,
			f.asset("cdda-android-bundle-"+buildMiddle+".aab"),
			f.asset(f.assetName(false, buildMiddle))),
		release(buildOldest, time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC), true,
			f.asset(f.assetName(false, buildOldest)),
			f.asset(f.assetName(true, buildOldest))),
	}
}

func (f *fakeGitHub) serveReleases(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("owner") {
	case rateLimitedOwner:
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Date(2024, 5, 3, 14, 30, 0, 0, time.UTC).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		return
	case brokenOwner:
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(f.feed())
}

func (f *fakeGitHub) serveAsset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !strings.HasSuffix(name, ".zip") || len(name) < len(buildOldest)+len(".zip") {
		http.NotFound(w, r)
		return
	}
	build := name[len(name)-len(buildOldest)-len(".zip") : len(name)-len(".zip")]

	body, err := testutil.ZipBytes(testutil.ReleaseEntries(build))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	f.downloads.Add(1)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}
