// SPDX-License-Identifier: MPL-2.0

package releases

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedRelease is wrapped by MalformedReleaseError.
var ErrMalformedRelease = errors.New("malformed release")

type (
	// Release is a validated GitHub release. Values are rebuilt from the API
	// on every check and never persisted.
	Release struct {
		Name        string    // Human-readable name, e.g. "Cataclysm-DDA experimental build 2024-05-01-0123"
		TagName     string    // Git tag, may be empty for untagged releases
		PublishedAt time.Time // Publication timestamp
		Prerelease  bool      // Experimental builds are published as pre-releases
		HTMLURL     string    // Browser URL for the release page
		Assets      []Asset   // Downloadable artifacts in API order
	}

	// Asset is a single downloadable file in a Release.
	Asset struct {
		Name               string // File name, e.g. "cdda-linux-with-graphics-x64-2024-05-01-0123.tar.gz"
		BrowserDownloadURL string // Direct download URL
		Size               int64  // File size in bytes as reported by the API
		ContentType        string // MIME type
	}

	// MalformedReleaseError reports a release entry that lacks a required
	// field. Index is the entry's position in the API response.
	MalformedReleaseError struct {
		Index int
		Field string
		Cause error
	}

	// githubRelease is the JSON wire format for a GitHub Release API response.
	// Pointer fields distinguish "absent or null" from "empty".
	githubRelease struct {
		Name        *string       `json:"name"`
		TagName     string        `json:"tag_name"`
		PublishedAt *string       `json:"published_at"`
		Prerelease  bool          `json:"prerelease"`
		HTMLURL     string        `json:"html_url"`
		Assets      []githubAsset `json:"assets"`
	}

	// githubAsset is the JSON wire format for a GitHub Release asset.
	githubAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
		ContentType        string `json:"content_type"`
	}
)

// Error implements the error interface.
func (e *MalformedReleaseError) Error() string {
	msg := fmt.Sprintf("malformed release at index %d: field %q", e.Index, e.Field)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrMalformedRelease for errors.Is compatibility.
func (e *MalformedReleaseError) Unwrap() error { return ErrMalformedRelease }

// Build returns the last whitespace-delimited token of the release name,
// which is how experimental builds carry their build number.
func (r Release) Build() string {
	fields := strings.Fields(r.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// toRelease validates the wire record and converts it to a Release.
func toRelease(index int, gr githubRelease) (Release, error) {
	if gr.Name == nil || strings.TrimSpace(*gr.Name) == "" {
		return Release{}, &MalformedReleaseError{Index: index, Field: "name"}
	}
	if gr.PublishedAt == nil {
		return Release{}, &MalformedReleaseError{Index: index, Field: "published_at"}
	}
	published, err := time.Parse(time.RFC3339, *gr.PublishedAt)
	if err != nil {
		return Release{}, &MalformedReleaseError{Index: index, Field: "published_at", Cause: err}
	}

	assets := make([]Asset, 0, len(gr.Assets))
	for i, ga := range gr.Assets {
		if ga.Name == "" {
			return Release{}, &MalformedReleaseError{Index: index, Field: fmt.Sprintf("assets[%d].name", i)}
		}
		if ga.BrowserDownloadURL == "" {
			return Release{}, &MalformedReleaseError{Index: index, Field: fmt.Sprintf("assets[%d].browser_download_url", i)}
		}
		assets = append(assets, Asset(ga))
	}

	return Release{
		Name:        *gr.Name,
		TagName:     gr.TagName,
		PublishedAt: published,
		Prerelease:  gr.Prerelease,
		HTMLURL:     gr.HTMLURL,
		Assets:      assets,
	}, nil
}
