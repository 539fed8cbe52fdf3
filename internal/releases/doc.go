// SPDX-License-Identifier: MPL-2.0

// Package releases talks to the GitHub Releases API and picks the game build
// that fits the host.
//
// The package is organized into four concerns:
//   - github.go: HTTP client for the releases listing and asset downloads
//   - release.go: validated Release/Asset records decoded from the wire format
//   - select.go: search string derivation and prefix-based asset selection
//   - transport.go: construction of the shared *http.Client (proxy, timeout)
package releases
