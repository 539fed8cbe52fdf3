// SPDX-License-Identifier: MPL-2.0

// Package download fetches release archives into a local cache directory.
//
// Archives are keyed by asset file name: an archive already present in the
// cache is reused without touching the network. New downloads are streamed to
// a ".part" file and only renamed into place once every advertised byte has
// been written, so an interrupted transfer never looks like a cached archive.
package download
