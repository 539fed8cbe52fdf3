// SPDX-License-Identifier: MPL-2.0

// Package archive unpacks downloaded game builds.
//
// Two container formats are supported, selected by file name: zip archives
// (Windows and macOS builds) and gzip-compressed tarballs (Linux builds).
// Every entry is resolved against the destination directory and entries that
// would land outside of it are rejected with ErrUnsafePath.
package archive
