// SPDX-License-Identifier: MPL-2.0

// Package platform describes the host a game build is selected for.
//
// Release assets are published per operating system and word size, so the
// host is reduced to those two facts. Host values are plain data and can be
// constructed directly in tests to exercise other platforms.
package platform
