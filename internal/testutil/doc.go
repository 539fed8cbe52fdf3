// SPDX-License-Identifier: MPL-2.0

// Package testutil provides shared helpers for tests: a manually advanced
// clock and builders for zip and tar.gz archives laid out like game releases.
package testutil
