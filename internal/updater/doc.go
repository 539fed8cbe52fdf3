// SPDX-License-Identifier: MPL-2.0

// Package updater decides whether the local game installation is current and,
// when it is not, installs the newest experimental build that ships an asset
// for this host.
//
// Releases are considered newest first. With a known local build, the walk
// stops at the first release whose build matches it (up to date) or at the
// first newer release that has a matching asset (update). Without a local
// build, or when update checks are disabled, the first release with a matching
// asset is installed. Exhausting the list ends in OutcomeNoSuitableRelease.
package updater
