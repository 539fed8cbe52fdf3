// SPDX-License-Identifier: MPL-2.0

// Package gamedir inspects and maintains the local game installation: the
// build number recorded in VERSION.txt, the transient directories that must
// be wiped before a new build is extracted, and the install receipt written
// after every successful install.
package gamedir
