// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and Markdown troubleshooting
// guides rendered with glamour when an update fails.
package issue
