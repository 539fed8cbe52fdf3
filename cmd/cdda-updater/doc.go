// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cdda-updater CLI.
//
// The root command runs an update cycle against the configured game
// directory; subcommands check for updates, force an install, inspect the
// local install and manage the configuration file.
package cmd
