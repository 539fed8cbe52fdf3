// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/cdda-updater/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/cdda-updater/config.cue on macOS,
// %APPDATA%\cdda-updater\config.cue on Windows), falling back to ./config.cue. Every key can
// be overridden through CDDA_UPDATER_* environment variables, e.g.
// CDDA_UPDATER_GAME_TERMINAL_ONLY=true.
//
// Configuration files are validated against the embedded CUE schema (config_schema.cue)
// so typos and wrong types are reported with file positions.
package config
