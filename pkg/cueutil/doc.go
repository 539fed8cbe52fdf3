// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// DecodeMap runs the schema-validation flow used for configuration files:
//
//  1. Compile user data
//  2. Unify it with a schema definition
//  3. Validate and decode to a generic map for Viper
//
// Errors carry the file name and a JSON-path style location, e.g.
// "config.cue: game.sounds: conflicting values true and \"yes\"".
package cueutil
