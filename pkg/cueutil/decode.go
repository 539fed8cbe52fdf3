// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
)

// DecodeMap compiles data, unifies it with schema and decodes the result
// into a map. Fields may be non-concrete, since configuration files only
// set what they override.
func DecodeMap(ctx *cue.Context, schema cue.Value, data []byte, filename string) (map[string]any, error) {
	if schema.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition not found: %w", schema.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, FormatError(err, filename)
	}

	var out map[string]any
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, filename)
	}
	return out, nil
}
