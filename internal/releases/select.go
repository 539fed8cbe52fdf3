// SPDX-License-Identifier: MPL-2.0

package releases

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cdda-tools/cdda-updater/pkg/platform"
)

// assetPrefix is the common prefix of every game build asset.
const assetPrefix = "cdda-"

// ErrNoMatchingAsset is returned when no asset name starts with the search string.
var ErrNoMatchingAsset = errors.New("no matching asset")

// Target is everything that determines which build flavour fits the host.
type Target struct {
	Host         platform.Host
	TerminalOnly bool
	Sounds       bool
}

// SearchString derives the asset name prefix for t, e.g.
// "cdda-windows-with-graphics-and-sounds-x64" or "cdda-osx-terminal-only-universal".
func SearchString(t Target) string {
	var sb strings.Builder
	sb.WriteString(assetPrefix)
	sb.WriteString(platformToken(t.Host))
	sb.WriteByte('-')

	if t.TerminalOnly {
		sb.WriteString("terminal-only-")
	} else {
		sb.WriteString("with-graphics-")
	}
	if t.Sounds {
		sb.WriteString("and-sounds-")
	}

	switch {
	case t.Host.IsDarwin():
		sb.WriteString("universal")
	case t.Host.Is64Bit():
		sb.WriteString("x64")
	}

	return sb.String()
}

// platformToken maps GOOS to the platform segment used in asset names.
// Platforms without a dedicated mapping use the GOOS token unchanged.
func platformToken(h platform.Host) string {
	switch h.OS {
	case platform.Windows:
		return "windows"
	case platform.Darwin:
		return "osx"
	default:
		return h.OS
	}
}

// SelectAsset returns the first asset of r whose name starts with search.
// Asset order decides ties. Returns an error wrapping ErrNoMatchingAsset
// when nothing matches.
func SelectAsset(r Release, search string) (*Asset, error) {
	for i := range r.Assets {
		if strings.HasPrefix(r.Assets[i].Name, search) {
			return &r.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("release %q has no asset starting with %q: %w", r.Name, search, ErrNoMatchingAsset)
}

// HasAsset reports whether r has an asset whose name starts with search.
func HasAsset(r Release, search string) bool {
	_, err := SelectAsset(r, search)
	return err == nil
}
