// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"

	"github.com/cdda-tools/cdda-updater/internal/archive"
	"github.com/cdda-tools/cdda-updater/internal/config"
	"github.com/cdda-tools/cdda-updater/internal/download"
	"github.com/cdda-tools/cdda-updater/internal/gamedir"
	"github.com/cdda-tools/cdda-updater/internal/hook"
	"github.com/cdda-tools/cdda-updater/internal/issue"
	"github.com/cdda-tools/cdda-updater/internal/releases"
	"github.com/cdda-tools/cdda-updater/pkg/types"
)

// guideFor picks the troubleshooting guide for err, or 0 when none fits.
func guideFor(err error) issue.Id {
	var (
		ae         *issue.ActionableError
		rateErr    *releases.RateLimitError
		spaceErr   *download.InsufficientSpaceError
		formatErr  *archive.UnsupportedFormatError
		hookErr    *hook.ExitError
		urlErr     *url.Error
		netErr     net.Error
		releaseErr *releases.MalformedReleaseError
	)

	switch {
	case errors.As(err, &ae) && ae.Guide != 0:
		return ae.Guide
	case errors.As(err, &rateErr):
		return issue.RateLimitedId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	case errors.As(err, &spaceErr):
		return issue.InsufficientSpaceId
	case errors.As(err, &formatErr), errors.Is(err, archive.ErrUnsafePath):
		return issue.UnsupportedArchiveId
	case errors.Is(err, gamedir.ErrBuildNumberMissing):
		return issue.MalformedVersionFileId
	case errors.As(err, &hookErr):
		return issue.HookFailedId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case errors.As(err, &urlErr), errors.As(err, &netErr), errors.As(err, &releaseErr),
		errors.Is(err, releases.ErrUnexpectedStatus),
		errors.Is(err, download.ErrMissingContentLength),
		errors.Is(err, download.ErrShortDownload):
		return issue.NetworkFailedId
	}
	return 0
}

// classifyExitCode maps err to the process exit code: network and
// unexpected failures exit 2, everything the user can fix exits 1.
func classifyExitCode(err error) types.ExitCode {
	switch guideFor(err) {
	case issue.NetworkFailedId, issue.RateLimitedId, 0:
		return types.ExitFailure
	default:
		return types.ExitUserError
	}
}

// reportFailure prints remediation for err to w and returns the ExitError
// the RunE handler should return. The one-line error itself is printed by
// fang when the command returns.
func reportFailure(w io.Writer, err error, verbose bool) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		if details := ae.Details(verbose); details != "" {
			_, _ = fmt.Fprintln(w, VerboseStyle.Render(details))
		}
	} else if verbose {
		_, _ = fmt.Fprintln(w, VerboseStyle.Render(issue.Chain(err)))
	}

	renderGuide(w, guideFor(err))

	return &ExitError{Code: classifyExitCode(err), Err: err}
}

// renderGuide prints the troubleshooting guide for id to w. Unknown ids and
// rendering failures print nothing.
func renderGuide(w io.Writer, id issue.Id) {
	guide := issue.Get(id)
	if guide == nil {
		return
	}
	if rendered, err := guide.Render(glamourStyle(w)); err == nil {
		_, _ = fmt.Fprint(w, rendered)
	}
}

// glamourStyle renders guides without ANSI styling unless w is a terminal.
func glamourStyle(w io.Writer) string {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return "notty"
	}
	info, err := f.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return "notty"
	}
	return "auto"
}
