// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cdda-tools/cdda-updater/internal/config"
	"github.com/cdda-tools/cdda-updater/internal/issue"
	"github.com/cdda-tools/cdda-updater/internal/releases"
	"github.com/cdda-tools/cdda-updater/internal/updater"
)

func newUpdateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update the game if a newer build exists (default)",
		Long: `Update the game if a newer build exists.

The build number in VERSION.txt is compared with the newest experimental
releases. Releases without an archive for this platform are skipped. When
VERSION.txt is missing, or update checks are disabled, the newest release
with a matching archive is installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runUpdate(cmd, false)
		},
	}
}

func newInstallCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the newest build regardless of the local one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runUpdate(cmd, true)
		},
	}
}

func newCheckCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show whether an update is available without installing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runCheck(cmd)
		},
	}
}

// runUpdate performs one update cycle, or an unconditional install when
// force is set. Finding no suitable release is reported but is not an error.
func (a *App) runUpdate(cmd *cobra.Command, force bool) error {
	cmd.SilenceUsage = true

	s, err := a.newSession(cmd)
	if err != nil {
		return reportFailure(a.stderr, err, a.flags.verbose)
	}

	op := "update the game"
	run := s.updater.Run
	if force {
		op = "install the game"
		run = s.updater.Install
	}

	outcome, err := run(cmd.Context())
	if err != nil {
		return reportFailure(a.stderr, wrapRunError(op, s, err), s.cfg.UI.Verbose)
	}

	s.logger.Debug("run finished", "outcome", outcome)
	if outcome == updater.OutcomeNoSuitableRelease {
		renderGuide(a.stderr, issue.NoSuitableReleaseId)
	}
	return nil
}

func (a *App) runCheck(cmd *cobra.Command) error {
	cmd.SilenceUsage = true

	s, err := a.newSession(cmd)
	if err != nil {
		return reportFailure(a.stderr, err, a.flags.verbose)
	}

	res, err := s.updater.Check(cmd.Context())
	if err != nil {
		return reportFailure(a.stderr, wrapRunError("check for updates", s, err), s.cfg.UI.Verbose)
	}

	printCheckResult(a, res)
	return nil
}

func printCheckResult(a *App, res *updater.CheckResult) {
	w := a.stdout
	label := func(s string) string { return CmdStyle.Render(s) }

	local := SubtitleStyle.Render("(not installed)")
	if res.LocalBuild != "" {
		local = res.LocalBuild
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", label("Local build"), local)

	latest := SubtitleStyle.Render("(none)")
	if res.Latest != nil {
		latest = fmt.Sprintf("%s (published %s)", res.Latest.Name, res.Latest.PublishedAt.UTC().Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", label("Latest release"), latest)
	_, _ = fmt.Fprintf(w, "%s: %s\n", label("Asset prefix"), res.SearchString)
	_, _ = fmt.Fprintln(w)

	switch {
	case res.UpToDate:
		_, _ = fmt.Fprintln(w, SuccessStyle.Render("there are no new versions!"))
	case res.UpdateAvailable:
		_, _ = fmt.Fprintln(w, SuccessStyle.Render("update available: "+res.Candidate.Name))
		if res.Candidate.HTMLURL != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", label("Release notes"), res.Candidate.HTMLURL)
		}
		_, _ = fmt.Fprintln(w, "Run '"+config.AppName+"' to install it.")
	default:
		_, _ = fmt.Fprintln(w, ErrorStyle.Render("did not find a suitable version to download!"))
	}
}

// wrapRunError attaches the game directory and remediation to a failed run.
func wrapRunError(op string, s *session, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation(op).
		WithResource(string(s.cfg.Paths.GameDir)).
		WithIssue(guideFor(err)).
		Wrap(err)

	var rateErr *releases.RateLimitError
	if errors.As(err, &rateErr) && s.cfg.GitHub.Token == "" {
		ctx.WithSuggestion("Set " + config.EnvPrefix + "_GITHUB_TOKEN to raise the rate limit")
	}

	return ctx.BuildError()
}
