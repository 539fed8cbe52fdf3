// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cdda-tools/cdda-updater/internal/download"
	"github.com/cdda-tools/cdda-updater/internal/gamedir"
	"github.com/cdda-tools/cdda-updater/internal/issue"
	"github.com/cdda-tools/cdda-updater/internal/releases"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed build and how it was installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.runStatus(cmd)
		},
	}
}

func newCleanCommand(app *App) *cobra.Command {
	var downloads bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the game's cache, data and gfx directories",
		Long: `Remove the game's cache, data and gfx directories.

These directories are replaced by every update. Saves, config, mods and
templates are never touched. With --downloads the archive cache is
emptied as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.runClean(cmd, downloads)
		},
	}

	cmd.Flags().BoolVar(&downloads, "downloads", false, "also delete downloaded archives")

	return cmd
}

func newPlatformCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Show the detected platform and the asset prefix it selects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			cfg, _, err := app.loadConfig(cmd)
			if err != nil {
				return reportFailure(app.stderr, err, app.flags.verbose)
			}

			search := releases.SearchString(releases.Target{
				Host:         app.Host,
				TerminalOnly: cfg.Game.TerminalOnly,
				Sounds:       cfg.Game.Sounds,
			})

			_, _ = fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Platform"), app.Host)
			_, _ = fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Asset prefix"), search)
			return nil
		},
	}
}

func (a *App) runStatus(cmd *cobra.Command) error {
	cfg, _, err := a.loadConfig(cmd)
	if err != nil {
		return reportFailure(a.stderr, err, a.flags.verbose)
	}
	dir := string(cfg.Paths.GameDir)

	build, err := gamedir.BuildNumber(dir)
	if err != nil {
		return reportFailure(a.stderr, issue.WrapWithContext(err, "read build number", dir), cfg.UI.Verbose)
	}

	receipt, err := gamedir.ReadReceipt(dir)
	if err != nil {
		// A damaged receipt does not hide the build number.
		a.newLogger(cfg.UI.Verbose).Warn("could not read install receipt", "error", err)
	}

	w := a.stdout
	_, _ = fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Game directory"), dir)
	if build == "" {
		_, _ = fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Build"), SubtitleStyle.Render("(not installed)"))
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Build"), build)
	}

	if receipt == nil {
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Release"), receipt.Release)
	_, _ = fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Asset"), receipt.Asset)
	_, _ = fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Published"), receipt.PublishedAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Installed"), receipt.InstalledAt.UTC().Format(time.RFC3339))
	if build != "" && receipt.Build != build {
		_, _ = fmt.Fprintln(w, WarningStyle.Render("VERSION.txt changed since the last install by cdda-updater"))
	}
	return nil
}

func (a *App) runClean(cmd *cobra.Command, downloads bool) error {
	cfg, _, err := a.loadConfig(cmd)
	if err != nil {
		return reportFailure(a.stderr, err, a.flags.verbose)
	}

	removed, err := gamedir.ClearCache(string(cfg.Paths.GameDir))
	if err != nil {
		return reportFailure(a.stderr, issue.WrapWithContext(err, "clear cache", string(cfg.Paths.GameDir)), cfg.UI.Verbose)
	}
	if len(removed) == 0 {
		_, _ = fmt.Fprintln(a.stdout, "nothing to clear")
	} else {
		_, _ = fmt.Fprintln(a.stdout, SuccessStyle.Render("removed "+strings.Join(removed, ", ")))
	}

	if !downloads {
		return nil
	}

	n, err := download.Purge(string(cfg.Paths.DownloadDir))
	if err != nil {
		return reportFailure(a.stderr, issue.WrapWithContext(err, "delete downloads", string(cfg.Paths.DownloadDir)), cfg.UI.Verbose)
	}
	_, _ = fmt.Fprintln(a.stdout, SuccessStyle.Render(fmt.Sprintf("deleted %d downloaded archive(s)", n)))
	return nil
}
