// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/cdda-tools/cdda-updater/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree. Running the root command without
// a subcommand performs an update.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cdda-updater",
		Short: "Keep a Cataclysm: DDA experimental build up to date",
		Long: TitleStyle.Render("cdda-updater") + SubtitleStyle.Render(" - Keep a Cataclysm: DDA experimental build up to date") + `

cdda-updater compares the build in your game directory with the newest
experimental releases on GitHub. When a newer build for your platform
exists it is downloaded, the cache, data and gfx directories are cleared
and the archive is extracted over the game directory. Saves, config and
mods stay in place.

` + SubtitleStyle.Render("Examples:") + `
  cdda-updater                    Update the game if a new build exists
  cdda-updater check              Show whether an update is available
  cdda-updater install            Install the newest build unconditionally
  cdda-updater --terminal-only    Track the curses build instead of tiles
  cdda-updater config init        Write a default configuration file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runUpdate(cmd, false)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/cdda-updater/config.cue)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&app.flags.terminalOnly, "terminal-only", false, "track the terminal-only (curses) build")
	pf.BoolVar(&app.flags.sounds, "sounds", false, "track the build with sounds (graphics builds only)")
	pf.BoolVar(&app.flags.noCheck, "no-check", false, "install the newest build without comparing build numbers")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newUpdateCommand(app),
		newCheckCommand(app),
		newInstallCommand(app),
		newStatusCommand(app),
		newCleanCommand(app),
		newPlatformCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	app := NewApp(Dependencies{})

	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		ctx,
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Code.IsSuccess() || exitErr.Code.Validate() != nil {
				return int(types.ExitFailure)
			}
			return int(exitErr.Code)
		}
		return int(types.ExitUserError)
	}
	return int(types.ExitOK)
}
