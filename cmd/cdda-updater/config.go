// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cdda-tools/cdda-updater/internal/config"
)

// newConfigCommand creates the `cdda-updater config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cdda-updater configuration",
		Long: `Manage cdda-updater configuration.

Configuration is stored in:
  - Linux: ~/.config/cdda-updater/config.cue
  - macOS: ~/Library/Application Support/cdda-updater/config.cue
  - Windows: %APPDATA%\cdda-updater\config.cue

A config.cue in the current directory is used when the file above is
missing. Every key can also be set through the environment, for example
CDDA_UPDATER_GAME_TERMINAL_ONLY=true.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.showConfig(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			cfg, _, err := app.loadConfig(cmd)
			if err != nil {
				return reportFailure(app.stderr, err, app.flags.verbose)
			}
			_, _ = fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(cmd *cobra.Command) error {
	cfg, cfgPath, err := a.loadConfig(cmd)
	if err != nil {
		return reportFailure(a.stderr, err, a.flags.verbose)
	}

	w := a.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	value := func(v any) string { return valueStyle.Render(fmt.Sprint(v)) }

	_, _ = fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	_, _ = fmt.Fprintln(w)

	if cfgPath != "" {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("github"))
	_, _ = fmt.Fprintf(w, "  repository: %s\n", value(cfg.GitHub.Repository()))
	_, _ = fmt.Fprintf(w, "  api_url: %s\n", value(cfg.GitHub.APIURL))
	token := SubtitleStyle.Render("(not set)")
	if cfg.GitHub.Token != "" {
		token = value("(set)")
	}
	_, _ = fmt.Fprintf(w, "  token: %s\n", token)

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("proxy"))
	_, _ = fmt.Fprintf(w, "  enabled: %s\n", value(cfg.Proxy.Enabled))
	_, _ = fmt.Fprintf(w, "  http: %s\n", value(cfg.Proxy.HTTP))
	_, _ = fmt.Fprintf(w, "  https: %s\n", value(cfg.Proxy.HTTPS))

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("game"))
	_, _ = fmt.Fprintf(w, "  terminal_only: %s\n", value(cfg.Game.TerminalOnly))
	_, _ = fmt.Fprintf(w, "  sounds: %s\n", value(cfg.Game.Sounds))
	_, _ = fmt.Fprintf(w, "  check_updates: %s\n", value(cfg.Game.CheckUpdates))

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("paths"))
	_, _ = fmt.Fprintf(w, "  download_dir: %s\n", value(cfg.Paths.DownloadDir))
	_, _ = fmt.Fprintf(w, "  game_dir: %s\n", value(cfg.Paths.GameDir))

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("network"))
	_, _ = fmt.Fprintf(w, "  timeout: %s\n", value(cfg.Network.Timeout))

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("hooks"))
	if cfg.Hooks.PostInstall == "" {
		_, _ = fmt.Fprintf(w, "  post_install: %s\n", SubtitleStyle.Render("(none)"))
	} else {
		_, _ = fmt.Fprintf(w, "  post_install: %s\n", value(fmt.Sprintf("%q", cfg.Hooks.PostInstall)))
	}

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("ui"))
	_, _ = fmt.Fprintf(w, "  verbose: %s\n", value(cfg.UI.Verbose))

	return nil
}

func (a *App) initConfig() error {
	path, created, err := config.CreateDefaultConfig(a.flags.configPath)
	if err != nil {
		return reportFailure(a.stderr, err, a.flags.verbose)
	}

	if !created {
		_, _ = fmt.Fprintf(a.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	_, _ = fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func (a *App) showConfigPath() error {
	if a.flags.configPath != "" {
		_, _ = fmt.Fprintf(a.stdout, "Config file: %s\n", a.flags.configPath)
		return nil
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return reportFailure(a.stderr, err, a.flags.verbose)
	}

	_, _ = fmt.Fprintf(a.stdout, "Config directory: %s\n", cfgDir)
	_, _ = fmt.Fprintf(a.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
