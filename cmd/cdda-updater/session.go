// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cdda-tools/cdda-updater/internal/config"
	"github.com/cdda-tools/cdda-updater/internal/download"
	"github.com/cdda-tools/cdda-updater/internal/hook"
	"github.com/cdda-tools/cdda-updater/internal/issue"
	"github.com/cdda-tools/cdda-updater/internal/releases"
	"github.com/cdda-tools/cdda-updater/internal/updater"
)

// session holds everything one run needs. All network traffic of a run
// goes through client.
type session struct {
	cfg        *config.Config
	cfgPath    string
	logger     *log.Logger
	client     *releases.Client
	downloader *download.Downloader
	updater    *updater.Updater
}

// loadOptions turns explicitly set flags into config overrides so that an
// unset flag never masks a value from the file or the environment.
func (a *App) loadOptions(cmd *cobra.Command) config.LoadOptions {
	flags := cmd.Flags()
	overrides := map[string]any{}

	if flags.Changed("terminal-only") {
		overrides["game.terminal_only"] = a.flags.terminalOnly
	}
	if flags.Changed("sounds") {
		overrides["game.sounds"] = a.flags.sounds
	}
	if flags.Changed("no-check") {
		overrides["game.check_updates"] = !a.flags.noCheck
	}
	if flags.Changed("verbose") {
		overrides["ui.verbose"] = a.flags.verbose
	}

	return config.LoadOptions{ConfigFilePath: a.flags.configPath, Overrides: overrides}
}

func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	return a.Config.Resolve(cmd.Context(), a.loadOptions(cmd))
}

// newLogger builds the diagnostic logger. User-facing status lines do not
// go through it.
func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newSession loads the configuration and builds the client, downloader and
// updater for one run.
func (a *App) newSession(cmd *cobra.Command) (*session, error) {
	cfg, cfgPath, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := a.newLogger(cfg.UI.Verbose)
	if cfgPath != "" {
		logger.Debug("loaded configuration", "path", cfgPath)
	}

	if err := hook.Validate(cfg.Hooks.PostInstall); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse post-install hook").
			WithResource("hooks.post_install").
			WithSuggestion("Check the script with 'sh -n' before putting it in the config").
			WithIssue(issue.HookFailedId).
			Wrap(err).
			BuildError()
	}

	httpClient := a.HTTPClient
	if httpClient == nil {
		httpClient, err = releases.NewHTTPClient(releases.TransportOptions{
			UseProxy:      cfg.Proxy.Enabled,
			HTTPProxy:     cfg.Proxy.HTTP,
			HTTPSProxy:    cfg.Proxy.HTTPS,
			HeaderTimeout: cfg.Network.Timeout,
		})
		if err != nil {
			return nil, err
		}
	}

	client := releases.NewClient(cfg.GitHub.Owner, cfg.GitHub.Repo,
		releases.WithHTTPClient(httpClient),
		releases.WithBaseURL(cfg.GitHub.APIURL),
		releases.WithToken(cfg.GitHub.Token),
		releases.WithUserAgent(config.AppName+"/"+Version),
	)

	downloader := download.New(client, string(cfg.Paths.DownloadDir),
		download.WithLogger(logger),
		download.WithProgress(newProgressLine(a.stdout)),
	)

	upd := updater.New(client, downloader, updater.Config{
		Target: releases.Target{
			Host:         a.Host,
			TerminalOnly: cfg.Game.TerminalOnly,
			Sounds:       cfg.Game.Sounds,
		},
		GameDir:      string(cfg.Paths.GameDir),
		CheckUpdates: cfg.Game.CheckUpdates,
		PostInstall:  cfg.Hooks.PostInstall,
		HookStdout:   a.stdout,
		HookStderr:   a.stderr,
	},
		updater.WithLogger(logger),
		updater.WithReporter(newStyledReporter(a.stdout)),
	)

	logger.Debug("session ready",
		"repository", client.Repository(),
		"search", upd.SearchString(),
		"game_dir", cfg.Paths.GameDir,
		"download_dir", cfg.Paths.DownloadDir,
		"proxy", cfg.Proxy.Enabled,
	)

	return &session{
		cfg:        cfg,
		cfgPath:    cfgPath,
		logger:     logger,
		client:     client,
		downloader: downloader,
		updater:    upd,
	}, nil
}
