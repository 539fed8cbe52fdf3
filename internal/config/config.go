// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/cdda-tools/cdda-updater/internal/issue"
	"github.com/cdda-tools/cdda-updater/pkg/cueutil"
	"github.com/cdda-tools/cdda-updater/pkg/platform"
)

const (
	// AppName is the application name.
	AppName = "cdda-updater"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. CDDA_UPDATER_GAME_SOUNDS.
	EnvPrefix = "CDDA_UPDATER"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the cdda-updater configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the default config file location.
func ConfigFilePath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. Precedence, lowest first: defaults, config file,
// environment, Overrides.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	// If a custom config file path is set via --config flag, use it exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'cdda-updater config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEFile(v, opts.ConfigFilePath); err != nil {
			return nil, "", err
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		// The config directory wins over a config.cue in the working directory.
		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			ConfigFileName + "." + ConfigFileExt,
		} {
			if !fileExists(candidate) {
				continue
			}
			if err := loadCUEFile(v, candidate); err != nil {
				return nil, "", err
			}
			resolvedPath = candidate
			break
		}
		// If no config file found, use defaults (no error)
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Run 'cdda-updater config show' to inspect the effective values").
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for stray overrides").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("github.owner", defaults.GitHub.Owner)
	v.SetDefault("github.repo", defaults.GitHub.Repo)
	v.SetDefault("github.api_url", defaults.GitHub.APIURL)
	v.SetDefault("github.token", defaults.GitHub.Token)
	v.SetDefault("proxy.enabled", defaults.Proxy.Enabled)
	v.SetDefault("proxy.http", defaults.Proxy.HTTP)
	v.SetDefault("proxy.https", defaults.Proxy.HTTPS)
	v.SetDefault("game.terminal_only", defaults.Game.TerminalOnly)
	v.SetDefault("game.sounds", defaults.Game.Sounds)
	v.SetDefault("game.check_updates", defaults.Game.CheckUpdates)
	v.SetDefault("paths.download_dir", string(defaults.Paths.DownloadDir))
	v.SetDefault("paths.game_dir", string(defaults.Paths.GameDir))
	v.SetDefault("network.timeout", defaults.Network.Timeout.String())
	v.SetDefault("hooks.post_install", defaults.Hooks.PostInstall)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// loadCUEFile wraps loadCUEIntoViper failures in an actionable error.
func loadCUEFile(v *viper.Viper, path string) error {
	err := loadCUEIntoViper(v, path)
	if err == nil {
		return nil
	}

	ec := issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path)

	var (
		verr     *cueutil.ValidationError
		tooLarge *cueutil.FileTooLargeError
	)
	switch {
	case errors.As(err, &tooLarge):
		ec = ec.WithSuggestion(fmt.Sprintf("Configuration files are limited to %d bytes", tooLarge.Limit))
	case errors.As(err, &verr) && len(verr.Paths()) > 0:
		ec = ec.WithSuggestion("Fix the reported fields: " + strings.Join(verr.Paths(), ", "))
	default:
		ec = ec.WithSuggestion("Check that the file contains valid CUE syntax")
	}

	return ec.
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("Run 'cdda-updater config dump' to see a valid configuration").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	configMap, err := cueutil.DecodeMap(ctx, schemaValue.LookupPath(cue.ParsePath("#Config")), data, path)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file to path, or to
// ConfigFilePath() when path is empty. An existing file is left untouched;
// the returned bool reports whether a file was written.
func CreateDefaultConfig(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = ConfigFilePath(); err != nil {
			return "", false, err
		}
	}

	if fileExists(path) {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return path, true, nil
}

// GenerateCUE generates a CUE representation of the configuration.
// The GitHub token is never written.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// cdda-updater configuration file\n")
	sb.WriteString("// Every field is optional; omitted fields use built-in defaults.\n\n")

	sb.WriteString("github: {\n")
	fmt.Fprintf(&sb, "\towner:   %q\n", cfg.GitHub.Owner)
	fmt.Fprintf(&sb, "\trepo:    %q\n", cfg.GitHub.Repo)
	fmt.Fprintf(&sb, "\tapi_url: %q\n", cfg.GitHub.APIURL)
	sb.WriteString("\t// token: \"ghp_...\" (or set " + EnvPrefix + "_GITHUB_TOKEN)\n")
	sb.WriteString("}\n")

	sb.WriteString("\nproxy: {\n")
	fmt.Fprintf(&sb, "\tenabled: %v\n", cfg.Proxy.Enabled)
	fmt.Fprintf(&sb, "\thttp:    %q\n", cfg.Proxy.HTTP)
	fmt.Fprintf(&sb, "\thttps:   %q\n", cfg.Proxy.HTTPS)
	sb.WriteString("}\n")

	sb.WriteString("\ngame: {\n")
	fmt.Fprintf(&sb, "\tterminal_only: %v\n", cfg.Game.TerminalOnly)
	fmt.Fprintf(&sb, "\tsounds:        %v\n", cfg.Game.Sounds)
	fmt.Fprintf(&sb, "\tcheck_updates: %v\n", cfg.Game.CheckUpdates)
	sb.WriteString("}\n")

	sb.WriteString("\npaths: {\n")
	fmt.Fprintf(&sb, "\tdownload_dir: %q\n", cfg.Paths.DownloadDir)
	fmt.Fprintf(&sb, "\tgame_dir:     %q\n", cfg.Paths.GameDir)
	sb.WriteString("}\n")

	sb.WriteString("\nnetwork: {\n")
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Network.Timeout.String())
	sb.WriteString("}\n")

	sb.WriteString("\nhooks: {\n")
	fmt.Fprintf(&sb, "\tpost_install: %q\n", cfg.Hooks.PostInstall)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
