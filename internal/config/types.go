// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultOwner is the GitHub account that publishes the game builds.
	DefaultOwner = "CleverRaven"
	// DefaultRepo is the repository whose releases are tracked.
	DefaultRepo = "Cataclysm-DDA"
	// DefaultAPIURL is the GitHub REST API endpoint.
	DefaultAPIURL = "https://api.github.com"
	// DefaultDownloadDir caches fetched archives.
	DefaultDownloadDir = "download"
	// DefaultGameDir is the installation root.
	DefaultGameDir = "game"
	// DefaultTimeout bounds the wait for GitHub's response headers.
	DefaultTimeout = time.Minute
)

var (
	// ErrInvalidRepository is returned when owner or repo is empty.
	ErrInvalidRepository = errors.New("invalid repository")
	// ErrInvalidProxyURL is the sentinel error wrapped by InvalidProxyURLError.
	ErrInvalidProxyURL = errors.New("invalid proxy URL")
	// ErrInvalidDirPath is returned when a directory setting is whitespace-only.
	ErrInvalidDirPath = errors.New("invalid directory path")
	// ErrInvalidTimeout is returned for negative timeouts.
	ErrInvalidTimeout = errors.New("invalid timeout")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// DirPath is a directory setting, relative to the working directory
	// unless absolute.
	DirPath string

	// InvalidDirPathError is returned when a DirPath is empty or whitespace-only.
	InvalidDirPathError struct {
		Field string
		Value DirPath
	}

	// InvalidProxyURLError is returned when an enabled proxy URL cannot be used.
	InvalidProxyURLError struct {
		Scheme string
		Value  string
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// GitHub selects the release feed.
		GitHub GitHubConfig `json:"github" mapstructure:"github"`
		// Proxy routes requests through HTTP/HTTPS proxies.
		Proxy ProxyConfig `json:"proxy" mapstructure:"proxy"`
		// Game selects the build flavour and update behaviour.
		Game GameConfig `json:"game" mapstructure:"game"`
		// Paths locates the archive cache and the installation.
		Paths PathsConfig `json:"paths" mapstructure:"paths"`
		// Network tunes the HTTP client.
		Network NetworkConfig `json:"network" mapstructure:"network"`
		// Hooks configures scripts run around installs.
		Hooks HooksConfig `json:"hooks" mapstructure:"hooks"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// GitHubConfig selects the repository whose releases are tracked.
	GitHubConfig struct {
		Owner  string `json:"owner" mapstructure:"owner"`
		Repo   string `json:"repo" mapstructure:"repo"`
		APIURL string `json:"api_url" mapstructure:"api_url"`
		// Token raises the API rate limit. Never written by GenerateCUE.
		Token string `json:"-" mapstructure:"token"`
	}

	// ProxyConfig holds per-scheme proxy URLs. They are ignored unless Enabled.
	ProxyConfig struct {
		Enabled bool   `json:"enabled" mapstructure:"enabled"`
		HTTP    string `json:"http" mapstructure:"http"`
		HTTPS   string `json:"https" mapstructure:"https"`
	}

	// GameConfig selects which build flavour to install.
	GameConfig struct {
		// TerminalOnly picks curses builds instead of tiles builds.
		TerminalOnly bool `json:"terminal_only" mapstructure:"terminal_only"`
		// Sounds picks builds bundled with a sound pack.
		Sounds bool `json:"sounds" mapstructure:"sounds"`
		// CheckUpdates compares against the installed build before
		// downloading. When false the newest build is always installed.
		CheckUpdates bool `json:"check_updates" mapstructure:"check_updates"`
	}

	// PathsConfig locates the archive cache and the game installation.
	PathsConfig struct {
		DownloadDir DirPath `json:"download_dir" mapstructure:"download_dir"`
		GameDir     DirPath `json:"game_dir" mapstructure:"game_dir"`
	}

	// NetworkConfig tunes the shared HTTP client.
	NetworkConfig struct {
		// Timeout bounds the wait for response headers; 0 disables it.
		// Archive bodies are read without a deadline.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// HooksConfig holds user scripts.
	HooksConfig struct {
		// PostInstall runs in the game directory after every install.
		PostInstall string `json:"post_install" mapstructure:"post_install"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the DirPath.
func (p DirPath) String() string { return string(p) }

// Error implements the error interface for InvalidDirPathError.
func (e *InvalidDirPathError) Error() string {
	return fmt.Sprintf("invalid %s %q: must be non-empty", e.Field, e.Value)
}

// Unwrap returns ErrInvalidDirPath for errors.Is() compatibility.
func (e *InvalidDirPathError) Unwrap() error { return ErrInvalidDirPath }

// Error implements the error interface for InvalidProxyURLError.
func (e *InvalidProxyURLError) Error() string {
	return fmt.Sprintf("invalid %s proxy %q: expected scheme://host[:port]", e.Scheme, e.Value)
}

// Unwrap returns ErrInvalidProxyURL for errors.Is() compatibility.
func (e *InvalidProxyURLError) Unwrap() error { return ErrInvalidProxyURL }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Repository returns "owner/repo".
func (c GitHubConfig) Repository() string {
	return c.Owner + "/" + c.Repo
}

// IsValid returns whether the GitHubConfig names a repository.
func (c GitHubConfig) IsValid() (bool, []error) {
	if strings.TrimSpace(c.Owner) == "" || strings.TrimSpace(c.Repo) == "" {
		return false, []error{fmt.Errorf("%w: owner and repo are required, got %q", ErrInvalidRepository, c.Repository())}
	}
	return true, nil
}

// IsValid checks the proxy URLs when proxying is enabled. Empty URLs mean
// a direct connection for that scheme.
func (c ProxyConfig) IsValid() (bool, []error) {
	if !c.Enabled {
		return true, nil
	}
	var errs []error
	for _, p := range [...]struct{ scheme, raw string }{{"http", c.HTTP}, {"https", c.HTTPS}} {
		if p.raw == "" {
			continue
		}
		u, err := url.Parse(p.raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, &InvalidProxyURLError{Scheme: p.scheme, Value: p.raw})
		}
	}
	return len(errs) == 0, errs
}

// IsValid returns whether both directories are set.
func (c PathsConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(string(c.DownloadDir)) == "" {
		errs = append(errs, &InvalidDirPathError{Field: "paths.download_dir", Value: c.DownloadDir})
	}
	if strings.TrimSpace(string(c.GameDir)) == "" {
		errs = append(errs, &InvalidDirPathError{Field: "paths.game_dir", Value: c.GameDir})
	}
	return len(errs) == 0, errs
}

// IsValid rejects negative timeouts.
func (c NetworkConfig) IsValid() (bool, []error) {
	if c.Timeout < 0 {
		return false, []error{fmt.Errorf("%w: network.timeout %s is negative", ErrInvalidTimeout, c.Timeout)}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields.
// Game, Hooks and UI need no validation beyond the CUE schema.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.GitHub.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Proxy.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Paths.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Network.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Owner:  DefaultOwner,
			Repo:   DefaultRepo,
			APIURL: DefaultAPIURL,
		},
		Game: GameConfig{
			CheckUpdates: true,
		},
		Paths: PathsConfig{
			DownloadDir: DefaultDownloadDir,
			GameDir:     DefaultGameDir,
		},
		Network: NetworkConfig{
			Timeout: DefaultTimeout,
		},
	}
}
