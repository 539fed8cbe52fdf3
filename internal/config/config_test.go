// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/cdda-tools/cdda-updater/internal/issue"
	"github.com/cdda-tools/cdda-updater/pkg/cueutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.GitHub.Repository() != "CleverRaven/Cataclysm-DDA" {
		t.Errorf("repository = %q", cfg.GitHub.Repository())
	}
	if !cfg.Game.CheckUpdates {
		t.Error("expected check_updates to default to true")
	}
	if cfg.Game.TerminalOnly || cfg.Game.Sounds {
		t.Error("expected graphics build without sounds by default")
	}
	if cfg.Proxy.Enabled {
		t.Error("expected proxy to be disabled by default")
	}
	if cfg.Paths.DownloadDir != "download" || cfg.Paths.GameDir != "game" {
		t.Errorf("paths = %+v", cfg.Paths)
	}
	if cfg.Network.Timeout != time.Minute {
		t.Errorf("timeout = %v", cfg.Network.Timeout)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config is invalid: %v", errs)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := NewProvider().Resolve(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want none", path)
	}
	if cfg.GitHub.Owner != DefaultOwner || cfg.Network.Timeout != DefaultTimeout || !cfg.Game.CheckUpdates {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wantPath := writeConfig(t, dir, `
game: {
	terminal_only: true
	sounds:        true
	check_updates: false
}
proxy: {
	enabled: true
	https:   "http://127.0.0.1:3128"
}
paths: game_dir: "/opt/cdda"
network: timeout: "45s"
hooks: post_install: "echo done"
`)

	cfg, path, err := NewProvider().Resolve(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != wantPath {
		t.Errorf("resolved path = %q, want %q", path, wantPath)
	}

	if !cfg.Game.TerminalOnly || !cfg.Game.Sounds || cfg.Game.CheckUpdates {
		t.Errorf("game = %+v", cfg.Game)
	}
	if !cfg.Proxy.Enabled || cfg.Proxy.HTTPS != "http://127.0.0.1:3128" || cfg.Proxy.HTTP != "" {
		t.Errorf("proxy = %+v", cfg.Proxy)
	}
	if cfg.Paths.GameDir != "/opt/cdda" || cfg.Paths.DownloadDir != DefaultDownloadDir {
		t.Errorf("paths = %+v", cfg.Paths)
	}
	if cfg.Network.Timeout != 45*time.Second {
		t.Errorf("timeout = %v", cfg.Network.Timeout)
	}
	if cfg.Hooks.PostInstall != "echo done" {
		t.Errorf("post_install = %q", cfg.Hooks.PostInstall)
	}
	if cfg.GitHub.Owner != DefaultOwner {
		t.Errorf("owner = %q, want default", cfg.GitHub.Owner)
	}
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "game: terminal_only: false\n")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: dir,
		Overrides:     map[string]any{"game.terminal_only": true, "game.check_updates": false},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Game.TerminalOnly || cfg.Game.CheckUpdates {
		t.Errorf("game = %+v", cfg.Game)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CDDA_UPDATER_GAME_SOUNDS", "true")
	t.Setenv("CDDA_UPDATER_GITHUB_TOKEN", "ghp_test")
	t.Setenv("CDDA_UPDATER_NETWORK_TIMEOUT", "2m")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Game.Sounds {
		t.Error("expected sounds from environment")
	}
	if cfg.GitHub.Token != "ghp_test" {
		t.Errorf("token = %q", cfg.GitHub.Token)
	}
	if cfg.Network.Timeout != 2*time.Minute {
		t.Errorf("timeout = %v", cfg.Network.Timeout)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{name: "wrong type", content: `game: sounds: "yes"`, contains: "game.sounds"},
		{name: "unknown key", content: `game: colour: "red"`, contains: "colour"},
		{name: "bad duration", content: `network: timeout: "soon"`, contains: "network.timeout"},
		{name: "empty repo", content: `github: repo: ""`, contains: "github.repo"},
		{name: "syntax error", content: `game: {`, contains: "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T", err)
			}
			if !ae.HasSuggestions() {
				t.Error("expected suggestions")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoad_SchemaViolationSuggestsFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `game: sounds: "yes"`)

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %v", err)
	}
	if !slices.Contains(ae.Suggestions, "Fix the reported fields: game.sounds") {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	var verr *cueutil.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected *cueutil.ValidationError in chain, got %v", err)
	}
}

func TestLoad_OversizedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "// "+strings.Repeat("x", int(cueutil.DefaultMaxFileSize)))

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	var tooLarge *cueutil.FileTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected *cueutil.FileTooLargeError, got %v", err)
	}
	if issueID := asActionable(t, err).Guide; issueID != issue.ConfigLoadFailedId {
		t.Errorf("Guide = %v, want ConfigLoadFailedId", issueID)
	}
}

func asActionable(t *testing.T, err error) *issue.ActionableError {
	t.Helper()
	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	return actionable
}

func TestLoad_SemanticValidation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `proxy: {enabled: true, http: "not-a-url"}`)

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if !errors.Is(err, ErrInvalidProxyURL) {
		t.Errorf("expected ErrInvalidProxyURL in chain, got %v", err)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.cue")
	if err := os.WriteFile(path, []byte(`ui: verbose: true`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := NewProvider().Resolve(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != path || !cfg.UI.Verbose {
		t.Errorf("resolved=%q verbose=%v", resolved, cfg.UI.Verbose)
	}

	_, err = NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Game.TerminalOnly = true
	want.Proxy.HTTP = "http://proxy.invalid:8080"
	want.Hooks.PostInstall = "cp -r ../save .\necho \"ok\""
	want.Network.Timeout = 90 * time.Second
	want.GitHub.Token = "ghp_secret"

	dir := t.TempDir()
	content := GenerateCUE(want)
	if strings.Contains(content, "ghp_secret") {
		t.Fatal("GenerateCUE must not write the token")
	}
	writeConfig(t, dir, content)

	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated config does not load: %v\n%s", err, content)
	}

	want.GitHub.Token = ""
	if *got != *want {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", *got, *want)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")

	gotPath, created, err := CreateDefaultConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || gotPath != path {
		t.Errorf("CreateDefaultConfig() = %q, %v", gotPath, created)
	}

	if err := os.WriteFile(path, []byte("ui: verbose: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, created, err := CreateDefaultConfig(path); err != nil || created {
		t.Errorf("second call: created=%v err=%v", created, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ui: verbose: true\n" {
		t.Error("existing config must not be overwritten")
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-only")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != filepath.Join("/tmp/test-xdg-config", AppName) {
		t.Errorf("ConfigDir() = %q", dir)
	}

	SetConfigDirOverride("/tmp/override")
	t.Cleanup(Reset)
	if dir, _ := ConfigDir(); dir != "/tmp/override" {
		t.Errorf("ConfigDir() with override = %q", dir)
	}
	if path, _ := ConfigFilePath(); path != filepath.Join("/tmp/override", "config.cue") {
		t.Errorf("ConfigFilePath() = %q", path)
	}
}
