// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/cdda-tools/cdda-updater/internal/config"
	"github.com/cdda-tools/cdda-updater/pkg/platform"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra command
	// handler receives an App and reads its configuration through it.
	App struct {
		Config ConfigProvider
		// Host selects the asset flavour. Defaults to the running platform.
		Host platform.Host
		// HTTPClient replaces the client built from the proxy and timeout
		// settings when non-nil.
		HTTPClient *http.Client
		stdout     io.Writer
		stderr     io.Writer
		flags      rootFlags
	}

	// Dependencies defines the injection points for building an App. Zero
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		Host       platform.Host
		HTTPClient *http.Client
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Resolve(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// rootFlags holds the persistent flag values shared by every command.
	rootFlags struct {
		configPath   string
		verbose      bool
		terminalOnly bool
		sounds       bool
		noCheck      bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Host == (platform.Host{}) {
		deps.Host = platform.Current()
	}

	return &App{
		Config:     deps.Config,
		Host:       deps.Host,
		HTTPClient: deps.HTTPClient,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}
