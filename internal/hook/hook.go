// SPDX-License-Identifier: MPL-2.0

// Package hook runs the user's post-install shell script through an embedded
// POSIX shell interpreter, so hooks behave the same on every platform.
package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/cdda-tools/cdda-updater/pkg/types"
)

type (
	// Install describes the build that was just installed. Each field is
	// exported to the script as an environment variable.
	Install struct {
		Release string // CDDA_RELEASE
		Build   string // CDDA_BUILD
		Asset   string // CDDA_ASSET
		GameDir string // CDDA_GAME_DIR, also the working directory
	}

	// Options controls where the script's output goes.
	Options struct {
		Stdout io.Writer
		Stderr io.Writer
		// Environ is the base environment. Defaults to os.Environ().
		Environ []string
	}

	// ExitError is returned when the script exits with a non-zero status.
	ExitError struct {
		Code types.ExitCode
	}
)

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("post-install hook exited with status %d", e.Code)
}

// Validate reports a syntax error in script without running it.
func Validate(script string) error {
	if _, err := parse(script); err != nil {
		return err
	}
	return nil
}

// Run executes script in inst.GameDir. An empty script is a no-op.
func Run(ctx context.Context, script string, inst Install, opts Options) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	prog, err := parse(script)
	if err != nil {
		return err
	}

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	env := append(append([]string(nil), environ...),
		"CDDA_RELEASE="+inst.Release,
		"CDDA_BUILD="+inst.Build,
		"CDDA_ASSET="+inst.Asset,
		"CDDA_GAME_DIR="+inst.GameDir,
	)

	runner, err := interp.New(
		interp.Dir(inst.GameDir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("creating interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ExitError{Code: types.ExitCode(exitStatus)}
		}
		return fmt.Errorf("running post-install hook: %w", err)
	}
	return nil
}

func parse(script string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "post_install")
	if err != nil {
		return nil, fmt.Errorf("post-install hook syntax error: %w", err)
	}
	return prog, nil
}
