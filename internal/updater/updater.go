// SPDX-License-Identifier: MPL-2.0

package updater

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cdda-tools/cdda-updater/internal/archive"
	"github.com/cdda-tools/cdda-updater/internal/download"
	"github.com/cdda-tools/cdda-updater/internal/gamedir"
	"github.com/cdda-tools/cdda-updater/internal/hook"
	"github.com/cdda-tools/cdda-updater/internal/releases"
)

const (
	// OutcomeUpToDate means the newest considered release is the local build.
	OutcomeUpToDate Outcome = iota
	// OutcomeUpdated means a newer build replaced the local one.
	OutcomeUpdated
	// OutcomeInstalled means a build was installed without comparing against
	// a local one (fresh install, or update checks disabled).
	OutcomeInstalled
	// OutcomeNoSuitableRelease means no considered release had a matching asset.
	OutcomeNoSuitableRelease
)

type (
	// Outcome is the terminal state of a run.
	Outcome int

	// Lister provides the candidate releases, newest first.
	Lister interface {
		ListPrereleases(ctx context.Context) ([]releases.Release, error)
	}

	// Fetcher makes an asset available on disk.
	Fetcher interface {
		Fetch(ctx context.Context, asset releases.Asset) (*download.Result, error)
	}

	// Reporter receives user-facing status lines.
	Reporter interface {
		Info(msg string)
		Success(msg string)
		Error(msg string)
	}

	// Config is the immutable input of a run.
	Config struct {
		Target       releases.Target
		GameDir      string
		CheckUpdates bool
		// PostInstall is a shell script run in GameDir after every install.
		PostInstall string
		HookStdout  io.Writer
		HookStderr  io.Writer
	}

	// CheckResult is the outcome of a dry-run comparison.
	CheckResult struct {
		LocalBuild      string            // "" when nothing is installed
		SearchString    string            // Asset name prefix for this host
		Latest          *releases.Release // Newest pre-release, nil if the feed is empty
		Candidate       *releases.Release // Release that would be installed, nil if none
		UpToDate        bool              // Local build matches a release before any candidate
		UpdateAvailable bool              // Candidate != nil
	}

	// Updater runs update checks and installs against one game directory.
	Updater struct {
		lister   Lister
		fetcher  Fetcher
		cfg      Config
		logger   *log.Logger
		reporter Reporter
		now      func() time.Time
	}

	// Option configures an Updater during construction.
	Option func(*Updater)

	nopReporter struct{}
)

// String returns a short label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeUpToDate:
		return "up-to-date"
	case OutcomeUpdated:
		return "updated"
	case OutcomeInstalled:
		return "installed"
	case OutcomeNoSuitableRelease:
		return "no-suitable-release"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(u *Updater) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithReporter sets the sink for user-facing status lines.
func WithReporter(r Reporter) Option {
	return func(u *Updater) {
		if r != nil {
			u.reporter = r
		}
	}
}

// WithClock overrides the time source used for install receipts.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) {
		if now != nil {
			u.now = now
		}
	}
}

// New creates an Updater.
func New(lister Lister, fetcher Fetcher, cfg Config, opts ...Option) *Updater {
	u := &Updater{
		lister:   lister,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   log.New(io.Discard),
		reporter: nopReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run performs one update cycle.
func (u *Updater) Run(ctx context.Context) (Outcome, error) {
	if !u.cfg.CheckUpdates {
		u.logger.Debug("update check disabled, installing latest")
		return u.installLatest(ctx, nil)
	}

	local, err := gamedir.BuildNumber(u.cfg.GameDir)
	if err != nil {
		return 0, err
	}
	if local == "" {
		u.reporter.Info("did not find VERSION.txt, download the latest release instead.")
		return u.installLatest(ctx, nil)
	}
	u.reporter.Info("current build number: " + local)

	list, err := u.lister.ListPrereleases(ctx)
	if err != nil {
		return 0, err
	}

	search := u.SearchString()
	for _, r := range list {
		if r.Build() == local {
			u.reporter.Info("there are no new versions!")
			return OutcomeUpToDate, nil
		}
		if !releases.HasAsset(r, search) {
			u.logger.Debug("skipping release without matching asset", "release", r.Name, "search", search)
			continue
		}
		u.reporter.Success("get new build version " + r.Name)
		outcome, err := u.installLatest(ctx, list)
		if outcome == OutcomeInstalled {
			outcome = OutcomeUpdated
		}
		return outcome, err
	}

	u.reporter.Error("did not find a suitable version to download!")
	return OutcomeNoSuitableRelease, nil
}

// Install installs the newest release with a matching asset regardless of
// the local build.
func (u *Updater) Install(ctx context.Context) (Outcome, error) {
	return u.installLatest(ctx, nil)
}

// Check compares the local build against the feed without changing anything.
func (u *Updater) Check(ctx context.Context) (*CheckResult, error) {
	local, err := gamedir.BuildNumber(u.cfg.GameDir)
	if err != nil {
		return nil, err
	}

	list, err := u.lister.ListPrereleases(ctx)
	if err != nil {
		return nil, err
	}

	res := &CheckResult{LocalBuild: local, SearchString: u.SearchString()}
	if len(list) > 0 {
		res.Latest = &list[0]
	}

	for i := range list {
		r := &list[i]
		if local != "" && r.Build() == local {
			res.UpToDate = true
			break
		}
		if releases.HasAsset(*r, res.SearchString) {
			res.Candidate = r
			res.UpdateAvailable = true
			break
		}
	}

	return res, nil
}

// SearchString returns the asset name prefix for the configured target.
func (u *Updater) SearchString() string {
	return releases.SearchString(u.cfg.Target)
}

// installLatest installs the first release in list that has a matching
// asset. A nil list is fetched first and its newest publish time reported.
func (u *Updater) installLatest(ctx context.Context, list []releases.Release) (Outcome, error) {
	if list == nil {
		var err error
		list, err = u.lister.ListPrereleases(ctx)
		if err != nil {
			return 0, err
		}
		if len(list) > 0 {
			u.reporter.Success("the latest release is released at " + list[0].PublishedAt.UTC().Format(time.RFC3339))
		}
	}

	search := u.SearchString()
	for _, r := range list {
		asset, err := releases.SelectAsset(r, search)
		if err != nil {
			u.logger.Debug("skipping release", "release", r.Name, "reason", err)
			continue
		}
		if err := u.install(ctx, r, *asset); err != nil {
			return 0, err
		}
		return OutcomeInstalled, nil
	}

	u.reporter.Error("did not find a suitable version to download!")
	return OutcomeNoSuitableRelease, nil
}

// install downloads asset, clears the cache directories and extracts the
// archive, then records a receipt and runs the post-install hook.
func (u *Updater) install(ctx context.Context, r releases.Release, asset releases.Asset) error {
	u.logger.Debug("selected asset", "release", r.Name, "asset", asset.Name, "size", asset.Size)

	res, err := u.fetcher.Fetch(ctx, asset)
	if err != nil {
		return err
	}
	if res.Cached {
		u.reporter.Info(asset.Name + " is already downloaded, skip.")
	} else {
		u.reporter.Success("download " + asset.Name + " success!")
	}

	removed, err := gamedir.ClearCache(u.cfg.GameDir)
	if err != nil {
		return fmt.Errorf("clearing game cache: %w", err)
	}
	u.logger.Debug("cleared game cache", "dirs", removed)

	u.reporter.Info("try to extract " + asset.Name + "!")
	if err := archive.Extract(ctx, res.Path, u.cfg.GameDir); err != nil {
		return err
	}
	u.reporter.Success("extract all success!")

	receipt := gamedir.Receipt{
		Release:     r.Name,
		Build:       r.Build(),
		Asset:       asset.Name,
		PublishedAt: r.PublishedAt,
		InstalledAt: u.now().UTC(),
	}
	if err := gamedir.WriteReceipt(u.cfg.GameDir, receipt); err != nil {
		u.logger.Warn("could not write install receipt", "error", err)
	}

	inst := hook.Install{Release: r.Name, Build: r.Build(), Asset: asset.Name, GameDir: u.cfg.GameDir}
	if err := hook.Run(ctx, u.cfg.PostInstall, inst, hook.Options{Stdout: u.cfg.HookStdout, Stderr: u.cfg.HookStderr}); err != nil {
		return err
	}

	u.reporter.Success("all done!")
	return nil
}

func (nopReporter) Info(string) {}

func (nopReporter) Success(string) {}

func (nopReporter) Error(string) {}
