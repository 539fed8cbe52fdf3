// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	NetworkFailedId Id = iota + 1
	RateLimitedId
	ConfigLoadFailedId
	NoSuitableReleaseId
	UnsupportedArchiveId
	MalformedVersionFileId
	InsufficientSpaceId
	HookFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // project documentation relevant to the issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	networkFailedIssue = &Issue{
		id: NetworkFailedId,
		mdMsg: `
# Could not reach GitHub!

The release list or the game archive could not be fetched.

## Things you can try:
- Check your internet connection
- If you are behind a proxy, enable it in the config file:
~~~cue
proxy: {
	enabled: true
	https:   "http://127.0.0.1:7890"
}
~~~

- Raise ` + "`network.timeout`" + ` if GitHub is slow to start responding
- Run the command again; partial downloads are discarded, never reused`,
		extLinks: []HttpLink{"https://www.githubstatus.com"},
	}

	rateLimitedIssue = &Issue{
		id: RateLimitedId,
		mdMsg: `
# GitHub API rate limit reached!

Anonymous clients may only query the GitHub API a limited number of times per hour.

## Things you can try:
- Wait until the reset time printed above
- Create a personal access token (no scopes needed) and export it:
~~~
$ export CDDA_UPDATER_GITHUB_TOKEN=ghp_...
~~~`,
		extLinks: []HttpLink{"https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config.cue could not be loaded or does not match the schema.

## Things you can try:
- Check the file for CUE syntax errors
- Compare it with the defaults:
~~~
$ cdda-updater config dump
~~~

- Remove unknown fields; the schema is closed
- Durations are strings such as "30m" or "90s"`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	noSuitableReleaseIssue = &Issue{
		id: NoSuitableReleaseId,
		mdMsg: `
# No suitable release found!

None of the recent experimental releases ships an archive for your platform and build variant.

## Things you can try:
- Check that your platform is supported:
~~~
$ cdda-updater platform
~~~

- Try the other variant with or without ` + "`--terminal-only`" + `
- Try again later; release assets are sometimes uploaded after the release is published`,
		extLinks: []HttpLink{"https://github.com/CleverRaven/Cataclysm-DDA/releases"},
	}

	unsupportedArchiveIssue = &Issue{
		id: UnsupportedArchiveId,
		mdMsg: `
# Unsupported or unsafe archive!

The downloaded archive is not a zip or gzipped tarball, or one of its entries would be written outside the game directory.

## Things you can try:
- Delete the cached archives and download again:
~~~
$ cdda-updater clean --downloads
~~~

- Report the asset name if it keeps happening`,
	}

	malformedVersionFileIssue = &Issue{
		id: MalformedVersionFileId,
		mdMsg: `
# VERSION.txt has no build number!

The game directory contains a VERSION.txt without a "build number" line, so the installed build cannot be compared with the latest release.

## Things you can try:
- Check that ` + "`paths.game_dir`" + ` points at a Cataclysm: DDA install
- Delete VERSION.txt to force a fresh install`,
	}

	insufficientSpaceIssue = &Issue{
		id: InsufficientSpaceId,
		mdMsg: `
# Not enough disk space!

The archive is larger than the free space in the download directory.

## Things you can try:
- Remove old archives:
~~~
$ cdda-updater clean --downloads
~~~

- Point ` + "`paths.download_dir`" + ` at a larger disk`,
	}

	hookFailedIssue = &Issue{
		id: HookFailedId,
		mdMsg: `
# Post-install hook failed!

The game was installed, but the ` + "`hooks.post_install`" + ` script exited with an error.

## Things you can try:
- Run the script by hand inside the game directory
- The script receives CDDA_RELEASE, CDDA_BUILD, CDDA_ASSET and CDDA_GAME_DIR in its environment`,
		extLinks: []HttpLink{"https://github.com/mvdan/sh"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

cdda-updater could not write to the download or game directory.

## Things you can try:
- Check the ownership of the directories in ` + "`paths`" + `
- Close the game before updating; Windows locks files that are in use
- Run cdda-updater from a directory you own`,
	}

	all = []*Issue{
		networkFailedIssue,
		rateLimitedIssue,
		configLoadFailedIssue,
		noSuitableReleaseIssue,
		unsupportedArchiveIssue,
		malformedVersionFileIssue,
		insufficientSpaceIssue,
		hookFailedIssue,
		permissionDeniedIssue,
	}

	issues = func() map[Id]*Issue {
		m := make(map[Id]*Issue, len(all))
		for _, i := range all {
			m[i.Id()] = i
		}
		return m
	}()
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	return slices.Clone(all)
}

func Get(id Id) *Issue {
	return issues[id]
}
