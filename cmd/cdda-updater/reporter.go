// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/cdda-tools/cdda-updater/internal/download"
)

type (
	// styledReporter prints updater status lines: info plain, success green,
	// errors red.
	styledReporter struct {
		w io.Writer
	}

	// progressLine redraws a single "downloaded: X MB / Y MB" line.
	progressLine struct {
		w      io.Writer
		active bool
	}
)

func newStyledReporter(w io.Writer) *styledReporter {
	return &styledReporter{w: w}
}

func (r *styledReporter) Info(msg string) {
	_, _ = fmt.Fprintln(r.w, msg)
}

func (r *styledReporter) Success(msg string) {
	_, _ = fmt.Fprintln(r.w, SuccessStyle.Render(msg))
}

func (r *styledReporter) Error(msg string) {
	_, _ = fmt.Fprintln(r.w, ErrorStyle.Render(msg))
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w}
}

// Update overwrites the current line with the new byte counts.
func (p *progressLine) Update(downloaded, total int64) {
	_, _ = fmt.Fprint(p.w, "\r"+download.ProgressLine(downloaded, total))
	p.active = true
}

// Done ends the progress line, if one was drawn.
func (p *progressLine) Done() {
	if p.active {
		_, _ = fmt.Fprintln(p.w)
		p.active = false
	}
}
