// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := newProgressLine(&buf)

	p.Done()
	if buf.Len() != 0 {
		t.Fatalf("Done() without updates wrote %q", buf.String())
	}

	p.Update(512*1024, 2*1024*1024)
	p.Update(2*1024*1024, 2*1024*1024)
	p.Done()
	p.Done()

	want := "\rdownloaded: 0.50 MB / 2.00 MB\rdownloaded: 2.00 MB / 2.00 MB\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestStyledReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := newStyledReporter(&buf)
	r.Info("current build number: 1")
	r.Success("all done!")
	r.Error("did not find a suitable version to download!")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	for i, want := range []string{"current build number: 1", "all done!", "did not find a suitable version to download!"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
	}
}
