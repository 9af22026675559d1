package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"aichat/internal/chat"
	"aichat/internal/tui/render"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

func TestFmtElapsedCompact(t *testing.T) {
	cases := []struct {
		seconds  uint64
		expected string
	}{
		{seconds: 0, expected: "0s"},
		{seconds: 59, expected: "59s"},
		{seconds: 60, expected: "1m 00s"},
		{seconds: 3*60 + 5, expected: "3m 05s"},
		{seconds: 3600 + 60 + 1, expected: "1h 01m 01s"},
		{seconds: 25*3600 + 2*60 + 3, expected: "25h 02m 03s"},
	}

	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if got := fmtElapsedCompact(tc.seconds); got != tc.expected {
				t.Fatalf("fmtElapsedCompact(%d) = %q, want %q", tc.seconds, got, tc.expected)
			}
		})
	}
}

func TestStatusLine(t *testing.T) {
	base := time.Unix(0, 0)
	spin := spinner.New()

	idle := ansi.Strip(statusLine(statusInfo{state: chat.Idle, endpoint: "http://x/chat", messages: 2}, spin, 80))
	if !strings.Contains(idle, "http://x/chat") || !strings.Contains(idle, "2 messages") {
		t.Fatalf("idle status = %q", idle)
	}

	waiting := ansi.Strip(statusLine(statusInfo{state: chat.Awaiting, since: base, now: base.Add(65 * time.Second)}, spin, 80))
	if !strings.Contains(waiting, "Waiting for reply (1m 05s)") {
		t.Fatalf("awaiting status = %q", waiting)
	}

	failed := ansi.Strip(statusLine(statusInfo{state: chat.Idle, err: errors.New("refused")}, spin, 80))
	if !strings.Contains(failed, "last error: refused") {
		t.Fatalf("error status = %q", failed)
	}
}

func TestClampSpans(t *testing.T) {
	spans := []render.Span{{Text: "hello "}, {Text: "世界世界"}}
	got := clampSpans(spans, 9)
	var sb strings.Builder
	for _, sp := range got {
		sb.WriteString(sp.Text)
	}
	if w := runewidth.StringWidth(sb.String()); w > 9 {
		t.Fatalf("clamped width = %d (%q)", w, sb.String())
	}
	if sb.String() != "hello 世" {
		t.Fatalf("clampSpans() = %q", sb.String())
	}
	if clampSpans(spans, 0) != nil {
		t.Fatalf("zero width should drop everything")
	}
}
