package tui

import (
	"fmt"
	"strings"
	"time"

	"aichat/internal/chat"
	"aichat/internal/tui/render"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
)

// statusInfo 是渲染状态行所需的快照。
type statusInfo struct {
	state    chat.State
	since    time.Time
	now      time.Time
	endpoint string
	notice   string
	err      error
	messages int
}

// statusLine 绘制状态行：Awaiting 时显示 spinner 与耗时，否则显示端点与提示。
func statusLine(info statusInfo, spin spinner.Model, width int) string {
	spans := []render.Span{}
	if info.state == chat.Awaiting {
		elapsed := fmtElapsedCompact(uint64(info.now.Sub(info.since).Seconds()))
		spans = append(spans,
			render.Span{Text: spin.View()},
			render.Span{Text: " Waiting for reply "},
			render.Span{Text: fmt.Sprintf("(%s)", elapsed), Style: lipgloss.NewStyle().Faint(true)},
		)
	} else {
		parts := []string{info.endpoint, fmt.Sprintf("%d messages", info.messages)}
		spans = append(spans, render.Span{Text: strings.Join(parts, " • "), Style: statusStyle})
	}
	if info.notice != "" {
		spans = append(spans, render.Span{Text: " • " + info.notice, Style: statusStyle})
	}
	if info.err != nil {
		spans = append(spans, render.Span{Text: fmt.Sprintf(" • last error: %v", info.err), Style: errorStyle})
	}
	line := render.LinesToStrings([]render.Line{{Spans: clampSpans(spans, width-2)}})
	return lipgloss.NewStyle().Padding(0, 1).Render(line[0])
}

// fmtElapsedCompact 将秒数格式化为友好字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		minutes := elapsedSecs / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		hours := elapsedSecs / 3600
		minutes := (elapsedSecs % 3600) / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
}

// clampSpans 截断 spans 使其显示宽度不超过 width。spinner 等已带样式的文本按原样计宽。
func clampSpans(spans []render.Span, width int) []render.Span {
	if width <= 0 {
		return nil
	}
	remaining := width
	out := make([]render.Span, 0, len(spans))
	for _, sp := range spans {
		if remaining <= 0 {
			break
		}
		tw := lipgloss.Width(sp.Text)
		if tw <= remaining {
			out = append(out, sp)
			remaining -= tw
			continue
		}
		if text := runewidth.Truncate(sp.Text, remaining, ""); text != "" {
			sp.Text = text
			out = append(out, sp)
		}
		remaining = 0
	}
	return out
}
