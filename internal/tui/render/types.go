package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Span 表示一段文本及其样式。
type Span struct {
	Text  string
	Style lipgloss.Style
}

// Line 由多个 Span 组成，可选整体样式。
type Line struct {
	Spans []Span
	Style lipgloss.Style
}

// PlainLine 把已渲染好的字符串（可能含 ANSI）包装为不再加样式的行。
func PlainLine(text string) Line {
	return Line{Spans: []Span{{Text: text}}}
}

// LinesToStrings 将样式化的行转换为字符串列表。
func LinesToStrings(lines []Line) []string {
	return flatten(lines, true)
}

// LinesToPlainStrings 只拼接文本，不输出任何样式。
func LinesToPlainStrings(lines []Line) []string {
	return flatten(lines, false)
}

func flatten(lines []Line, styled bool) []string {
	out := make([]string, len(lines))
	var sb strings.Builder
	for i, line := range lines {
		sb.Reset()
		for _, sp := range line.Spans {
			if styled {
				sb.WriteString(sp.Style.Render(sp.Text))
			} else {
				sb.WriteString(sp.Text)
			}
		}
		if styled {
			out[i] = line.Style.Render(sb.String())
		} else {
			out[i] = sb.String()
		}
	}
	return out
}

// PrefixLines 给首行加 initial，其余行加 subsequent（通常是等宽缩进）。
func PrefixLines(lines []Line, initial Span, subsequent Span) []Line {
	out := make([]Line, len(lines))
	prefix := initial
	for i, l := range lines {
		out[i] = Line{Spans: append([]Span{prefix}, l.Spans...), Style: l.Style}
		prefix = subsequent
	}
	return out
}
