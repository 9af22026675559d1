package render

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// wrapText 按显示宽度换行：在空白处断开，超宽的词按字符切分，空行保留。
// width <= 0 时只按换行符拆分。
func wrapText(text string, width int) []string {
	lines := strings.Split(text, "\n")
	if width <= 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	var out []string
	var cur strings.Builder
	curWidth := 0
	flush := func() {
		if curWidth > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curWidth = 0
		}
	}
	for _, word := range strings.Fields(line) {
		ww := runewidth.StringWidth(word)
		switch {
		case curWidth > 0 && curWidth+1+ww <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curWidth += 1 + ww
		case ww <= width:
			flush()
			cur.WriteString(word)
			curWidth = ww
		default:
			flush()
			pieces := breakLongWord(word, width)
			out = append(out, pieces[:len(pieces)-1]...)
			last := pieces[len(pieces)-1]
			cur.WriteString(last)
			curWidth = runewidth.StringWidth(last)
		}
	}
	flush()
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// breakLongWord 按显示宽度切分单词，宽字符不会被拆开。
func breakLongWord(word string, width int) []string {
	var out []string
	for word != "" {
		head := runewidth.Truncate(word, width, "")
		if head == "" {
			// 单个字符已宽于 width，独占一行。
			_, size := utf8.DecodeRuneInString(word)
			head = word[:size]
		}
		out = append(out, head)
		word = word[len(head):]
	}
	return out
}
