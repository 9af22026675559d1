package slash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C4A1FF"))
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EBCB8B"))
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#2F2A3D"))
)

// View 渲染弹窗内容（不含外围边框）。
func (s *State) View(width int) string {
	if s == nil || !s.open {
		return ""
	}
	if width <= 20 {
		width = 20
	}
	if len(s.matches) == 0 {
		return descStyle.Render("no matches")
	}

	nameWidth := 0
	for _, m := range s.matches {
		nameWidth = max(nameWidth, runewidth.StringWidth(m.item.DisplayName()))
	}

	start := 0
	if s.selected >= s.maxLines {
		start = s.selected - s.maxLines + 1
	}
	end := min(len(s.matches), start+s.maxLines)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		m := s.matches[i]
		name := applyHighlights(m.item.DisplayName(), m.highlights)
		pad := strings.Repeat(" ", nameWidth-runewidth.StringWidth(m.item.DisplayName())+2)
		desc := runewidth.Truncate(m.item.Description, max(0, width-nameWidth-2), "…")
		line := name + pad + descStyle.Render(desc)
		if i == s.selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// applyHighlights 高亮模糊匹配命中的字符；索引基于不含斜杠的命令名。
func applyHighlights(name string, indexes []int) string {
	marked := map[int]bool{}
	for _, idx := range indexes {
		marked[idx+1] = true
	}
	var sb strings.Builder
	for i, r := range []rune(name) {
		if marked[i] {
			sb.WriteString(highlightStyle.Render(string(r)))
			continue
		}
		sb.WriteString(nameStyle.Render(string(r)))
	}
	return sb.String()
}
