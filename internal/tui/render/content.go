package render

import (
	"strings"

	"aichat/internal/markdown"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DefaultStyle 是 glamour 的默认标准样式。
const DefaultStyle = "dark"

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d"))
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffffff")).
				Background(lipgloss.Color("#1abc9c")).
				Padding(0, 1)
	tableEvenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ecf0f1")).
			Background(lipgloss.Color("#34495e")).
			Padding(0, 1)
	tableOddStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ecf0f1")).
			Background(lipgloss.Color("#2c3e50")).
			Padding(0, 1)
)

// Renderer 把回复内容转换为终端行。glamour 渲染器按宽度缓存。
// 非并发安全，只在 UI 循环内使用。
type Renderer struct {
	style string
	md    map[int]*glamour.TermRenderer
}

func NewRenderer(style string) *Renderer {
	style = strings.TrimSpace(style)
	if style == "" {
		style = DefaultStyle
	}
	return &Renderer{style: style, md: map[int]*glamour.TermRenderer{}}
}

// Style 返回 glamour 样式名。
func (r *Renderer) Style() string { return r.style }

// Text 先检测表格，再按对应分支渲染。
func (r *Renderer) Text(text string, width int) []string {
	return r.Content(markdown.Render(text), width)
}

// Content 渲染已分类的内容。
func (r *Renderer) Content(c markdown.Content, width int) []string {
	if c.Kind == markdown.KindTable {
		return Table(c.Table, width)
	}
	return r.Markdown(c.Markdown, width)
}

// Markdown 用 glamour 渲染；失败时退回纯文本换行。
func (r *Renderer) Markdown(text string, width int) []string {
	tr, err := r.termRenderer(width)
	if err == nil {
		out, err := tr.Render(text)
		if err == nil {
			return trimBlankEdges(strings.Split(strings.TrimRight(out, "\n"), "\n"))
		}
	}
	return wrapText(strings.TrimRight(text, "\n"), width)
}

func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	if tr, ok := r.md[width]; ok {
		return tr, nil
	}
	opts := []glamour.TermRendererOption{glamour.WithEmoji()}
	switch cfg, ok := styles.DefaultStyles[r.style]; {
	case r.style == "auto":
		opts = append(opts, glamour.WithAutoStyle())
	case ok:
		// 去掉文档外边距，前缀由 transcript 负责。
		c := *cfg
		margin := uint(0)
		c.Document.Margin = &margin
		opts = append(opts, glamour.WithStyles(c))
	default:
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	r.md[width] = tr
	return tr, nil
}

// Table 渲染解析出的表格：表头单独着色，数据行按奇偶交替底色。
// 分隔线只画在同一行相邻的两个单元格之间，短行最后一个单元格之后不画。
// 总宽超过 width 时收窄最宽的列并截断单元格。
func Table(t markdown.ParsedTable, width int) []string {
	cols := t.Columns()
	if cols == 0 {
		return nil
	}
	widths := columnWidths(t, cols)
	shrinkColumns(widths, width)

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, tableRow(t.Headers, widths, tableHeaderStyle))
	lines = append(lines, tableRule(widths))
	for i, row := range t.Rows {
		style := tableEvenStyle
		if i%2 == 1 {
			style = tableOddStyle
		}
		lines = append(lines, tableRow(row, widths, style))
	}
	return lines
}

// columnWidths 返回每列含左右内边距的显示宽度。
func columnWidths(t markdown.ParsedTable, cols int) []int {
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if w := ansi.StringWidth(cell) + 2; w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}
	return widths
}

func shrinkColumns(widths []int, width int) {
	if width <= 0 {
		return
	}
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	for total > width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 3 {
			return
		}
		widths[widest]--
		total--
	}
}

func tableRow(row []string, widths []int, style lipgloss.Style) string {
	var sb strings.Builder
	for i, w := range widths {
		if i >= len(row) {
			sb.WriteString(strings.Repeat(" ", w+1))
			continue
		}
		text := ansi.Truncate(row[i], w-2, "…")
		sb.WriteString(style.Width(w).MaxWidth(w).Render(text))
		if i < len(row)-1 && i < len(widths)-1 {
			sb.WriteString(tableBorderStyle.Render("│"))
		} else if i < len(widths)-1 {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func tableRule(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return tableBorderStyle.Render(strings.Join(parts, "┼"))
}

func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(ansi.Strip(lines[start])) == "" {
		start++
	}
	for end > start && strings.TrimSpace(ansi.Strip(lines[end-1])) == "" {
		end--
	}
	if start == end {
		return []string{""}
	}
	return lines[start:end]
}
