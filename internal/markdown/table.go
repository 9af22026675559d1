package markdown

import "strings"

// ParsedTable 是从回复文本中抽取出的表格结构。
// 行的单元格数量不强制与表头一致，畸形输入会得到参差的行。
type ParsedTable struct {
	Headers []string
	Rows    [][]string
}

// Columns 返回表头与所有行中最大的单元格数量。
func (t ParsedTable) Columns() int {
	n := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Ragged 判断是否存在单元格数量与表头不一致的行。
func (t ParsedTable) Ragged() bool {
	for _, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return true
		}
	}
	return false
}

type lineKind int

const (
	lineOther lineKind = iota
	lineRow
	lineSeparator
)

// ParseTable 在文本中查找第一个 Markdown 表格：
// 一行 `| a | b |` 形式的表头，紧跟一行或多行分隔行，再跟零行或多行数据行。
// 只抽取第一个表格，表格前后的文字在表格渲染中被丢弃。
func ParseTable(text string) (ParsedTable, bool) {
	lines := splitLines(text)
	kinds := make([]lineKind, len(lines))
	for i, line := range lines {
		kinds[i] = classify(line)
	}

	header := -1
	for i := 0; i+1 < len(lines); i++ {
		if kinds[i] != lineOther && kinds[i+1] == lineSeparator {
			header = i
			break
		}
	}
	if header < 0 {
		return ParsedTable{}, false
	}

	table := ParsedTable{Headers: splitRow(lines[header])}
	i := header + 1
	for i < len(lines) && kinds[i] == lineSeparator {
		i++
	}
	// 进入数据区后，分隔行形状的行也按数据行处理。
	for ; i < len(lines) && kinds[i] != lineOther; i++ {
		table.Rows = append(table.Rows, splitRow(lines[i]))
	}
	return table, true
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func classify(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	// `||` 是只有一个空单元格的行。
	if len(trimmed) < 2 || !strings.HasPrefix(trimmed, "|") || !strings.HasSuffix(trimmed, "|") {
		return lineOther
	}
	segments := strings.Split(trimmed[1:len(trimmed)-1], "|")
	for _, seg := range segments {
		if !isSeparatorSegment(seg) {
			return lineRow
		}
	}
	return lineSeparator
}

func isSeparatorSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		switch r {
		case '-', ':', ' ', '\t', '\v', '\f':
		default:
			return false
		}
	}
	return true
}

// splitRow 按 `|` 切分，去掉首尾管道产生的空段并逐个 trim。
func splitRow(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) < 2 {
		return []string{}
	}
	parts = parts[1 : len(parts)-1]
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
