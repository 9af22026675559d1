package markdown

// Kind 区分两种渲染结果。
type Kind int

const (
	KindMarkdown Kind = iota
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	default:
		return "markdown"
	}
}

// Content 是渲染决策的结果：要么是解析出的表格，要么是原文按 Markdown 处理。
type Content struct {
	Kind     Kind
	Table    ParsedTable
	Markdown string
}

// Render 先尝试表格检测，失败时回退到通用 Markdown。
// 纯函数，相同输入得到相同结果。
func Render(text string) Content {
	if table, ok := ParseTable(text); ok {
		return Content{Kind: KindTable, Table: table}
	}
	return Content{Kind: KindMarkdown, Markdown: text}
}
