package render

import (
	"aichat/internal/chat"

	"github.com/charmbracelet/lipgloss"
)

var (
	userPrefixStyle = lipgloss.NewStyle().Faint(true).Bold(true)
	userIndentStyle = lipgloss.NewStyle().Faint(true)
	aiPrefixStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	aiIndentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
)

// Transcript 渲染对话记录。消息不可变，因此按消息 ID 缓存渲染结果，宽度变化时清空。
type Transcript struct {
	renderer *Renderer
	width    int
	cache    map[string][]Line
}

func NewTranscript(renderer *Renderer, width int) *Transcript {
	if renderer == nil {
		renderer = NewRenderer(DefaultStyle)
	}
	if width <= 0 {
		width = 80
	}
	return &Transcript{renderer: renderer, width: width, cache: map[string][]Line{}}
}

// SetWidth 更新渲染宽度。
func (t *Transcript) SetWidth(width int) {
	if width > 0 && width != t.width {
		t.width = width
		t.cache = map[string][]Line{}
	}
}

// Width 返回当前渲染宽度。
func (t *Transcript) Width() int { return t.width }

// Lines 按顺序渲染全部消息。
func (t *Transcript) Lines(msgs []chat.Message) []Line {
	out := []Line{}
	for _, msg := range msgs {
		lines, ok := t.cache[msg.ID]
		if !ok || msg.ID == "" {
			lines = t.renderMessage(msg)
			if msg.ID != "" {
				t.cache[msg.ID] = lines
			}
		}
		out = append(out, lines...)
	}
	return out
}

// Render 返回带样式的字符串行。
func (t *Transcript) Render(msgs []chat.Message) []string {
	return LinesToStrings(t.Lines(msgs))
}

func (t *Transcript) renderMessage(msg chat.Message) []Line {
	switch msg.Sender {
	case chat.SenderUser:
		return renderUserLines(t.renderer, msg.Text, t.width)
	default:
		return renderAILines(t.renderer, msg.Text, t.width)
	}
}

func contentWidth(width int) int {
	if width-2 < 1 {
		return width
	}
	return width - 2
}

// renderUserLines 与 AI 回复走同一套内容渲染，用户粘贴的表格也按表格展示。
func renderUserLines(r *Renderer, text string, width int) []Line {
	body := []Line{}
	for _, l := range r.Text(text, contentWidth(width)) {
		body = append(body, PlainLine(l))
	}
	if len(body) == 0 {
		body = []Line{{}}
	}
	prefixed := PrefixLines(body, Span{Text: "› ", Style: userPrefixStyle}, Span{Text: "  ", Style: userIndentStyle})
	lines := make([]Line, 0, len(prefixed)+2)
	lines = append(lines, Line{})
	lines = append(lines, prefixed...)
	lines = append(lines, Line{})
	return lines
}

func renderAILines(r *Renderer, text string, width int) []Line {
	body := []Line{}
	for _, l := range r.Text(text, contentWidth(width)) {
		body = append(body, PlainLine(l))
	}
	if len(body) == 0 {
		body = []Line{{}}
	}
	return PrefixLines(body, Span{Text: "• ", Style: aiPrefixStyle}, Span{Text: "  ", Style: aiIndentStyle})
}
