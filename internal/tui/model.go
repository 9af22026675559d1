package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aichat/internal/chat"
	"aichat/internal/logger"
	"aichat/internal/tui/render"
	"aichat/internal/tui/slash"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const welcomeText = "Type a message and press Enter. /help lists commands."

// ErrNoConversation 表示未提供会话状态机。
var ErrNoConversation = errors.New("tui: conversation is required")

type Options struct {
	// Conversation 必填，New 遇到 nil 会 panic，Run 返回 ErrNoConversation。
	Conversation *chat.Conversation
	Renderer     *render.Renderer
	Endpoint     string
	// Context 约束在途请求；退出 TUI 时由 Run 取消。
	Context context.Context
	Log     *logger.LogEntry
	// Clipboard 为 /copy 的写入函数，默认使用系统剪贴板。
	Clipboard func(string) error
	Now       func() time.Time
	// History 预填输入历史（上下箭头）。
	History []string
	Inline  bool
}

// exchangeResultMsg 携带 Exchange.Run 的结果回到 Update。
type exchangeResultMsg struct {
	Result chat.Result
}

type Model struct {
	textarea   textarea.Model
	viewport   viewport.Model
	spin       spinner.Model
	conv       *chat.Conversation
	transcript *render.Transcript
	history    promptHistory
	slash      *slash.State

	ctx       context.Context
	log       *logger.LogEntry
	clipboard func(string) error
	now       func() time.Time
	endpoint  string

	since    time.Time
	notice   string
	err      error
	width    int
	height   int
	showHelp bool
}

func New(opts Options) *Model {
	ti := textarea.New()
	ti.Placeholder = "Ask anything…"
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.SetWidth(90)
	ti.SetHeight(1) // 默认单行，按需扩展
	ti.ShowLineNumbers = false
	ti.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ti.Focus()

	vp := viewport.New(86, 12)
	vp.SetContent(welcomeText)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	conv := opts.Conversation
	if conv == nil {
		panic(ErrNoConversation)
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &Model{
		textarea:   ti,
		viewport:   vp,
		spin:       spin,
		conv:       conv,
		transcript: render.NewTranscript(opts.Renderer, 86),
		slash:      slash.NewState(6),
		ctx:        ctx,
		log:        log,
		clipboard:  copyFn,
		now:        now,
		endpoint:   opts.Endpoint,
		width:      90,
		height:     24,
	}
	m.history.Set(opts.History)
	m.resize(m.width, m.height)
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case exchangeResultMsg:
		m.resolve(msg.Result)
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if action, handled := m.slash.HandleKey(msg.String()); handled {
			return m, m.applySlash(action)
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.showHelp {
				m.showHelp = false
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "up":
			if m.textarea.LineCount() <= 1 {
				if value, ok := m.history.Prev(m.textarea.Value()); ok {
					m.setInput(value)
				}
				return m, nil
			}
		case "down":
			if m.textarea.LineCount() <= 1 && m.history.Browsing() {
				if value, ok := m.history.Next(); ok {
					m.setInput(value)
				}
				return m, nil
			}
		case "enter":
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.slash.SyncInput(m.textarea.Value())
	m.setComposerHeight()
	return m, tea.Batch(cmds...)
}

// submit 处理 Enter：已知斜杠命令在本地执行，其余（包括 "/etc/hosts ..." 这类文本）交给会话状态机。
func (m *Model) submit() tea.Cmd {
	value := m.textarea.Value()
	if strings.HasPrefix(strings.TrimSpace(value), "/") {
		if action := m.slash.ResolveSubmit(strings.TrimSpace(value)); action.Kind == slash.ActionSubmit {
			return m.applySlash(action)
		}
	}

	ex, err := m.conv.Submit(value)
	if err != nil {
		// Awaiting 或空输入：忽略，保留输入框内容。
		if !errors.Is(err, chat.ErrBusy) && !errors.Is(err, chat.ErrEmptyInput) {
			m.err = err
		}
		return nil
	}
	m.history.Add(value)
	m.textarea.Reset()
	m.slash.Close()
	m.setComposerHeight()
	m.since = m.now()
	m.notice = ""
	m.err = nil
	m.refreshTranscript(true)

	ctx := m.ctx
	return func() tea.Msg {
		return exchangeResultMsg{Result: ex.Run(ctx)}
	}
}

func (m *Model) resolve(res chat.Result) {
	if _, err := m.conv.Resolve(res); err != nil {
		m.log.Warnf("discard exchange result %s: %v", res.ExchangeID, err)
		return
	}
	if res.Err != nil {
		m.err = res.Err
	}
	m.refreshTranscript(true)
}

func (m *Model) applySlash(action slash.Action) tea.Cmd {
	switch action.Kind {
	case slash.ActionInsert:
		m.setInput(action.NewValue)
		return nil
	case slash.ActionError:
		m.notice = action.Message
		return nil
	case slash.ActionClose:
		m.slash.Close()
		return nil
	case slash.ActionSubmit:
		m.textarea.Reset()
		m.slash.Close()
		m.setComposerHeight()
		return m.runCommand(action.Command)
	}
	return nil
}

// runCommand 执行本地命令；不会修改对话记录。
func (m *Model) runCommand(cmd slash.Command) tea.Cmd {
	switch cmd {
	case slash.CommandHelp:
		m.showHelp = !m.showHelp
	case slash.CommandCopy:
		reply, ok := m.conv.LastReply()
		if !ok {
			m.notice = "nothing to copy yet"
			return nil
		}
		if err := m.clipboard(reply.Text); err != nil {
			m.notice = fmt.Sprintf("copy failed: %v", err)
			return nil
		}
		m.notice = "copied last reply"
	case slash.CommandStatus:
		m.notice = fmt.Sprintf("endpoint %s • %s • %d messages", m.endpoint, m.conv.State(), m.conv.Len())
	case slash.CommandQuit, slash.CommandExit:
		return tea.Quit
	}
	return nil
}

func (m *Model) setInput(value string) {
	m.textarea.SetValue(value)
	m.textarea.CursorEnd()
	m.slash.SyncInput(value)
	m.setComposerHeight()
}

func (m *Model) View() string {
	header := renderHeader(m.endpoint, m.width)
	chatPane := renderPane("", m.viewport.View(), m.width, m.viewport.Height)
	composer := renderPane("", m.textarea.View(), m.width, m.textarea.Height())
	status := statusLine(statusInfo{
		state:    m.conv.State(),
		since:    m.since,
		now:      m.now(),
		endpoint: m.endpoint,
		notice:   m.notice,
		err:      m.err,
		messages: m.conv.Len(),
	}, m.spin, m.width)
	hints := renderHints(m.width)

	parts := []string{header, chatPane}
	if m.slash.Open() {
		parts = append(parts, m.slash.View(m.width))
	}
	parts = append(parts, composer, status, hints)
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.showHelp {
		help := strings.Join([]string{
			"快捷键",
			"Enter 发送 • Alt+Enter 换行 • ↑/↓ 历史 • PgUp/PgDn 滚动 • Ctrl+C 退出",
			"/help 帮助 • /copy 复制回复 • /status 状态 • /quit 退出",
		}, "\n")
		return lipgloss.JoinVertical(lipgloss.Left, content, modalStyle.Render(help))
	}
	return content
}

// Messages 返回会话记录的副本。
func (m *Model) Messages() []chat.Message {
	return m.conv.Messages()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	composerHeight := m.textarea.Height() + 2 // border
	headerHeight := 1
	statusHeight := 1
	hintsHeight := 1
	viewHeight := height - headerHeight - composerHeight - statusHeight - hintsHeight - 2
	if viewHeight < 3 {
		viewHeight = 3
	}
	innerWidth := maxInt(10, width-4) // border + padding
	m.viewport.Width = innerWidth
	m.viewport.Height = viewHeight
	m.textarea.SetWidth(innerWidth)
	m.transcript.SetWidth(innerWidth)
	m.refreshTranscript(false)
}

func (m *Model) setComposerHeight() {
	lines := strings.Count(m.textarea.Value(), "\n") + 1
	if lines > 6 {
		lines = 6
	}
	if m.textarea.Height() != lines {
		m.textarea.SetHeight(lines)
		m.resize(m.width, m.height)
	}
}

// refreshTranscript 重新渲染对话；follow 为真或已在底部时滚动到底。
func (m *Model) refreshTranscript(follow bool) {
	atBottom := m.viewport.AtBottom()
	lines := m.transcript.Render(m.conv.Messages())
	if len(lines) == 0 {
		m.viewport.SetContent(welcomeText)
		return
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if follow || atBottom {
		m.viewport.GotoBottom()
	}
}

func renderHeader(endpoint string, width int) string {
	left := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Render("AI Chat")
	right := lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85")).Render(endpoint)
	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(maxInt(20, width)).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().PaddingLeft(2).Render(right)))
}

func renderPane(title string, body string, width int, height int) string {
	titleText := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Render(title)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5E6472")).
		Padding(0, 1)
	if width > 2 {
		style = style.Width(width - 2)
	}
	if height > 0 {
		if strings.TrimSpace(title) != "" {
			height++
		}
		style = style.Height(height)
	}
	content := body
	if strings.TrimSpace(title) != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, titleText, body)
	}
	return style.Render(content)
}

func renderHints(width int) string {
	hint := "Enter 发送 • Alt+Enter 换行 • ↑/↓ 历史 • PgUp/PgDn 滚动 • / 命令 • Ctrl+C 退出"
	hint = runewidth.Truncate(hint, maxInt(10, width-2), "…")
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D7A85")).
		Padding(0, 1).
		Width(maxInt(20, width)).
		Render(hint)
}

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(1).
	BorderForeground(lipgloss.Color("#FFB454")).
	Background(lipgloss.Color("#1F1D2B"))

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
