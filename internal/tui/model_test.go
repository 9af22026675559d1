package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"aichat/internal/chat"
	"aichat/internal/tui/render"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

type stubTransport struct {
	mu    sync.Mutex
	reply string
	err   error
	sent  []string
}

func (s *stubTransport) Send(_ context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, message)
	return s.reply, s.err
}

func newTestModel(t *testing.T, tr *stubTransport) (*Model, *[]string) {
	t.Helper()
	copied := []string{}
	m := New(Options{
		Conversation: chat.New(tr),
		Renderer:     render.NewRenderer("notty"),
		Endpoint:     "http://localhost:5000/chat",
		Clipboard: func(text string) error {
			copied = append(copied, text)
			return nil
		},
		Now: func() time.Time { return time.Unix(100, 0) },
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return m, &copied
}

func enter(m *Model) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func typeAndSubmit(t *testing.T, m *Model, text string) tea.Cmd {
	t.Helper()
	m.textarea.SetValue(text)
	return enter(m)
}

func TestModel_SubmitRoundTrip(t *testing.T) {
	tr := &stubTransport{reply: "4"}
	m, _ := newTestModel(t, tr)

	cmd := typeAndSubmit(t, m, "2+2")
	if cmd == nil {
		t.Fatalf("expected exchange command")
	}
	if got := m.conv.State(); got != chat.Awaiting {
		t.Fatalf("state = %v, want Awaiting", got)
	}
	if m.textarea.Value() != "" {
		t.Fatalf("composer not cleared: %q", m.textarea.Value())
	}
	if msgs := m.Messages(); len(msgs) != 1 || msgs[0].Text != "2+2" {
		t.Fatalf("optimistic user message missing: %+v", msgs)
	}

	m.Update(cmd())

	msgs := m.Messages()
	if len(msgs) != 2 || msgs[1].Sender != chat.SenderAI || msgs[1].Text != "4" {
		t.Fatalf("messages = %+v", msgs)
	}
	if m.conv.State() != chat.Idle {
		t.Fatalf("state = %v, want Idle", m.conv.State())
	}
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "› 2+2") || !strings.Contains(view, "• 4") {
		t.Fatalf("view missing transcript:\n%s", view)
	}
}

func TestModel_SubmitWhileAwaitingIsIgnored(t *testing.T) {
	tr := &stubTransport{reply: "ok"}
	m, _ := newTestModel(t, tr)

	first := typeAndSubmit(t, m, "first")
	if first == nil {
		t.Fatalf("expected exchange command")
	}
	if cmd := typeAndSubmit(t, m, "second"); cmd != nil {
		t.Fatalf("second submit should be ignored")
	}
	if m.textarea.Value() != "second" {
		t.Fatalf("ignored input should stay in composer, got %q", m.textarea.Value())
	}
	if got := len(m.Messages()); got != 1 {
		t.Fatalf("len(messages) = %d, want 1", got)
	}
	m.Update(first())
	if len(tr.sent) != 1 || tr.sent[0] != "first" {
		t.Fatalf("sent = %v", tr.sent)
	}
}

func TestModel_BlankInputIsIgnored(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{reply: "x"})
	if cmd := typeAndSubmit(t, m, "   \n "); cmd != nil {
		t.Fatalf("blank input should not submit")
	}
	if m.conv.Len() != 0 || m.conv.State() != chat.Idle {
		t.Fatalf("blank input changed state")
	}
}

func TestModel_FailureAppendsFallback(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{err: errors.New("connection refused")})

	cmd := typeAndSubmit(t, m, "hello")
	m.Update(cmd())

	msgs := m.Messages()
	if len(msgs) != 2 || msgs[1].Text != chat.FallbackText {
		t.Fatalf("messages = %+v", msgs)
	}
	if m.err == nil {
		t.Fatalf("expected error to be surfaced in the status line")
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "last error: connection refused") {
		t.Fatalf("status missing error:\n%s", view)
	}
}

func TestModel_StatusShowsElapsedWhileAwaiting(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{reply: "later"})
	now := time.Unix(100, 0)
	m.now = func() time.Time { return now }

	typeAndSubmit(t, m, "slow question")
	now = now.Add(3 * time.Second)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "Waiting for reply (3s)") {
		t.Fatalf("status missing elapsed time:\n%s", view)
	}
}

func TestModel_SlashCopyUsesLastReply(t *testing.T) {
	m, copied := newTestModel(t, &stubTransport{reply: "| A |\n| - |\n| 1 |"})
	cmd := typeAndSubmit(t, m, "table")
	m.Update(cmd())

	if cmd := typeAndSubmit(t, m, "/copy"); cmd != nil {
		t.Fatalf("/copy should not return a command")
	}
	if len(*copied) != 1 || (*copied)[0] != "| A |\n| - |\n| 1 |" {
		t.Fatalf("copied = %q", *copied)
	}
	if m.conv.Len() != 2 {
		t.Fatalf("slash command must not touch the transcript, len = %d", m.conv.Len())
	}
	if m.notice != "copied last reply" {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestModel_SlashCopyWithoutReply(t *testing.T) {
	m, copied := newTestModel(t, &stubTransport{})
	typeAndSubmit(t, m, "/copy")
	if len(*copied) != 0 {
		t.Fatalf("nothing should be copied")
	}
	if m.notice != "nothing to copy yet" {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestModel_SlashQuit(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{})
	cmd := typeAndSubmit(t, m, "/quit")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestModel_UnknownSlashTextIsSentAsMessage(t *testing.T) {
	for _, text := range []string{"/etc/hosts what is this file?", "/h is for help?"} {
		tr := &stubTransport{reply: "ok"}
		m, _ := newTestModel(t, tr)
		cmd := typeAndSubmit(t, m, text)
		if cmd == nil {
			t.Fatalf("%q: expected exchange command", text)
		}
		m.Update(cmd())
		if len(tr.sent) != 1 || tr.sent[0] != text {
			t.Fatalf("%q: sent = %v", text, tr.sent)
		}
		if msgs := m.Messages(); len(msgs) != 2 || msgs[0].Text != text {
			t.Fatalf("%q: messages = %+v", text, msgs)
		}
	}
}

func TestModel_EnterWithOpenPopupAndNoMatchSends(t *testing.T) {
	tr := &stubTransport{reply: "ok"}
	m, _ := newTestModel(t, tr)
	m.setInput("/etc/hosts")
	if !m.slash.Open() {
		t.Fatalf("popup should be open while typing a command token")
	}
	cmd := enter(m)
	if cmd == nil {
		t.Fatalf("expected exchange command")
	}
	m.Update(cmd())
	if len(tr.sent) != 1 || tr.sent[0] != "/etc/hosts" {
		t.Fatalf("sent = %v", tr.sent)
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{})
	typeAndSubmit(t, m, "/help")
	if !m.showHelp {
		t.Fatalf("/help should open help")
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "/copy 复制回复") {
		t.Fatalf("help overlay missing:\n%s", view)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Fatalf("esc should close help")
	}
}

func TestModel_HistoryRecall(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{reply: "ok"})
	cmd := typeAndSubmit(t, m, "remember me")
	m.Update(cmd())

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.textarea.Value(); got != "remember me" {
		t.Fatalf("up = %q, want previous prompt", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.textarea.Value(); got != "" {
		t.Fatalf("down = %q, want draft", got)
	}
}

func TestModel_StaleResultIsDiscarded(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{reply: "ok"})
	m.Update(exchangeResultMsg{Result: chat.Result{ExchangeID: "bogus", Text: "late"}})
	if m.conv.Len() != 0 {
		t.Fatalf("stale result should not be appended")
	}
}

func TestModel_ResizeKeepsLayoutWithinHeight(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{})
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if m.viewport.Width != 56 {
		t.Fatalf("viewport width = %d, want 56", m.viewport.Width)
	}
	if h := strings.Count(m.View(), "\n") + 1; h > 20 {
		t.Fatalf("view height = %d, want <= 20", h)
	}
}

func TestNew_RequiresConversation(t *testing.T) {
	defer func() {
		if r := recover(); r != ErrNoConversation {
			t.Fatalf("recover() = %v, want ErrNoConversation", r)
		}
	}()
	New(Options{Renderer: render.NewRenderer("notty")})
}

func TestRun_RequiresConversation(t *testing.T) {
	if _, err := Run(Options{}); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("Run() error = %v, want ErrNoConversation", err)
	}
}
