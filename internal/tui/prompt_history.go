package tui

import "strings"

// maxPromptHistory 限制会话内保留的输入条数。
const maxPromptHistory = 200

// promptHistory 记录本次会话已发送的输入，供上下箭头回填。只在内存中保存。
// cursor == len(entries) 表示停在正在编辑的草稿上。
type promptHistory struct {
	entries []string
	cursor  int
	draft   string
}

func (h *promptHistory) Set(entries []string) {
	h.entries = h.entries[:0]
	for _, e := range entries {
		h.push(e)
	}
	h.ResetBrowsing()
}

// Add 追加一条已发送的输入；与上一条相同时不重复记录。
func (h *promptHistory) Add(text string) {
	h.push(text)
	h.ResetBrowsing()
}

func (h *promptHistory) push(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == text {
		return
	}
	h.entries = append(h.entries, text)
	if over := len(h.entries) - maxPromptHistory; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

func (h *promptHistory) Browsing() bool {
	return h.cursor < len(h.entries)
}

func (h *promptHistory) ResetBrowsing() {
	h.cursor = len(h.entries)
	h.draft = ""
}

// Prev 后退一条；第一次后退时保存当前草稿。
func (h *promptHistory) Prev(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if !h.Browsing() {
		h.draft = current
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next 前进一条，越过最新一条时恢复草稿。
func (h *promptHistory) Next() (string, bool) {
	if !h.Browsing() {
		return "", false
	}
	h.cursor++
	if h.Browsing() {
		return h.entries[h.cursor], true
	}
	draft := h.draft
	h.draft = ""
	return draft, true
}
