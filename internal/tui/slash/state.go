package slash

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

const unknownCommand = "unknown command, type / to list commands"

// State 维护 slash 弹窗的匹配与选择状态。
type State struct {
	items    []Item
	matches  []match
	selected int
	open     bool
	token    string
	args     string
	maxLines int
}

type match struct {
	item       Item
	highlights []int
	score      int
}

// NewState 构造 slash 状态机。
func NewState(maxLines int) *State {
	if maxLines <= 0 {
		maxLines = 6
	}
	return &State{items: builtinItems(), maxLines: maxLines}
}

// Open 返回弹窗是否展示。
func (s *State) Open() bool {
	return s != nil && s.open
}

// Matches 返回当前候选。
func (s *State) Matches() []Item {
	out := make([]Item, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m.item)
	}
	return out
}

// SyncInput 根据最新文本同步过滤列表与选中项。
// 只有单行且仍在输入命令名（尚未出现空白）时弹窗才打开。
func (s *State) SyncInput(value string) {
	if s == nil {
		return
	}
	token, args, ok := parseToken(value)
	s.token, s.args = token, args
	if !ok || strings.Contains(value, "\n") || strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		s.open = false
		s.matches = nil
		return
	}
	s.open = true
	s.matches = filterMatches(s.items, token)
	if s.selected >= len(s.matches) {
		s.selected = 0
	}
}

// ResolveSubmit 按 Enter 行为解析当前输入，不依赖弹窗是否打开。
// 不是已知命令的输入返回 ActionNone，由调用方当作普通消息发送。
func (s *State) ResolveSubmit(value string) Action {
	token, args, ok := parseToken(value)
	if !ok || token == "" {
		return Action{Kind: ActionNone}
	}
	for _, item := range s.items {
		if strings.EqualFold(string(item.Command), token) {
			return Action{Kind: ActionSubmit, Command: item.Command, Args: args}
		}
	}
	return Action{Kind: ActionNone}
}

// HandleKey 处理键盘事件，返回对应动作。
func (s *State) HandleKey(key string) (Action, bool) {
	if s == nil || !s.open {
		return Action{}, false
	}
	switch key {
	case "up", "ctrl+p":
		if len(s.matches) == 0 {
			return Action{Kind: ActionClose}, true
		}
		s.selected--
		if s.selected < 0 {
			s.selected = len(s.matches) - 1
		}
		return Action{Kind: ActionNone}, true
	case "down", "ctrl+n":
		if len(s.matches) == 0 {
			return Action{Kind: ActionClose}, true
		}
		s.selected = (s.selected + 1) % len(s.matches)
		return Action{Kind: ActionNone}, true
	case "esc":
		s.open = false
		return Action{Kind: ActionClose}, true
	case "tab":
		if len(s.matches) == 0 {
			return Action{Kind: ActionError, Message: unknownCommand}, true
		}
		item := s.matches[s.selected].item
		return Action{Kind: ActionInsert, Command: item.Command, NewValue: item.DisplayName() + " "}, true
	case "enter":
		if len(s.matches) == 0 {
			// 没有匹配的命令：收起弹窗，Enter 交给普通发送流程。
			s.open = false
			return Action{}, false
		}
		s.open = false
		return Action{Kind: ActionSubmit, Command: s.matches[s.selected].item.Command, Args: s.args}, true
	default:
		return Action{}, false
	}
}

// Close 收起弹窗。
func (s *State) Close() {
	if s != nil {
		s.open = false
		s.matches = nil
	}
}

func filterMatches(items []Item, query string) []match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]match, 0, len(items))
		for _, item := range items {
			out = append(out, match{item: item})
		}
		return out
	}
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = string(item.Command)
	}
	results := fuzzy.Find(query, keys)
	out := make([]match, 0, len(results))
	for _, res := range results {
		out = append(out, match{item: items[res.Index], highlights: res.MatchedIndexes, score: res.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score == out[j].score {
			return out[i].item.Command < out[j].item.Command
		}
		return out[i].score > out[j].score
	})
	return out
}

// parseToken 拆出 "/name args" 的 name 与 args。
func parseToken(value string) (string, string, bool) {
	line := value
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	rest := line[1:]
	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		return rest, "", true
	}
	return rest[:end], strings.TrimSpace(rest[end:]), true
}
