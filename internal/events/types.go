package events

import "time"

// EventType 描述会话事件类型。
type EventType string

const (
	// EventSubmitted 在用户消息被接受并追加到对话记录后发出。
	EventSubmitted EventType = "exchange.submitted"
	// EventResolved 在回复（或兜底文案）追加后发出，状态已回到 Idle。
	EventResolved EventType = "exchange.resolved"
)

// Submitted 是 EventSubmitted 的载荷。
type Submitted struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
}

// Resolved 是 EventResolved 的载荷。
type Resolved struct {
	MessageID  string `json:"message_id"`
	OK         bool   `json:"ok"`
	Text       string `json:"text"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// Event 是总线上传递的唯一消息格式，Payload 的结构由 Type 决定。
type Event struct {
	Type       EventType
	ExchangeID string
	Timestamp  time.Time
	Payload    any
}
