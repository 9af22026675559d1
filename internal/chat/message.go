package chat

import (
	"time"

	"github.com/google/uuid"
)

// Sender 标识消息的发送方。
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message 是对话记录中的一条消息，创建后不再修改。
type Message struct {
	ID        string
	Sender    Sender
	Text      string
	CreatedAt time.Time
}

func newMessage(sender Sender, text string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: now,
	}
}

// State 是会话状态机的两个状态。
type State int

const (
	Idle State = iota
	Awaiting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	default:
		return "unknown"
	}
}
