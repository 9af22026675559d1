package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"aichat/internal/events"
	"aichat/internal/logger"

	"github.com/google/uuid"
)

// FallbackText 是请求失败时追加的固定 AI 消息。
const FallbackText = "Sorry, something went wrong. Please try again."

var (
	// ErrBusy 表示已有请求在途，本次提交被拒绝。
	ErrBusy = errors.New("chat: a request is already in flight")
	// ErrEmptyInput 表示输入去除空白后为空。
	ErrEmptyInput = errors.New("chat: empty input")
	// ErrNotAwaiting 表示 Resolve 时没有在途请求。
	ErrNotAwaiting = errors.New("chat: no request in flight")
	// ErrStaleResult 表示结果不属于当前在途请求。
	ErrStaleResult = errors.New("chat: result does not match the request in flight")
)

// Transport 发送一条消息并返回完整回复文本。
type Transport interface {
	Send(ctx context.Context, message string) (string, error)
}

// Option 配置 Conversation。
type Option func(*Conversation)

// WithEvents 让会话在提交和完成时向 bus 发布事件。
func WithEvents(bus *events.Bus) Option {
	return func(c *Conversation) { c.bus = bus }
}

// WithLogger 设置会话日志。
func WithLogger(log *logger.LogEntry) Option {
	return func(c *Conversation) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock 替换时间来源（测试用）。
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		if now != nil {
			c.now = now
		}
	}
}

// Conversation 持有对话记录与 Idle/Awaiting 状态。
//
// 所有状态迁移都在锁内完成；网络调用由 Exchange.Run 在锁外进行，
// 结果通过 Resolve 回到状态机。同一时刻最多只有一个在途请求。
type Conversation struct {
	mu         sync.Mutex
	transport  Transport
	transcript []Message
	state      State
	pending    *Exchange

	bus *events.Bus
	log *logger.LogEntry
	now func() time.Time
}

// New 创建处于 Idle 的空会话。
func New(transport Transport, opts ...Option) *Conversation {
	c := &Conversation{
		transport: transport,
		log:       logger.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exchange 是一次已被接受、尚未完成的请求。
type Exchange struct {
	ID     string
	Prompt string

	startedAt time.Time
	transport Transport
}

// Result 是 Exchange.Run 的结果，交给 Conversation.Resolve。
type Result struct {
	ExchangeID string
	Text       string
	Err        error
}

// Run 发送一次请求。不重试，只会因 ctx 结束而提前返回。
func (e *Exchange) Run(ctx context.Context) Result {
	text, err := e.transport.Send(ctx, e.Prompt)
	return Result{ExchangeID: e.ID, Text: text, Err: err}
}

// Submit 追加用户消息并进入 Awaiting。
// Awaiting 中或输入为空时返回错误且不改变任何状态。
func (c *Conversation) Submit(text string) (*Exchange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Awaiting {
		return nil, ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	now := c.now()
	msg := newMessage(SenderUser, text, now)
	c.transcript = append(c.transcript, msg)
	c.state = Awaiting
	ex := &Exchange{
		ID:        uuid.NewString(),
		Prompt:    text,
		startedAt: now,
		transport: c.transport,
	}
	c.pending = ex

	c.log.WithFields(logger.Fields{"exchange_id": ex.ID, "chars": len(text)}).Info("submitted")
	c.publish(events.Event{
		Type:       events.EventSubmitted,
		ExchangeID: ex.ID,
		Timestamp:  now,
		Payload:    events.Submitted{MessageID: msg.ID, Text: text},
	})
	return ex, nil
}

// Resolve 追加 AI 回复（失败时为 FallbackText）并回到 Idle。
func (c *Conversation) Resolve(res Result) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Awaiting || c.pending == nil {
		return Message{}, ErrNotAwaiting
	}
	if res.ExchangeID != c.pending.ID {
		return Message{}, ErrStaleResult
	}

	now := c.now()
	text := res.Text
	if res.Err != nil {
		text = FallbackText
	}
	msg := newMessage(SenderAI, text, now)
	c.transcript = append(c.transcript, msg)
	c.state = Idle
	ex := c.pending
	c.pending = nil

	elapsed := now.Sub(ex.startedAt)
	entry := c.log.WithFields(logger.Fields{"exchange_id": ex.ID, "duration_ms": elapsed.Milliseconds()})
	payload := events.Resolved{MessageID: msg.ID, OK: res.Err == nil, Text: text, DurationMs: elapsed.Milliseconds()}
	if res.Err != nil {
		payload.Error = res.Err.Error()
		entry.WithError(res.Err).Warn("exchange failed, appended fallback")
	} else {
		entry.Info("resolved")
	}
	c.publish(events.Event{
		Type:       events.EventResolved,
		ExchangeID: ex.ID,
		Timestamp:  now,
		Payload:    payload,
	})
	return msg, nil
}

// Ask 同步完成一次 Submit、Run、Resolve。
func (c *Conversation) Ask(ctx context.Context, text string) (Message, error) {
	ex, err := c.Submit(text)
	if err != nil {
		return Message{}, err
	}
	return c.Resolve(ex.Run(ctx))
}

// State 返回当前状态。
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending 返回在途请求，Idle 时为 nil。
func (c *Conversation) Pending() *Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Messages 返回对话记录的副本。
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Len 返回消息条数。
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transcript)
}

// LastReply 返回最近一条 AI 消息。
func (c *Conversation) LastReply() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.transcript) - 1; i >= 0; i-- {
		if c.transcript[i].Sender == SenderAI {
			return c.transcript[i], true
		}
	}
	return Message{}, false
}

func (c *Conversation) publish(evt events.Event) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(evt); err != nil {
		c.log.WithError(err).Debug("event not delivered")
	}
}
