package events

import (
	"errors"
	"sync"
)

var (
	// ErrBusClosed 表示总线已关闭。
	ErrBusClosed = errors.New("event bus closed")
	// ErrEventDropped 表示事件被慢消费者丢弃。
	ErrEventDropped = errors.New("event dropped by slow subscriber")
)

// Bus 是非阻塞的会话事件广播。发布方永远不会因订阅者而阻塞。
type Bus struct {
	mu     sync.Mutex
	subs   []chan Event
	buffer int
	closed bool
}

// NewBus 创建总线，buffer 是每个订阅者的缓存大小。
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 32
	}
	return &Bus{buffer: buffer}
}

// Subscribe 订阅事件流。通道会在 Close 时关闭。
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	ch := make(chan Event, b.buffer)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish 发布事件到所有订阅者。若存在丢弃，则返回 ErrEventDropped。
func (b *Bus) Publish(evt Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	dropped := false
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			dropped = true
		}
	}
	if dropped {
		return ErrEventDropped
	}
	return nil
}

// Close 关闭总线和所有订阅通道，可重复调用。
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

// SubscriberCount 返回当前订阅者数量。
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
