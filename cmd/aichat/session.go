package main

import (
	"sync"

	"aichat/internal/chat"
	"aichat/internal/events"
	"aichat/internal/logger"
)

// session 把会话与事件总线、会话日志连接起来。
type session struct {
	conv *chat.Conversation
	bus  *events.Bus
	wg   sync.WaitGroup
}

func newSession(tr chat.Transport, convLog *logger.LogEntry) *session {
	s := &session{bus: events.NewBus(0)}
	ch := s.bus.Subscribe()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		events.Record(ch, convLog)
	}()
	s.conv = chat.New(tr,
		chat.WithEvents(s.bus),
		chat.WithLogger(logger.Named("chat")),
	)
	return s
}

// Close 关闭总线并等待剩余事件写完。
func (s *session) Close() {
	s.bus.Close()
	s.wg.Wait()
}
