package logger

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// ExchangeLogger 负责输出与上游生成服务交互的请求、响应与错误信息。
type ExchangeLogger interface {
	Request(requestID, model, message string)
	Response(requestID, model, text string)
	Error(requestID, model string, err error)
}

// StdExchangeLogger 使用 logrus 输出日志。
type StdExchangeLogger struct {
	logger *logrus.Entry
}

// NewExchangeLogger 构造默认的交互日志记录器，l 为 nil 时使用全局 logger。
func NewExchangeLogger(l *Logger) *StdExchangeLogger {
	if l == nil {
		l = root()
	}
	return &StdExchangeLogger{logger: logrus.NewEntry(l).WithField("component", "upstream")}
}

// Request 记录一次请求。
func (l *StdExchangeLogger) Request(requestID, model, message string) {
	l.printf(logrus.InfoLevel, requestID, "-> request model=%s message=%s", model, sanitize(message))
}

// Response 记录一次响应。
func (l *StdExchangeLogger) Response(requestID, model, text string) {
	l.printf(logrus.InfoLevel, requestID, "<- response model=%s chars=%d text=%s", model, len(text), sanitize(text))
}

// Error 记录请求错误。
func (l *StdExchangeLogger) Error(requestID, model string, err error) {
	l.printf(logrus.ErrorLevel, requestID, "!! error model=%s err=%v", model, err)
}

// NoopExchangeLogger 忽略所有日志输出。
type NoopExchangeLogger struct{}

func (NoopExchangeLogger) Request(requestID, model, message string) {}
func (NoopExchangeLogger) Response(requestID, model, text string)   {}
func (NoopExchangeLogger) Error(requestID, model string, err error) {}

func (l *StdExchangeLogger) printf(level logrus.Level, requestID, format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	if !l.logger.Logger.IsLevelEnabled(level) {
		return
	}
	entry := l.logger
	if requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	if caller := findCaller(); caller != "" {
		entry = entry.WithField("caller", caller)
	}
	entry.Log(level, fmt.Sprintf(format, args...))
}

func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return text
}

func findCaller() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.HasSuffix(frame.File, "logger/exchange.go") {
			return fmt.Sprintf("%s:%d", shortenFilePath(frame.File), frame.Line)
		}
		if !more {
			break
		}
	}
	return ""
}
