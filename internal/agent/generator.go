package agent

import (
	"context"
	"errors"
	"strings"
)

// Generator 把一条用户消息交给上游模型，返回完整回复文本。
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
	Model() string
}

// ErrEmptyMessage 表示消息去除空白后为空。
var ErrEmptyMessage = errors.New("empty message")

// EchoGenerator is a fallback when no API key is available.
type EchoGenerator struct {
	Prefix string
}

var _ Generator = EchoGenerator{}

func (g EchoGenerator) Generate(_ context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	return g.Prefix + message, nil
}

func (EchoGenerator) Model() string { return "echo" }
