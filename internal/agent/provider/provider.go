package provider

import (
	"context"
	"fmt"
	"strings"

	"aichat/internal/agent"
	"aichat/internal/agent/gemini"
	"aichat/internal/agent/openai"
	"aichat/internal/config"
	"aichat/internal/logger"
)

var log = logger.Named("provider")

// New 按配置选择生成器。gemini/openai 缺少凭据时退回 EchoGenerator。
func New(ctx context.Context, cfg config.Server) (agent.Generator, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch name {
	case "", "gemini":
		if strings.TrimSpace(cfg.APIKey) == "" {
			log.Warnf("no gemini credential configured, using echo generator")
			return agent.EchoGenerator{Prefix: "echo: "}, nil
		}
		return gemini.New(ctx, gemini.Options{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			log.Warnf("no openai credential configured, using echo generator")
			return agent.EchoGenerator{Prefix: "echo: "}, nil
		}
		return openai.New(openai.Options{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	case "echo":
		return agent.EchoGenerator{Prefix: "echo: "}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want gemini, openai or echo)", cfg.Provider)
	}
}
