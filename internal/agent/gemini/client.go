package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"aichat/internal/agent"

	"google.golang.org/genai"
)

// DefaultModel 在未配置模型时使用。
const DefaultModel = "gemini-1.5-flash"

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient 为空时由 SDK 使用默认客户端。
	HTTPClient *http.Client
}

// Client 通过 Gemini API 的 generateContent 生成单轮回复。
type Client struct {
	api   *genai.Client
	model string
}

var _ agent.Generator = (*Client)(nil)

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: client, model: model}, nil
}

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", agent.ErrEmptyMessage
	}
	resp, err := c.api.Models.GenerateContent(ctx, c.model, genai.Text(message), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned")
	}
	return resp.Text(), nil
}
