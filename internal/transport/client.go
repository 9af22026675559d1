package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// maxBodyBytes 限制读取的响应体大小。
const maxBodyBytes = 8 << 20

// Kind 区分传输失败的类别。
type Kind string

const (
	KindNetwork Kind = "network"
	KindStatus  Kind = "status"
	KindPayload Kind = "payload"
)

// Error 是一次发送失败的统一错误类型（网络、非 2xx、负载格式错误）。
type Error struct {
	Kind       Kind
	StatusCode int
	// Detail 为服务端 {"error": ...} 中的文字或负载问题描述。
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("transport ")
	sb.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " http_%d", e.StatusCode)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransportError 判断 err 链中是否包含 *Error。
func IsTransportError(err error) bool {
	var te *Error
	return errors.As(err, &te)
}

type Options struct {
	Endpoint   string
	HTTPClient *http.Client
	UserAgent  string
}

// Client 向聊天端点发送单条消息。每次 Send 恰好一次请求，不重试。
type Client struct {
	endpoint  string
	http      *http.Client
	userAgent string
}

func New(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("missing chat endpoint")
	}
	hc := opts.HTTPClient
	if hc == nil {
		// 不设超时：请求只会因 ctx 结束而中断。
		hc = &http.Client{}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "aichat"
	}
	return &Client{endpoint: endpoint, http: hc, userAgent: ua}, nil
}

// Endpoint 返回目标 URL。
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send 以 {"message": ...} 发送并返回 {"response": ...} 中的原始文本。
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "message", message)
	if err != nil {
		return "", &Error{Kind: KindPayload, Detail: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Kind: KindStatus, StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}
	return decodeResponse(raw)
}

func decodeResponse(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", &Error{Kind: KindPayload, Detail: "response is not valid JSON"}
	}
	field := gjson.GetBytes(raw, "response")
	if !field.Exists() {
		return "", &Error{Kind: KindPayload, Detail: `missing "response" field`}
	}
	if field.Type != gjson.String {
		return "", &Error{Kind: KindPayload, Detail: fmt.Sprintf(`"response" is %s, want string`, field.Type)}
	}
	return field.String(), nil
}

func errorDetail(raw []byte) string {
	if gjson.ValidBytes(raw) {
		if msg := gjson.GetBytes(raw, "error"); msg.Type == gjson.String {
			return msg.String()
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200] + "…"
	}
	return text
}
