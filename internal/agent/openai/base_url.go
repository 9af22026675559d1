package openai

import (
	"net/url"
	"strings"
)

// endpointSuffixes 是常被误填进 base_url 的完整接口路径。
var endpointSuffixes = []string{"/chat/completions", "/completions", "/responses", "/models"}

// normalizeBaseURL 把 OpenAI 兼容服务的地址规整为以单个 /v1 结尾的 base URL，
// 并丢弃 query 与 fragment。无法解析的输入原样返回。
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""

	path := strings.TrimRight(parsed.Path, "/")
	for _, suffix := range endpointSuffixes {
		if strings.HasSuffix(path, suffix) {
			path = strings.TrimSuffix(path, suffix)
			break
		}
	}
	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "v1" {
			continue
		}
		segments = append(segments, seg)
	}
	parsed.Path = "/" + strings.Join(append(segments, "v1"), "/")
	return parsed.String()
}
