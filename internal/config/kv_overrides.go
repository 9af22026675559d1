package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
// Unknown keys and malformed values are ignored.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	providerChanged := false
	keySet := false
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "endpoint":
			cfg.Endpoint = val
		case "server.port":
			if port, err := strconv.Atoi(val); err == nil && port > 0 {
				cfg.Server.Port = port
			}
		case "server.provider":
			if cfg.Server.Provider != val {
				providerChanged = true
			}
			cfg.Server.Provider = val
		case "server.model":
			cfg.Server.Model = val
		case "server.api_key":
			cfg.Server.APIKey = val
			keySet = true
		case "server.base_url":
			cfg.Server.BaseURL = val
		case "render.style":
			cfg.Render.Style = val
		case "render.width":
			if w, err := strconv.Atoi(val); err == nil && w >= 0 {
				cfg.Render.Width = w
			}
		}
	}
	// 切换上游后原凭据不再适用，改从环境变量取新上游的凭据。
	if providerChanged && !keySet {
		cfg.Server.APIKey = providerKeyFromEnv(cfg.Server.Provider)
	}
	return cfg
}
