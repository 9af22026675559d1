package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultEndpoint = "http://localhost:5000/chat"
	DefaultPort     = 5000
	DefaultProvider = "gemini"
	DefaultStyle    = "dark"
)

// Config is the persisted config file schema.
type Config struct {
	// Endpoint is the chat URL the client posts {message} to.
	Endpoint string `toml:"endpoint"`
	Server   Server `toml:"server"`
	Render   Render `toml:"render"`
	Source   string `toml:"-"`
}

// Server configures the backend started by `aichat serve`.
type Server struct {
	Port     int    `toml:"port"`
	Provider string `toml:"provider"`
	// Model is empty to use the provider's default model.
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Render configures terminal presentation of replies.
type Render struct {
	Style string `toml:"style"`
	Width int    `toml:"width"`
}

func Default() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Server: Server{
			Port:     DefaultPort,
			Provider: DefaultProvider,
		},
		Render: Render{Style: DefaultStyle},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aichat", "config.toml")
}

// Load reads the TOML file at path (or the default path) and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("AICHAT_ENDPOINT")); env != "" {
		cfg.Endpoint = env
	}
	if env := strings.TrimSpace(os.Getenv("PORT")); env != "" {
		if port, err := strconv.Atoi(env); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if cfg.Server.APIKey == "" {
		cfg.Server.APIKey = providerKeyFromEnv(cfg.Server.Provider)
	}
	return cfg
}

// providerKeyFromEnv 返回对应上游的凭据环境变量，未设置时为空。
func providerKeyFromEnv(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gemini":
		return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	case "openai":
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	return ""
}
