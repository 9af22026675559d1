package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aichat/internal/chat"
	"aichat/internal/config"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"AICHAT_ENDPOINT", "PORT", "GEMINI_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}
}

// execute 运行根命令，返回 stdout 与错误。日志写入临时目录。
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	base := []string{"--log-dir", filepath.Join(dir, "logs"), "--config", filepath.Join(dir, "config.toml")}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAskCommand_PrintsReply(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, "2+2", gjson.GetBytes(body, "message").String())
		_, _ = io.WriteString(w, `{"response":"4"}`)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "--endpoint", srv.URL+"/chat", "ask", "--raw", "2+2")
	require.NoError(t, err)
	require.Equal(t, "4\n", out)
}

func TestAskCommand_JoinsArgs(t *testing.T) {
	clearEnv(t)
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = gjson.GetBytes(body, "message").String()
		_, _ = io.WriteString(w, `{"response":"ok"}`)
	}))
	t.Cleanup(srv.Close)

	_, err := execute(t, "-c", "endpoint="+srv.URL+"/chat", "ask", "--raw", "what", "is", "2+2?")
	require.NoError(t, err)
	require.Equal(t, "what is 2+2?", got)
}

func TestAskCommand_RendersTable(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response":"| A | B |\n| --- | --- |\n| x | y |"}`)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "--endpoint", srv.URL+"/chat", "-c", "render.width=60", "ask", "table")
	require.NoError(t, err)
	require.Contains(t, out, "┼")
	require.NotContains(t, out, "---")
}

func TestAskCommand_FailurePrintsFallback(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "--endpoint", srv.URL+"/chat", "ask", "--raw", "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
	require.Equal(t, chat.FallbackText+"\n", out)
}

func TestAskCommand_RejectsBlankMessage(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "--endpoint", "http://127.0.0.1:1/chat", "ask", "   ")
	require.ErrorIs(t, err, chat.ErrEmptyInput)
}

func TestAskCommand_WritesConversationLog(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response":"4"}`)
	}))
	t.Cleanup(srv.Close)

	logDir := filepath.Join(t.TempDir(), "logs")
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--log-dir", logDir, "--config", filepath.Join(t.TempDir(), "c.toml"), "--endpoint", srv.URL + "/chat", "ask", "2+2"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(logDir, "conversation.log"))
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "exchange.submitted")
	require.Contains(t, text, "exchange.resolved")
	require.Less(t, strings.Index(text, "exchange.submitted"), strings.Index(text, "exchange.resolved"))
}

func TestPingCommand(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	out, err := execute(t, "--endpoint", srv.URL+"/chat", "ping")
	require.NoError(t, err)
	require.Contains(t, out, "ok: ")
}

func TestPingCommand_InvalidEndpoint(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "--endpoint", "ftp://example.invalid/chat", "ping")
	require.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	run := func(args ...string) error {
		cmd := newRootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(append([]string{"--log-dir", "", "--config", path}, args...))
		return cmd.Execute()
	}

	require.NoError(t, run("-c", "endpoint=http://saved.test/chat", "config", "init"))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://saved.test/chat", cfg.Endpoint)

	err = run("config", "init")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--force")

	require.NoError(t, run("-c", "endpoint=http://other.test/chat", "config", "init", "--force"))
	cfg, err = config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://other.test/chat", cfg.Endpoint)
}

func TestLoadConfig_EndpointFlagWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("AICHAT_ENDPOINT", "http://env.test/chat")
	opts := &rootOptions{
		configPath: filepath.Join(t.TempDir(), "config.toml"),
		overrides:  []string{"endpoint=http://override.test/chat"},
	}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	require.Equal(t, "http://override.test/chat", cfg.Endpoint)

	opts.endpoint = "http://flag.test/chat"
	cfg, err = opts.loadConfig()
	require.NoError(t, err)
	require.Equal(t, "http://flag.test/chat", cfg.Endpoint)
}

func TestTerminalWidth_Configured(t *testing.T) {
	require.Equal(t, 72, terminalWidth(72))
	require.GreaterOrEqual(t, terminalWidth(0), minTerminalWidth)
}
