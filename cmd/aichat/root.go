package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"aichat/internal/config"
	"aichat/internal/logger"
	"aichat/internal/transport"
	"aichat/internal/tui"
	"aichat/internal/tui/render"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	defaultTerminalWidth = 80
	minTerminalWidth     = 40
)

// rootOptions 保存全局 flag 以及命令运行期间打开的日志文件。
type rootOptions struct {
	configPath string
	overrides  []string
	endpoint   string
	logDir     string
	logLevel   string

	closers []io.Closer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var inline bool

	cmd := &cobra.Command{
		Use:   "aichat",
		Short: "Minimal terminal chat client for a single /chat endpoint",
		Long: `aichat sends each message to a chat endpoint that accepts {"message": ...}
and answers {"response": ...}, then renders the reply. Replies that contain a
Markdown pipe table are drawn as a styled table.

Run without arguments to start the interactive chat interface.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.closeLogs()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts, inline)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.aichat/config.toml)")
	flags.StringArrayVarP(&opts.overrides, "config-override", "c", nil, "Override config value key=value (repeatable)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "Chat endpoint URL (overrides config and AICHAT_ENDPOINT)")
	flags.StringVar(&opts.logDir, "log-dir", filepath.Dir(logger.DefaultLogPath), "Directory for log files")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&inline, "inline", false, "Render inline instead of using the alternate screen")

	cmd.AddCommand(newAskCmd(opts), newServeCmd(opts), newPingCmd(opts), newConfigCmd(opts))
	return cmd
}

// loadConfig 合并配置文件、环境变量、-c 覆盖与 --endpoint。
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg = config.ApplyKVOverrides(cfg, o.overrides)
	if endpoint := strings.TrimSpace(o.endpoint); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	return cfg, nil
}

func (o *rootOptions) setupLogging() error {
	logger.Configure()
	if err := logger.SetLevel(o.logLevel); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", o.logLevel, err)
	}
	if o.logDir == "" {
		return nil
	}
	closer, _, err := logger.SetupFile(filepath.Join(o.logDir, filepath.Base(logger.DefaultLogPath)))
	if err != nil {
		logger.Warnf("failed to initialize log file: %v", err)
		return nil
	}
	o.closers = append(o.closers, closer)
	return nil
}

// conversationLog 打开会话事件日志；失败或未配置目录时丢弃。
func (o *rootOptions) conversationLog() *logger.LogEntry {
	if o.logDir == "" {
		return logger.Discard()
	}
	path := filepath.Join(o.logDir, filepath.Base(logger.DefaultConversationLogPath))
	entry, closer, _, err := logger.SetupComponentFile("conversation", path)
	if err != nil {
		logger.Warnf("failed to initialize conversation log (%s): %v", path, err)
		return logger.Discard()
	}
	o.closers = append(o.closers, closer)
	return entry
}

func (o *rootOptions) closeLogs() {
	logger.Root().SetOutput(os.Stderr)
	for i := len(o.closers) - 1; i >= 0; i-- {
		_ = o.closers[i].Close()
	}
	o.closers = nil
}

func runInteractive(cmd *cobra.Command, opts *rootOptions, inline bool) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	client, err := transport.New(transport.Options{Endpoint: cfg.Endpoint})
	if err != nil {
		return err
	}
	sess := newSession(client, opts.conversationLog())
	defer sess.Close()

	res, err := tui.Run(tui.Options{
		Conversation: sess.conv,
		Renderer:     render.NewRenderer(cfg.Render.Style),
		Endpoint:     client.Endpoint(),
		Context:      cmd.Context(),
		Log:          logger.Named("tui"),
		Inline:       inline,
	})
	if err != nil {
		return err
	}
	logger.Infof("interactive session ended with %d messages", len(res.Messages))
	return nil
}

// terminalWidth 返回配置宽度，否则探测 stdout，失败时为 80。
func terminalWidth(configured int) int {
	if configured > 0 {
		return configured
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	if width < minTerminalWidth {
		return minTerminalWidth
	}
	return width
}
