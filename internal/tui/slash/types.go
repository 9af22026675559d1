package slash

// Command 表示内置斜杠命令的标识符。
type Command string

const (
	CommandHelp   Command = "help"
	CommandCopy   Command = "copy"
	CommandStatus Command = "status"
	CommandQuit   Command = "quit"
	CommandExit   Command = "exit"
)

// Item 代表弹窗中的一行条目。
type Item struct {
	Command     Command
	Description string
}

// DisplayName 返回带前缀斜杠的展示名称。
func (i Item) DisplayName() string {
	return "/" + string(i.Command)
}

// ActionKind 描述按键触发后的处理类型。
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionClose
	ActionInsert
	ActionSubmit
	ActionError
)

// Action 汇总 Slash 处理结果。
type Action struct {
	Kind     ActionKind
	Command  Command
	Args     string
	NewValue string
	Message  string
}

func builtinItems() []Item {
	return []Item{
		{Command: CommandHelp, Description: "显示快捷键与命令"},
		{Command: CommandCopy, Description: "复制最近一条回复"},
		{Command: CommandStatus, Description: "查看端点与状态"},
		{Command: CommandQuit, Description: "退出"},
		{Command: CommandExit, Description: "退出"},
	}
}
