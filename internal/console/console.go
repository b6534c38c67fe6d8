package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"AddressBook/internal/service"
	"AddressBook/internal/telemetry"
)

// autoHelpEvery 连续空输入或无效命令达到这个次数时自动打印帮助
const autoHelpEvery = 3

// Console 逐行读取命令并调用 ContactService，只负责解析参数和渲染结果
type Console struct {
	svc       *service.ContactService
	in        *bufio.Scanner
	out       io.Writer
	telemetry telemetry.Recorder
	log       *zap.Logger

	emptyInputs   int
	invalidInputs int
}

type Option func(*Console)

func WithTelemetry(rec telemetry.Recorder) Option {
	return func(c *Console) {
		if rec != nil {
			c.telemetry = rec
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.log = l
		}
	}
}

func New(svc *service.ContactService, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		svc:       svc,
		in:        bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry.Nop{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run 运行到 close/exit 或输入结束，退出前把未保存的修改落盘
func (c *Console) Run(ctx context.Context) error {
	c.println("Welcome to the assistant bot!")

	for {
		if ctx.Err() != nil {
			break
		}

		fmt.Fprint(c.out, "Enter a command: ")
		if !c.in.Scan() {
			c.println("")
			c.println(goodbye)
			break
		}

		reply, quit := c.Execute(ctx, c.in.Text())
		if reply != "" {
			c.println(reply)
		}
		if quit {
			break
		}
	}

	return c.svc.Close(ctx)
}

// Execute 处理一行输入，返回要输出的文本以及是否退出
func (c *Console) Execute(ctx context.Context, line string) (string, bool) {
	command, args := parseInput(line)

	if command == "" {
		c.emptyInputs++
		if c.emptyInputs%autoHelpEvery == 0 {
			return emptyInput + "\n\n" + helpText, false
		}
		return emptyInput, false
	}
	c.emptyInputs = 0

	if command == "close" || command == "exit" {
		c.telemetry.Record(ctx, command)
		return goodbye, true
	}

	cmd, ok := commands[command]
	if !ok {
		c.invalidInputs++
		c.telemetry.Record(ctx, "invalid:"+command)
		c.log.Warn("invalid command", zap.String("command", command))
		if c.invalidInputs%autoHelpEvery == 0 {
			return invalidCommand + "\n\n" + helpText, false
		}
		return invalidCommand, false
	}

	c.telemetry.Record(ctx, command)
	c.log.Info("command", zap.String("command", command), zap.Int("args", len(args)))

	if len(args) < cmd.minArgs {
		c.invalidInputs++
		return "Usage: " + cmd.usage, false
	}
	c.invalidInputs = 0

	reply, err := cmd.run(ctx, c, args)
	if err != nil {
		return c.errorText(command, err), false
	}
	return reply, false
}

// confirm 读取下一行作为确认结果
func (c *Console) confirm(prompt string) bool {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(c.in.Text()), "yes")
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// parseInput 按空白切分，支持单双引号包住含空格的参数，例如 add "John Doe" +380501234567
// 引号不配对时退化为按空白切分
func parseInput(line string) (string, []string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	parts, ok := splitQuoted(line)
	if !ok {
		parts = strings.Fields(line)
	}
	if len(parts) == 0 {
		return "", nil
	}

	return strings.ToLower(parts[0]), parts[1:]
}

func splitQuoted(line string) ([]string, bool) {
	var (
		parts   []string
		current strings.Builder
		quote   rune
		inToken bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				parts = append(parts, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, false
	}
	if inToken {
		parts = append(parts, current.String())
	}
	return parts, true
}
