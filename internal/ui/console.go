package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"shellmind/internal/highlight"
	"shellmind/internal/logging"
	"shellmind/internal/tools"
)

// Options configures a Console.
type Options struct {
	In  io.Reader
	Out io.Writer

	// History preloads line-editing history, oldest first.
	History []string

	Markdown  bool
	Highlight bool
	Theme     string
}

// Console is the line-oriented terminal UI. On a TTY it uses liner for
// editing and history; otherwise it reads plain lines from In.
type Console struct {
	out    io.Writer
	styles Styles

	line   *liner.State
	reader *bufio.Reader

	markdown    *glamour.TermRenderer
	highlighter *highlight.Highlighter

	mu sync.Mutex
}

// NewConsole creates a console. Nil In and Out select stdin and stdout.
func NewConsole(opts Options) *Console {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	interactive := isTerminal(opts.In) && isTerminal(opts.Out)
	c := &Console{
		out:    opts.Out,
		styles: NewStyles(lipgloss.NewRenderer(opts.Out)),
	}

	if interactive {
		c.line = liner.NewLiner()
		c.line.SetCtrlCAborts(true)
		for _, entry := range opts.History {
			c.line.AppendHistory(entry)
		}
	} else {
		c.reader = bufio.NewReader(opts.In)
	}

	if opts.Markdown && interactive {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(terminalWidth(opts.Out)),
		)
		if err != nil {
			logging.Warn("markdown rendering disabled", "error", err)
		} else {
			c.markdown = renderer
		}
	}
	if opts.Highlight && interactive {
		c.highlighter = highlight.New(opts.Theme)
	}

	return c
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
			return w - 2
		}
	}
	return 80
}

// Banner prints the startup title.
func (c *Console) Banner(version, model string) {
	c.println(c.styles.Title.Render("Shellmind") + " " + c.styles.Dim.Render(version))
	c.println(c.styles.Dim.Render("model: " + model + "  (type 'exit' to quit)"))
}

// ReadLine reads one line. Ctrl-C at the prompt and end of input both
// return io.EOF.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	return c.readLine(ctx, prompt, true)
}

// readLine reads one line; remember adds it to the editing history.
func (c *Console) readLine(ctx context.Context, prompt string, remember bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if c.line != nil {
		input, err := c.line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return "", io.EOF
			}
			return "", err
		}
		if remember && strings.TrimSpace(input) != "" {
			c.line.AppendHistory(input)
		}
		return input, nil
	}

	c.print(c.styles.Prompt.Render(prompt))
	input, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimRight(input, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(input, "\r\n"), nil
}

// Message shows an informational reply, rendered as markdown on a TTY.
func (c *Console) Message(text string) {
	if c.markdown != nil {
		if rendered, err := c.markdown.Render(text); err == nil {
			c.print(rendered)
			return
		}
	}
	c.println(text)
}

// Proposal shows the action about to be gated.
func (c *Console) Proposal(text string) {
	c.println(c.styles.Proposal.Render("→ " + text))
}

// Status shows a short status line.
func (c *Console) Status(text string) {
	c.println(c.styles.Status.Render(text))
}

// Error reports a recoverable failure.
func (c *Console) Error(err error) {
	c.println(c.styles.Error.Render(MessageIcons["error"] + " Error: " + err.Error()))
}

// Outcome shows the result of an execution.
func (c *Console) Outcome(result tools.ToolResult) {
	if result.Success {
		c.println(strings.TrimRight(result.Content, "\n"))
		return
	}
	c.println(c.styles.Error.Render(MessageIcons["error"] + " " + result.Error))
	if result.Content != "" {
		c.println(strings.TrimRight(result.Content, "\n"))
	}
}

// Close restores the terminal.
func (c *Console) Close() error {
	if c.line != nil {
		return c.line.Close()
	}
	return nil
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, s)
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}
