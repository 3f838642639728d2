package highlight

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var escapeOnly = regexp.MustCompile(`^(\x1b\[[0-9;]*m)*$`)

// Highlighter provides syntax highlighting for suggested commands and
// tool output.
type Highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

// New creates a new Highlighter with the specified style.
// Supported styles: "monokai", "dracula", "github-dark", "native".
func New(style string) *Highlighter {
	if style == "" {
		style = "monokai"
	}
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}

	return &Highlighter{
		style:     s,
		formatter: formatters.Get("terminal256"),
	}
}

// Highlight applies syntax highlighting to code based on language.
// On any failure the input is returned unchanged.
func (h *Highlighter) Highlight(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}

	// Lexers that ensure a final newline add one to single-line input.
	out := buf.String()
	if !strings.HasSuffix(code, "\n") {
		if i := strings.LastIndex(out, "\n"); i >= 0 && escapeOnly.MatchString(out[i+1:]) {
			out = out[:i] + out[i+1:]
		}
	}
	return out
}

// Command highlights a shell command line.
func (h *Highlighter) Command(command string) string {
	return h.Highlight(command, "bash")
}
