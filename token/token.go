package token

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Pos locates a node in the original source. Line and Column are 1-based;
// EndColumn is exclusive and may be 0 when the front-end does not know the
// span's end.
type Pos struct {
	Line      int
	Column    int
	EndColumn int
}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Severity of a diagnostic. Info is used for notices such as a new builtin
// specialization being compiled; Error marks a failed analysis.
type Severity int

const (
	Error Severity = iota
	Info
)

func (s Severity) String() string {
	if s == Info {
		return "Info"
	}
	return "Error"
}

// CompileError is a single diagnostic tied to a source position.
type CompileError struct {
	Pos      Pos
	Msg      string
	Severity Severity
}

func (ce *CompileError) Error() string {
	if !ce.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", ce.Severity, ce.Msg)
	}
	return fmt.Sprintf("%s: %s (%s)", ce.Severity, ce.Msg, ce.Pos)
}

const maxUnderline = 50

var stderrIsTTY = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

func colorize(s string) string {
	if !stderrIsTTY {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

// Render formats the diagnostic against the source text it refers to,
// excerpting the offending line with a caret (and an underline when the span's
// end is known). It always degrades to a plain message when the position or
// source is unusable.
func (ce *CompileError) Render(source string) string {
	if !ce.Pos.IsValid() {
		return ce.Error()
	}
	lines := strings.Split(source, "\n")
	if ce.Pos.Line > len(lines) {
		return ce.Error()
	}

	errLine := lines[ce.Pos.Line-1]

	var sb strings.Builder
	sb.WriteString(colorize(ce.Severity.String()))
	sb.WriteString(": ")
	sb.WriteString(ce.Msg)
	sb.WriteString(fmt.Sprintf(" (%s)\n\n", ce.Pos))

	lineNum := fmt.Sprintf("%d", ce.Pos.Line)
	sb.WriteString(fmt.Sprintf("%s | %s\n", lineNum, errLine))

	// Tabs render wider than one column; pad the caret to match.
	col := ce.Pos.Column - 1
	if col > len(errLine) {
		col = len(errLine)
	}
	tabCount := strings.Count(errLine[:col], "\t")
	pointer := strings.Repeat(" ", len(lineNum)+3+col+tabCount*3) + "^"

	if ce.Pos.EndColumn > ce.Pos.Column {
		span := ce.Pos.EndColumn - ce.Pos.Column - 1
		if span > maxUnderline {
			span = maxUnderline
		}
		pointer += strings.Repeat("~", span)
	}
	sb.WriteString(colorize(pointer))
	sb.WriteString("\n")
	return sb.String()
}

// RenderAll formats every diagnostic in order against one source text.
func RenderAll(errs []*CompileError, source string) string {
	var sb strings.Builder
	for _, ce := range errs {
		sb.WriteString(ce.Render(source))
	}
	return sb.String()
}
