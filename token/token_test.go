package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPos(t *testing.T) {
	assert.False(t, Pos{}.IsValid())
	assert.True(t, Pos{Line: 1, Column: 1}.IsValid())
	assert.Equal(t, "-", Pos{}.String())
	assert.Equal(t, "line 2, column 7", Pos{Line: 2, Column: 7}.String())
}

func TestCompileErrorError(t *testing.T) {
	ce := &CompileError{Pos: Pos{Line: 1, Column: 3}, Msg: "undefined identifier: y"}
	assert.Equal(t, "Error: undefined identifier: y (line 1, column 3)", ce.Error())

	info := &CompileError{Msg: "compiled new specialization", Severity: Info}
	assert.Equal(t, "Info: compiled new specialization", info.Error())
}

func TestRenderCaret(t *testing.T) {
	source := "def f(a):\n    return a + b\n"
	ce := &CompileError{
		Pos: Pos{Line: 2, Column: 16},
		Msg: "undefined identifier: b",
	}

	out := ce.Render(source)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Error: undefined identifier: b (line 2, column 16)", lines[0])
	assert.Equal(t, "2 |     return a + b", lines[2])
	// Caret sits under column 16: line-number prefix "2 | " plus 15 columns.
	assert.Equal(t, strings.Repeat(" ", 19)+"^", lines[3])
}

func TestRenderUnderline(t *testing.T) {
	source := "x = foobar + 1\n"
	ce := &CompileError{
		Pos: Pos{Line: 1, Column: 5, EndColumn: 11},
		Msg: "undefined identifier: foobar",
	}

	out := ce.Render(source)
	assert.Contains(t, out, "^~~~~~")
}

func TestRenderTabPadding(t *testing.T) {
	source := "\treturn x\n"
	ce := &CompileError{
		Pos: Pos{Line: 1, Column: 9},
		Msg: "undefined identifier: x",
	}

	out := ce.Render(source)
	lines := strings.Split(out, "\n")
	// One tab before the column pads the caret by three extra spaces.
	assert.Equal(t, strings.Repeat(" ", 4+8+3)+"^", lines[3])
}

func TestRenderDegradesGracefully(t *testing.T) {
	ce := &CompileError{Msg: "broken"}
	assert.Equal(t, ce.Error(), ce.Render("whatever"))

	past := &CompileError{Pos: Pos{Line: 99, Column: 1}, Msg: "past the end"}
	assert.Equal(t, past.Error(), past.Render("one line only"))
}

func TestRenderAll(t *testing.T) {
	source := "a\nb\n"
	errs := []*CompileError{
		{Pos: Pos{Line: 1, Column: 1}, Msg: "first"},
		{Pos: Pos{Line: 2, Column: 1}, Msg: "second"},
	}
	out := RenderAll(errs, source)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}

func TestOpStrings(t *testing.T) {
	assert.Equal(t, "+", Add.String())
	assert.Equal(t, "//", FloorDiv.String())
	assert.Equal(t, "**", Pow.String())
	assert.Equal(t, "<<", LShift.String())
	assert.Equal(t, "not", Not.String())
	assert.Equal(t, "~", Invert.String())
	assert.Equal(t, "<", Lt.String())
	assert.Equal(t, "!=", NotEq.String())
	assert.Equal(t, "and", And.String())
	assert.Equal(t, "or", Or.String())
}
