package diagfmt

import (
	"strings"
	"testing"

	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/source"
)

func TestRenderPlain(t *testing.T) {
	file := source.NewFile("main.ctx", []byte("fn f() {\n    let x = ;\n}\n"))
	d := &diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SynExpectExpression,
		Message:  "expected expression, found `;`",
		Primary:  source.Span{Start: 21, End: 22, Line: 2, Column: 13},
	}
	var sb strings.Builder
	Render(&sb, file, d, Options{})
	out := sb.String()

	for _, want := range []string{
		"error[CTX2004]: expected expression, found `;`",
		"--> main.ctx:2:13",
		"2 |     let x = ;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("no caret line:\n%s", out)
	}
}

func TestCaretUnderOffendingColumn(t *testing.T) {
	// Column 13 of `    let x = ;` is the semicolon: 12 columns of lead.
	got := caretLine("    let x = ;", 13, 1)
	if got != strings.Repeat(" ", 12)+"^" {
		t.Errorf("caret line = %q", got)
	}
}

func TestRenderNotes(t *testing.T) {
	file := source.NewFile("main.ctx", []byte("let x = 1;\n"))
	d := &diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SemaAssignImmutable,
		Message:  "cannot assign to immutable binding `x`",
		Primary:  source.Span{Start: 4, End: 5, Line: 1, Column: 5},
		Notes:    []diag.Note{{Msg: "declare it with `let mut` to allow assignment"}},
	}
	var sb strings.Builder
	Render(&sb, file, d, Options{})
	if !strings.Contains(sb.String(), "= declare it with `let mut`") {
		t.Errorf("note missing:\n%s", sb.String())
	}
}

func TestRenderAllSummary(t *testing.T) {
	file := source.NewFile("main.ctx", []byte("fn f() { }\n"))
	bag := diag.NewBag(10)
	for i := 0; i < 2; i++ {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.SynUnexpectedToken,
			Message:  "boom",
			Primary:  source.Span{Start: uint32(i), End: uint32(i + 1), Line: 1, Column: uint32(i + 1)},
		})
	}
	var sb strings.Builder
	RenderAll(&sb, file, bag, Options{})
	if !strings.Contains(sb.String(), "2 error(s) emitted") {
		t.Errorf("summary missing:\n%s", sb.String())
	}
}

func TestCaretWidthForWideRunes(t *testing.T) {
	// The identifier is two double-width runes, so the 9 runes before the
	// caret occupy 11 display columns.
	text := "let 宽字 = ;"
	got := caretLine(text, 10, 1)
	if got != strings.Repeat(" ", 11)+"^" {
		t.Errorf("caret line = %q", got)
	}
}
