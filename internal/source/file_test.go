package source

import "testing"

func TestResolveLineCol(t *testing.T) {
	f := NewFile("test.ctx", []byte("fn main() {\n    let x = 1;\n}\n"))

	cases := []struct {
		offset uint32
		line   uint32
		column uint32
	}{
		{0, 1, 1},
		{3, 1, 4},
		{12, 2, 1},
		{16, 2, 5},
		{27, 3, 1},
	}
	for _, tc := range cases {
		got := f.Resolve(tc.offset)
		if got.Line != tc.line || got.Column != tc.column {
			t.Errorf("Resolve(%d) = %d:%d, want %d:%d", tc.offset, got.Line, got.Column, tc.line, tc.column)
		}
	}
}

func TestLineText(t *testing.T) {
	f := NewFile("test.ctx", []byte("first\nsecond\nthird"))
	if got := f.Line(1); got != "first" {
		t.Errorf("Line(1) = %q", got)
	}
	if got := f.Line(2); got != "second" {
		t.Errorf("Line(2) = %q", got)
	}
	if got := f.Line(3); got != "third" {
		t.Errorf("Line(3) = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Errorf("Line(4) = %q, want empty", got)
	}
}

func TestNormalization(t *testing.T) {
	f := NewFile("test.ctx", []byte("\xEF\xBB\xBFlet x = 1;\r\nlet y = 2;\r\n"))
	if string(f.Content[:3]) != "let" {
		t.Fatalf("BOM not stripped: %q", f.Content[:6])
	}
	if got := f.Line(2); got != "let y = 2;" {
		t.Errorf("CRLF not normalized, Line(2) = %q", got)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{Start: 4, End: 8, Line: 1, Column: 5}
	b := Span{Start: 10, End: 14, Line: 2, Column: 3}
	c := a.Cover(b)
	if c.Start != 4 || c.End != 14 || c.Line != 1 || c.Column != 5 {
		t.Errorf("Cover = %+v", c)
	}
	d := b.Cover(a)
	if d.Start != 4 || d.End != 14 || d.Line != 1 || d.Column != 5 {
		t.Errorf("reverse Cover = %+v", d)
	}
}
