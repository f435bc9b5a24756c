// Package driver wires the compilation stages together: lex, parse,
// semantic analysis, MIR lowering, and C emission. Each stage gates the
// next: a file with syntax errors is never analyzed, and a file with any
// front-end error never reaches lowering or emission.
package driver

import (
	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/backend/c"
	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/layout"
	"github.com/haiman1024/Contractus/internal/lexer"
	"github.com/haiman1024/Contractus/internal/mir"
	"github.com/haiman1024/Contractus/internal/parser"
	"github.com/haiman1024/Contractus/internal/sema"
	"github.com/haiman1024/Contractus/internal/source"
	"github.com/haiman1024/Contractus/internal/token"
)

// DefaultMaxErrors caps diagnostics per file unless overridden.
const DefaultMaxErrors = 64

// Options configure one compilation.
type Options struct {
	// MaxErrors caps collected diagnostics. 0 means DefaultMaxErrors.
	MaxErrors uint16
	// Target selects the layout target. Zero value means x86-64 Linux.
	Target layout.Target
	// StopAfter halts the pipeline early; see the Stage constants.
	StopAfter Stage
	// Jobs bounds CompileAll's parallelism. 0 means GOMAXPROCS.
	Jobs int
}

// Stage names a pipeline cut-off point.
type Stage uint8

const (
	// StageEmit runs the full pipeline.
	StageEmit Stage = iota
	// StageTokens stops after lexing.
	StageTokens
	// StageParse stops after parsing.
	StageParse
	// StageSema stops after semantic analysis.
	StageSema
	// StageMIR stops after lowering.
	StageMIR
)

// Output is everything a compilation produced. Later fields stay zero
// when an earlier stage reported errors or StopAfter cut the run short.
type Output struct {
	File    *source.File
	Tokens  []token.Token
	Program *ast.Program
	Sema    *sema.Result
	MIR     *mir.Module
	C       string
	Diags   *diag.Bag
}

// Ok reports whether the run produced no errors.
func (o *Output) Ok() bool {
	return !o.Diags.HasErrors()
}

// Compile runs the pipeline over one loaded file. The returned error is
// reserved for internal failures; user-level problems land in Diags.
func Compile(file *source.File, opts Options) (*Output, error) {
	maxErrors := opts.MaxErrors
	if maxErrors == 0 {
		maxErrors = DefaultMaxErrors
	}
	out := &Output{
		File:  file,
		Diags: diag.NewBag(int(maxErrors)),
	}
	reporter := diag.BagReporter{Bag: out.Diags}

	out.Tokens = lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	if opts.StopAfter == StageTokens {
		return out, nil
	}

	out.Program = parser.Parse(out.Tokens, parser.Options{Reporter: reporter}).Program
	if opts.StopAfter == StageParse || out.Diags.HasErrors() {
		out.Diags.Sort()
		return out, nil
	}

	out.Sema = sema.Check(out.Program, sema.Options{Reporter: reporter, Target: opts.Target})
	if opts.StopAfter == StageSema || out.Diags.HasErrors() {
		out.Diags.Sort()
		return out, nil
	}

	out.MIR = mir.Lower(out.Program, out.Sema)
	if opts.StopAfter == StageMIR {
		return out, nil
	}

	text, err := c.Emit(out.MIR, out.Sema)
	if err != nil {
		return out, err
	}
	out.C = text
	return out, nil
}

// CompilePath loads a file from disk and compiles it.
func CompilePath(path string, opts Options) (*Output, error) {
	file, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return Compile(file, opts)
}
