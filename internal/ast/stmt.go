package ast

import "github.com/haiman1024/Contractus/internal/source"

// StmtKind distinguishes statement forms.
type StmtKind uint8

const (
	// StmtLet introduces a binding.
	StmtLet StmtKind = iota
	// StmtExpr evaluates an expression for its effect.
	StmtExpr
	// StmtReturn exits the enclosing function.
	StmtReturn
	// StmtIf is a conditional with an optional else block.
	StmtIf
	// StmtWhile is a condition-first loop.
	StmtWhile
	// StmtFor is an iterator loop over a range, array, or slice.
	StmtFor
	// StmtBreak exits the innermost loop.
	StmtBreak
	// StmtContinue jumps to the innermost loop's next iteration.
	StmtContinue
	// StmtBlock is a nested block introducing its own scope.
	StmtBlock
)

// Stmt is one statement; exactly the variant named by Kind is populated.
type Stmt struct {
	Kind  StmtKind
	Span  source.Span
	Let   *LetStmt
	Expr  *Expr
	Ret   *ReturnStmt
	If    *IfStmt
	While *WhileStmt
	For   *ForStmt
	Block *Block
}

// LetStmt binds a name, optionally mutable, optionally annotated. A nil
// Init leaves the binding uninitialized; sema rejects reads before a first
// assignment.
type LetStmt struct {
	Name     string
	NameSpan source.Span
	Mutable  bool
	Type     *TypeExpr
	Init     *Expr
}

// ReturnStmt returns Value, or unit when Value is nil.
type ReturnStmt struct {
	Value *Expr
}

// IfStmt is `if cond { then } else { else }`; Else may be nil.
type IfStmt struct {
	Cond *Expr
	Then *Block
	Else *Block
}

// WhileStmt is `while cond { body }`.
type WhileStmt struct {
	Cond *Expr
	Body *Block
}

// ForStmt is `for var in iterable { body }`. The binding is immutable and
// scoped to the body.
type ForStmt struct {
	Var      string
	VarSpan  source.Span
	Iterable *Expr
	Body     *Block
}
