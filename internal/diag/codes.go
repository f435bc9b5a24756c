package diag

import "fmt"

// Code identifies a diagnostic kind. The numeric space mirrors the pipeline:
// 1xxx lexical, 2xxx syntax, 3xxx semantic, 4xxx type, 5xxx codegen.
type Code uint16

const (
	// UnknownCode is the zero value for uncategorized diagnostics.
	UnknownCode Code = 0

	// Lexical
	LexUnknownChar         Code = 1001
	LexUnterminatedComment Code = 1002
	LexBadNumber           Code = 1003

	// Syntax
	SynUnexpectedToken    Code = 2001
	SynUnexpectedTopLevel Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectExpression   Code = 2004
	SynExpectType         Code = 2005
	SynExpectSemicolon    Code = 2006
	SynForMissingIn       Code = 2007
	SynChainedRange       Code = 2008
	SynExpectFieldName    Code = 2009

	// Semantic
	SemaDuplicateStruct   Code = 3001
	SemaDuplicateField    Code = 3002
	SemaRecursiveStruct   Code = 3003
	SemaDuplicateFunction Code = 3004
	SemaUndefinedVariable Code = 3005
	SemaUndefinedStruct   Code = 3006
	SemaUndefinedField    Code = 3007
	SemaUndefinedFunction Code = 3008
	SemaUninitialized     Code = 3009
	SemaAssignImmutable   Code = 3010
	SemaInvalidIterable   Code = 3011
	SemaStructLitField    Code = 3012
	SemaDuplicateBinding  Code = 3013
	SemaNotAssignable     Code = 3014
	SemaLoopControl       Code = 3015
	SemaZeroSizeArray     Code = 3016

	// Type
	TypeMismatch       Code = 4001
	TypeCondNotBool    Code = 4002
	TypeReturnMismatch Code = 4003
	TypeBadOperand     Code = 4004
	TypeNotIndexable   Code = 4005
	TypeIndexNotI32    Code = 4006
	TypeNotCallable    Code = 4007
	TypeArgCount       Code = 4008
	TypeCannotInfer    Code = 4009

	// Codegen (internal invariant violations, never user errors)
	GenUndefinedRegister Code = 5001
	GenUnboundLabel      Code = 5002
)

func (c Code) String() string {
	return fmt.Sprintf("CTX%04d", uint16(c))
}

// IsInternal reports whether the code signals a pipeline bug rather than a
// user error.
func (c Code) IsInternal() bool {
	return c >= 5000
}
