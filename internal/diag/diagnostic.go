package diag

import (
	"github.com/haiman1024/Contractus/internal/source"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one structured message produced by a compiler stage. The
// core never renders diagnostics; diagfmt and other collaborators do.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
