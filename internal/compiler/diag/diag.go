// Package diag provides structured diagnostic reporting for the Strata schema
// compiler. Every compilation phase routes its problems through a Collector so
// that a whole document set can be analyzed in one pass and every defect
// reported together.
package diag

import "fmt"

// Severity indicates the severity level of a diagnostic
type Severity string

const (
	// SeverityError indicates a defect that prevents code generation
	SeverityError Severity = "error"
	// SeverityWarning indicates a suspicious construct that does not block generation
	SeverityWarning Severity = "warning"
)

// Category groups diagnostics by the phase that produced them
type Category string

const (
	// CategoryDocument covers structural problems with a schema document
	CategoryDocument Category = "document"
	// CategoryEntity covers entity-level analysis problems (kind keywords, fields)
	CategoryEntity Category = "entity"
	// CategoryType covers type resolution problems
	CategoryType Category = "type"
	// CategoryRelation covers relation and index validation problems
	CategoryRelation Category = "relation"
)

// Position is a zero-based line/column location in a source document
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is a half-open source range attached to a diagnostic
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// LineSpan builds a span covering columns [startCol, endCol) on a single line
func LineSpan(line, startCol, endCol int) *Span {
	return &Span{
		Start: Position{Line: line, Column: startCol},
		End:   Position{Line: line, Column: endCol},
	}
}

// Diagnostic is one reported problem. Span is nil for document-level
// diagnostics that have no single responsible location.
type Diagnostic struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Span     *Span    `json:"span,omitempty"`
	// SourceFileName is the document the diagnostic points into, when known
	SourceFileName string `json:"sourceFileName,omitempty"`
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	if d.Span == nil {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %d:%d: %s", d.Severity, d.Span.Start.Line, d.Span.Start.Column, d.Message)
}

// WithFile sets the source file name for the diagnostic
func (d *Diagnostic) WithFile(file string) *Diagnostic {
	d.SourceFileName = file
	return d
}

// NewError creates an error diagnostic
func NewError(category Category, message string, span *Span) *Diagnostic {
	return &Diagnostic{
		Message:  message,
		Severity: SeverityError,
		Category: category,
		Span:     span,
	}
}

// NewWarning creates a warning diagnostic
func NewWarning(category Category, message string, span *Span) *Diagnostic {
	return &Diagnostic{
		Message:  message,
		Severity: SeverityWarning,
		Category: category,
		Span:     span,
	}
}
