package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emberc/emberc/internal/ast"
)

// Report is the canonical structured error type for the compiler. Every
// fatal condition is built as a Report and returned wrapped as a
// *ReportError so callers using plain `error` still get a structured form
// recoverable with errors.As.
type Report struct {
	Schema  string    `json:"schema"` // always "emberc.error/v1"
	Code    string    `json:"code"`
	Phase   string    `json:"phase"` // "resolver", "prelude", "structs", "types", "walker", "emitter", "cli"
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
}

// ReportError wraps a Report so it survives as an `error` while remaining
// recoverable with AsReport.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// AsReport extracts a *Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error. Returns nil if r is nil.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for the given phase/code/message and wraps it as an
// error in one step; the common-case constructor used by every phase
// package.
func New(phase, code, message string) error {
	return Wrap(&Report{
		Schema:  "emberc.error/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
	})
}

// NewAt is New with a source span attached, the form call sites use when
// they are reporting on a specific AST node rather than the compilation as
// a whole.
func NewAt(phase, code, message string, span ast.Span) error {
	return Wrap(&Report{
		Schema:  "emberc.error/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Span:    &span,
	})
}

// NodeSpan builds the single-point Span NewAt expects from a Node's
// starting position: this compiler never needs an end position distinct
// from the start to point a diagnostic at the right place.
func NodeSpan(n ast.Node) ast.Span {
	p := n.Pos()
	return ast.Span{Start: p, End: p}
}

// ToJSON renders the report as deterministic JSON.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
