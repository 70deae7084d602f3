package peg

import (
	"fmt"
	"strings"
)

// Failure records the farthest offset at which a rule failed. Offset is
// -1 until the first failure.
type Failure struct {
	Rule   *Rule
	Offset int
}

// offer records a failure of r at pos if pos lies strictly beyond the
// current record, so ties keep the rule that failed there first.
func (p *Parser) offer(r *Rule, pos int) {
	if pos > p.failure.Offset {
		p.failure = Failure{Rule: r, Offset: pos}
	}
}

// Failure returns the farthest failure of the last parse.
func (p *Parser) Failure() Failure { return p.failure }

// Diagnostic describes the farthest failure of the last parse, or
// returns nil if nothing failed.
func (p *Parser) Diagnostic() *Diagnostic {
	if p.failure.Offset < 0 {
		return nil
	}
	return newDiagnostic(p.input, p.failure)
}

// Err returns a *ParseError if the last parse failed, nil otherwise.
func (p *Parser) Err() error {
	if !p.parsed || p.ok {
		return nil
	}
	return &ParseError{Diagnostic: p.Diagnostic()}
}

// Diagnostic locates a failure in the source text. Line and Column are
// 1-based; Source is the offending line without its terminator.
type Diagnostic struct {
	Rule   *Rule
	Offset int
	Line   int
	Column int
	Source string
}

func newDiagnostic(input string, f Failure) *Diagnostic {
	offset := min(f.Offset, len(input))
	before := input[:offset]
	lineStart := strings.LastIndexByte(before, '\n')
	lineEnd := strings.IndexByte(input[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(input)
	} else {
		lineEnd += offset
	}
	return &Diagnostic{
		Rule:   f.Rule,
		Offset: f.Offset,
		Line:   strings.Count(before, "\n") + 1,
		Column: offset - lineStart,
		Source: strings.TrimSuffix(input[lineStart+1:lineEnd], "\r"),
	}
}

func (d *Diagnostic) ruleName() string {
	if d.Rule == nil {
		return "?"
	}
	return d.Rule.Name
}

// Message returns "line L, column C: failed rule 'name' = 'rendered'".
func (d *Diagnostic) Message() string {
	if d.Rule == nil {
		return fmt.Sprintf("line %d, column %d: failed rule '?'", d.Line, d.Column)
	}
	return fmt.Sprintf("line %d, column %d: failed rule '%s' = '%s'", d.Line, d.Column, d.Rule.Name, d.Rule.Rendered)
}

// Character returns the byte at the failure as a string, or "" at the
// end of a line or of the input.
func (d *Diagnostic) Character() string {
	if d.Column-1 < len(d.Source) {
		return d.Source[d.Column-1 : d.Column]
	}
	return ""
}

// Caret returns the offending line followed by a line with a caret under
// the failure column. Tabs in the source are kept so the caret lines up.
func (d *Diagnostic) Caret() string {
	var b strings.Builder
	b.WriteString(d.Source)
	b.WriteByte('\n')
	for i := 0; i < d.Column-1; i++ {
		if i < len(d.Source) && d.Source[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	return b.String()
}

// Oneline returns "@L:C failed rule 'name', got 'c'".
func (d *Diagnostic) Oneline() string {
	return fmt.Sprintf("@%d:%d failed rule '%s', got '%s'", d.Line, d.Column, d.ruleName(), d.Character())
}

func (d *Diagnostic) String() string { return d.Message() }

// ParseError is the error form of a failed parse.
type ParseError struct {
	Diagnostic *Diagnostic
}

func (e *ParseError) Error() string {
	if e.Diagnostic == nil {
		return "parse failed"
	}
	return e.Diagnostic.Oneline()
}
