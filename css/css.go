// Package css recognizes CSS2.1 style sheets with a packrat grammar.
//
// The rule table follows the CSS2.1 grammar appendix with the lexical
// rules written out as scannerless PEG rules. Keywords such as @import,
// !important and unit names match case-insensitively, including the
// NUL-padded and backslash-escaped forms the tokenizer permits.
package css

import (
	"github.com/dhamidi/pegcss/peg"
)

// NewParser returns a parser for src over the style sheet grammar.
func NewParser(src string, opts ...peg.ParserOption) *peg.Parser {
	return peg.NewParser(Grammar, src, opts...)
}

// Check parses src as a complete style sheet and returns nil or a
// *peg.ParseError locating the farthest failure.
func Check(src string, opts ...peg.ParserOption) error {
	p := NewParser(src, opts...)
	p.Parse()
	return p.Err()
}

// Match reports how many bytes of src the named rule matches. It
// returns -1 if the rule does not match at the start of src.
func Match(rule, src string, opts ...peg.ParserOption) (int, error) {
	p := peg.NewParser(Tokens, src, opts...)
	ok, err := p.ParseRule(rule)
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, nil
	}
	return p.Pos(), nil
}
