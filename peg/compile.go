package peg

import (
	"fmt"
	"strings"
)

// matchFunc attempts a match at pos. On success it returns the end of
// the match; on failure it returns pos unchanged.
type matchFunc func(p *Parser, pos int) (int, bool)

// compile turns an expression tree into a matcher closure. References
// must already have been validated.
func (g *Grammar) compile(e Expr) matchFunc {
	switch e := e.(type) {
	case *Literal:
		text := e.Text
		return func(p *Parser, pos int) (int, bool) {
			if strings.HasPrefix(p.input[pos:], text) {
				return pos + len(text), true
			}
			return pos, false
		}

	case *CharClass:
		class := e
		return func(p *Parser, pos int) (int, bool) {
			i, n := pos, 0
			for i < len(p.input) && (class.Max < 0 || n < class.Max) && class.set.has(p.input[i]) {
				i++
				n++
			}
			if n < class.Min {
				return pos, false
			}
			return i, true
		}

	case *AnyChar:
		return func(p *Parser, pos int) (int, bool) {
			if pos < len(p.input) {
				return pos + 1, true
			}
			return pos, false
		}

	case *EndOfInput:
		return func(p *Parser, pos int) (int, bool) {
			return pos, pos == len(p.input)
		}

	case *Reference:
		r := g.rules[g.index[e.Name]]
		return func(p *Parser, pos int) (int, bool) {
			return p.apply(r, pos)
		}

	case Sequence:
		items := g.compileAll(e)
		return func(p *Parser, pos int) (int, bool) {
			cur := pos
			for _, m := range items {
				next, ok := m(p, cur)
				if !ok {
					return pos, false
				}
				cur = next
			}
			return cur, true
		}

	case Alternative:
		alts := g.compileAll(e)
		return func(p *Parser, pos int) (int, bool) {
			for _, m := range alts {
				if end, ok := m(p, pos); ok {
					return end, true
				}
			}
			return pos, false
		}

	case *Repetition:
		body := g.compile(e.Body)
		min, max := e.Min, e.Max
		return func(p *Parser, pos int) (int, bool) {
			cur, count := pos, 0
			for max < 0 || count < max {
				next, ok := body(p, cur)
				if !ok {
					break
				}
				count++
				if next == cur {
					break
				}
				cur = next
			}
			if count < min {
				return pos, false
			}
			return cur, true
		}

	case *Option:
		body := g.compile(e.Body)
		return func(p *Parser, pos int) (int, bool) {
			if end, ok := body(p, pos); ok {
				return end, true
			}
			return pos, true
		}

	case *Negation:
		body := g.compile(e.Body)
		return func(p *Parser, pos int) (int, bool) {
			_, ok := body(p, pos)
			return pos, !ok
		}

	case *CaseLetter:
		return matchLetter(e.Lower)

	case *CaseKeyword:
		letters := make([]matchFunc, len(e.Word))
		for i := 0; i < len(e.Word); i++ {
			letters[i] = matchEscapedLetter(e.Word[i])
		}
		return func(p *Parser, pos int) (int, bool) {
			cur := pos
			for _, m := range letters {
				next, ok := m(p, cur)
				if !ok {
					return pos, false
				}
				cur = next
			}
			return cur, true
		}
	}
	panic(fmt.Sprintf("peg: unknown expression %T", e))
}

func (g *Grammar) compileAll(exprs []Expr) []matchFunc {
	out := make([]matchFunc, len(exprs))
	for i, e := range exprs {
		out[i] = g.compile(e)
	}
	return out
}

// matchLetter matches lower exactly, or up to MaxPadding NULs followed by
// either case of the letter and an optional trailing "\r\n" or
// whitespace byte.
func matchLetter(lower byte) matchFunc {
	upper := toUpper(lower)
	return func(p *Parser, pos int) (int, bool) {
		in := p.input
		if pos < len(in) && in[pos] == lower {
			return pos + 1, true
		}
		i := pos
		for n := 0; n < MaxPadding && i < len(in) && in[i] == 0; n++ {
			i++
		}
		if i >= len(in) || (in[i] != lower && in[i] != upper) {
			return pos, false
		}
		i++
		switch {
		case strings.HasPrefix(in[i:], "\r\n"):
			i += 2
		case i < len(in) && isSpace(in[i]):
			i++
		}
		return i, true
	}
}

// matchEscapedLetter extends matchLetter with the backslash-escaped form
// for letters that are not hex digits.
func matchEscapedLetter(c byte) matchFunc {
	letter := matchLetter(c)
	if c >= 'a' && c <= 'f' || c < 'a' || c > 'z' {
		return letter
	}
	escaped := string([]byte{'\\', c})
	return func(p *Parser, pos int) (int, bool) {
		if end, ok := letter(p, pos); ok {
			return end, true
		}
		if strings.HasPrefix(p.input[pos:], escaped) {
			return pos + 2, true
		}
		return pos, false
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}
