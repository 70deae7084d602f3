package peg

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is a node of a rule's expression tree. Every expression renders
// itself in the PEG notation used for diagnostics.
type Expr interface {
	String() string
	expr()
}

// Literal matches its text exactly (case-sensitive).
type Literal struct {
	Text string
}

// CharClass matches between Min and Max bytes from a byte class in one
// scan. Max < 0 means unbounded.
type CharClass struct {
	Spec string
	Min  int
	Max  int
	set  byteSet
}

// AnyChar matches a single byte.
type AnyChar struct{}

// EndOfInput succeeds only at the end of the buffer.
type EndOfInput struct{}

// Reference applies another rule of the grammar by name.
type Reference struct {
	Name string
}

// Sequence matches every element consecutively.
type Sequence []Expr

// Alternative is an ordered choice.
type Alternative []Expr

// Repetition matches Body greedily between Min and Max times.
// Max < 0 means unbounded.
type Repetition struct {
	Body Expr
	Min  int
	Max  int
}

// Option matches Body or nothing.
type Option struct {
	Body Expr
}

// Negation is a zero-width assertion that Body does not match.
type Negation struct {
	Body Expr
}

// CaseLetter matches one letter case-insensitively, tolerating up to
// MaxPadding NUL bytes before an uppercase form and one trailing
// whitespace sequence after it.
type CaseLetter struct {
	Lower byte
}

// CaseKeyword matches a word as a sequence of CaseLetter, where letters
// that cannot start a hex escape may also be written backslash-escaped.
type CaseKeyword struct {
	Word string
}

// MaxPadding is the longest run of NUL bytes a CaseLetter skips.
const MaxPadding = 4

func (*Literal) expr()     {}
func (*CharClass) expr()   {}
func (*AnyChar) expr()     {}
func (*EndOfInput) expr()  {}
func (*Reference) expr()   {}
func (Sequence) expr()     {}
func (Alternative) expr()  {}
func (*Repetition) expr()  {}
func (*Option) expr()      {}
func (*Negation) expr()    {}
func (*CaseLetter) expr()  {}
func (*CaseKeyword) expr() {}

// Lit returns a literal expression.
func Lit(s string) Expr {
	return &Literal{Text: s}
}

// Class returns an expression matching exactly one byte of the class
// described by spec, e.g. "0-9a-fA-F" or "^\n\r\f". It panics on a
// malformed spec; grammars are built at init time.
func Class(spec string) Expr {
	return Run(spec, 1, 1)
}

// Run returns a class expression matching between min and max bytes.
func Run(spec string, min, max int) Expr {
	set, err := parseClass(spec)
	if err != nil {
		panic(fmt.Sprintf("peg: %v", err))
	}
	return &CharClass{Spec: spec, Min: min, Max: max, set: set}
}

func Any() Expr { return &AnyChar{} }

func EOF() Expr { return &EndOfInput{} }

// Ref returns a reference to the rule called name.
func Ref(name string) Expr {
	return &Reference{Name: name}
}

// Seq returns a sequence. A single element is returned unwrapped.
func Seq(items ...Expr) Expr {
	if len(items) == 1 {
		return items[0]
	}
	return Sequence(items)
}

// Choice returns an ordered choice. A single alternative is returned unwrapped.
func Choice(alts ...Expr) Expr {
	if len(alts) == 1 {
		return alts[0]
	}
	return Alternative(alts)
}

func ZeroOrMore(e Expr) Expr { return &Repetition{Body: e, Min: 0, Max: -1} }

func OneOrMore(e Expr) Expr { return &Repetition{Body: e, Min: 1, Max: -1} }

// Repeat matches e at least min and at most max times.
func Repeat(e Expr, min, max int) Expr {
	return &Repetition{Body: e, Min: min, Max: max}
}

func Optional(e Expr) Expr { return &Option{Body: e} }

func Not(e Expr) Expr { return &Negation{Body: e} }

// Letter returns the case-insensitive letter primitive for c.
func Letter(c byte) Expr {
	return &CaseLetter{Lower: toLower(c)}
}

// Keyword returns the case-insensitive keyword primitive for word.
func Keyword(word string) Expr {
	return &CaseKeyword{Word: strings.ToLower(word)}
}

func (e *Literal) String() string {
	return strconv.Quote(e.Text)
}

func (e *CharClass) String() string {
	s := "/[" + e.Spec + "]"
	switch {
	case e.Min == 1 && e.Max == 1:
	case e.Min == 0 && e.Max < 0:
		s += "*"
	case e.Min == 1 && e.Max < 0:
		s += "+"
	case e.Max < 0:
		s += fmt.Sprintf("{%d,}", e.Min)
	default:
		s += fmt.Sprintf("{%d,%d}", e.Min, e.Max)
	}
	return s + "/"
}

func (*AnyChar) String() string { return "." }

func (*EndOfInput) String() string { return "!." }

func (e *Reference) String() string { return e.Name }

func (e Sequence) String() string {
	parts := make([]string, len(e))
	for i, item := range e {
		if _, ok := item.(Sequence); ok {
			parts[i] = "(" + item.String() + ")"
		} else {
			parts[i] = item.String()
		}
	}
	return strings.Join(parts, " ")
}

func (e Alternative) String() string {
	parts := make([]string, len(e))
	for i, alt := range e {
		parts[i] = alt.String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func (e *Repetition) String() string {
	body := operand(e.Body)
	switch {
	case e.Min == 0 && e.Max < 0:
		return body + "*"
	case e.Min == 1 && e.Max < 0:
		return body + "+"
	case e.Max < 0:
		return fmt.Sprintf("%s[%d, *]", body, e.Min)
	default:
		return fmt.Sprintf("%s[%d, %d]", body, e.Min, e.Max)
	}
}

func (e *Option) String() string { return operand(e.Body) + "?" }

func (e *Negation) String() string { return "!" + operand(e.Body) }

func (e *CaseLetter) String() string {
	return fmt.Sprintf("letter(%q, %q)", string(e.Lower), string(toUpper(e.Lower)))
}

func (e *CaseKeyword) String() string {
	parts := make([]string, len(e.Word))
	for i := 0; i < len(e.Word); i++ {
		parts[i] = string(toUpper(e.Word[i]))
	}
	return strings.Join(parts, " ")
}

// operand renders e as the operand of a prefix or suffix operator.
func operand(e Expr) string {
	if _, ok := e.(Sequence); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// walk calls fn for e and every expression below it, parents first.
func walk(e Expr, fn func(Expr)) {
	fn(e)
	switch e := e.(type) {
	case Sequence:
		for _, item := range e {
			walk(item, fn)
		}
	case Alternative:
		for _, alt := range e {
			walk(alt, fn)
		}
	case *Repetition:
		walk(e.Body, fn)
	case *Option:
		walk(e.Body, fn)
	case *Negation:
		walk(e.Body, fn)
	}
}
