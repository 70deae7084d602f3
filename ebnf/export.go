// Package ebnf converts between peg grammars and the EBNF notation of
// golang.org/x/exp/ebnf.
//
// Export writes a grammar as EBNF productions so it can be read,
// diffed and checked with ebnf.Verify. The notation has no predicates
// and no case folding, so the export is an over-approximation: a
// predicate becomes an optional group over its operand, and a
// case-insensitive letter becomes a choice of both cases. Bytes above
// 0x7f are written as the Latin-1 code points of the same value.
//
// Compile goes the other way and turns EBNF productions into a peg
// grammar whose alternatives are ordered choices.
package ebnf

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/dhamidi/pegcss/peg"
	xebnf "golang.org/x/exp/ebnf"
)

// Name maps a rule name to an EBNF production name. Characters that are
// not letters, digits or '_' become '_', and names that do not start
// with a lowercase letter get a "p_" prefix, so every production has
// the same (lexical) kind and may reference every other.
func Name(rule string) string {
	var b strings.Builder
	for i := 0; i < len(rule); i++ {
		c := rule[i]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		name = "p_" + name
	}
	return name
}

// Export writes the rules reachable from start as EBNF productions in
// definition order. An empty start exports every rule.
func Export(w io.Writer, g *peg.Grammar, start string) error {
	rules := g.Rules()
	if start != "" {
		rules = g.Reachable(start)
		if rules == nil {
			return fmt.Errorf("grammar %s: %w %q", g.Name(), peg.ErrUnknownRule, start)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "// Grammar %s, start %s.\n\n", g.Name(), Name(startName(g, start)))
	for _, r := range rules {
		fmt.Fprintf(bw, "%s = %s .\n", Name(r.Name), expression(r.Expr))
	}
	return bw.Flush()
}

func startName(g *peg.Grammar, start string) string {
	if start == "" {
		return g.Start().Name
	}
	return start
}

// Convert exports the rules reachable from start and parses the result.
func Convert(g *peg.Grammar, start string) (xebnf.Grammar, error) {
	var b strings.Builder
	if err := Export(&b, g, start); err != nil {
		return nil, err
	}
	grammar, err := xebnf.Parse(g.Name()+".ebnf", strings.NewReader(b.String()))
	if err != nil {
		return nil, fmt.Errorf("parse exported grammar: %w", err)
	}
	return grammar, nil
}

// Verify exports the rules reachable from start and checks the
// productions with ebnf.Verify.
func Verify(g *peg.Grammar, start string) error {
	if start == "" {
		start = g.Start().Name
	}
	grammar, err := Convert(g, start)
	if err != nil {
		return err
	}
	return xebnf.Verify(grammar, Name(start))
}

// Errors flattens the error lists returned by ebnf.Parse and ebnf.Verify.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	v := reflect.ValueOf(err)
	if v.Kind() != reflect.Slice {
		return []error{err}
	}
	out := make([]error, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if e, ok := v.Index(i).Interface().(error); ok {
			out = append(out, e)
		}
	}
	return out
}

// expression renders e as an EBNF expression.
func expression(e peg.Expr) string {
	switch e := e.(type) {
	case peg.Alternative:
		parts := make([]string, len(e))
		for i, alt := range e {
			parts[i] = expression(alt)
		}
		return strings.Join(parts, " | ")
	case peg.Sequence:
		var parts []string
		for _, item := range e {
			if _, ok := item.(*peg.EndOfInput); ok {
				continue
			}
			parts = append(parts, term(item))
		}
		if len(parts) == 0 {
			return `""`
		}
		return strings.Join(parts, " ")
	}
	return term(e)
}

// term renders e so that it can appear as one element of a sequence.
func term(e peg.Expr) string {
	switch e := e.(type) {
	case *peg.Literal:
		return strconv.Quote(e.Text)
	case *peg.CharClass:
		return repeat(class(e.Ranges()), e.Min, e.Max)
	case *peg.AnyChar:
		return quoteByte(0x00) + " … " + quoteByte(0xff)
	case *peg.EndOfInput:
		return `""`
	case *peg.Reference:
		return Name(e.Name)
	case peg.Sequence, peg.Alternative:
		return "( " + expression(e) + " )"
	case *peg.Repetition:
		return repeat(term(e.Body), e.Min, e.Max)
	case *peg.Option:
		return "[ " + expression(e.Body) + " ]"
	case *peg.Negation:
		return "[ " + expression(e.Body) + " ]"
	case *peg.CaseLetter:
		return letter(e.Lower)
	case *peg.CaseKeyword:
		parts := make([]string, len(e.Word))
		for i := 0; i < len(e.Word); i++ {
			parts[i] = letter(e.Word[i])
		}
		return strings.Join(parts, " ")
	}
	panic(fmt.Sprintf("ebnf: unknown expression %T", e))
}

// repeat renders min mandatory copies of t followed by the optional rest.
func repeat(t string, min, max int) string {
	var parts []string
	for i := 0; i < min; i++ {
		parts = append(parts, t)
	}
	if max < 0 {
		parts = append(parts, "{ "+t+" }")
	} else {
		for i := min; i < max; i++ {
			parts = append(parts, "[ "+t+" ]")
		}
	}
	if len(parts) == 0 {
		return `""`
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "( " + strings.Join(parts, " ") + " )"
}

// class renders byte ranges as a parenthesized choice of tokens and
// character ranges.
func class(ranges [][2]byte) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r[0] == r[1] {
			parts = append(parts, quoteByte(r[0]))
		} else {
			parts = append(parts, quoteByte(r[0])+" … "+quoteByte(r[1]))
		}
	}
	switch len(parts) {
	case 0:
		return `""`
	case 1:
		return parts[0]
	}
	return "( " + strings.Join(parts, " | ") + " )"
}

func letter(lower byte) string {
	upper := lower
	if lower >= 'a' && lower <= 'z' {
		upper = lower - ('a' - 'A')
	}
	if upper == lower {
		return quoteByte(lower)
	}
	return "( " + quoteByte(lower) + " | " + quoteByte(upper) + " )"
}

func quoteByte(c byte) string {
	return strconv.Quote(string(rune(c)))
}
