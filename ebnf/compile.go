package ebnf

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dhamidi/pegcss/peg"
	xebnf "golang.org/x/exp/ebnf"
)

// LoadGrammar reads an EBNF file, verifies it from start and compiles it.
func LoadGrammar(filename, start string) (*peg.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := xebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	if err := xebnf.Verify(grammar, start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}
	return Compile(filename, grammar, start)
}

// Compile builds a peg grammar from EBNF productions. Rules keep the
// production names and their source order; alternatives are tried in
// the order written.
func Compile(name string, grammar xebnf.Grammar, start string) (*peg.Grammar, error) {
	prods := make([]*xebnf.Production, 0, len(grammar))
	for _, p := range grammar {
		prods = append(prods, p)
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].Pos().Offset < prods[j].Pos().Offset
	})

	b := peg.NewBuilder(name)
	var errs []error
	for _, p := range prods {
		e, err := convert(p.Expr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: production %s: %w", p.Pos(), p.Name.String, err))
			continue
		}
		b.Define(p.Name.String, e)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b.Build(start)
}

func convert(e xebnf.Expression) (peg.Expr, error) {
	switch e := e.(type) {
	case nil:
		return peg.Lit(""), nil
	case *xebnf.Token:
		return peg.Lit(e.String), nil
	case *xebnf.Range:
		lo, err := byteOf(e.Begin.String)
		if err != nil {
			return nil, err
		}
		hi, err := byteOf(e.End.String)
		if err != nil {
			return nil, err
		}
		return peg.Class(fmt.Sprintf(`\x%02x-\x%02x`, lo, hi)), nil
	case *xebnf.Name:
		return peg.Ref(e.String), nil
	case xebnf.Sequence:
		items, err := convertAll(e)
		if err != nil {
			return nil, err
		}
		return peg.Seq(items...), nil
	case xebnf.Alternative:
		alts, err := convertAll(e)
		if err != nil {
			return nil, err
		}
		return peg.Choice(alts...), nil
	case *xebnf.Group:
		return convert(e.Body)
	case *xebnf.Option:
		body, err := convert(e.Body)
		if err != nil {
			return nil, err
		}
		return peg.Optional(body), nil
	case *xebnf.Repetition:
		body, err := convert(e.Body)
		if err != nil {
			return nil, err
		}
		return peg.ZeroOrMore(body), nil
	case *xebnf.Bad:
		return nil, errors.New(e.Error)
	}
	return nil, fmt.Errorf("unsupported expression %T", e)
}

func convertAll(list []xebnf.Expression) ([]peg.Expr, error) {
	out := make([]peg.Expr, len(list))
	for i, e := range list {
		c, err := convert(e)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// byteOf returns the single character of a range bound as a byte.
func byteOf(s string) (byte, error) {
	r := []rune(s)
	if len(r) != 1 || r[0] > 0xff {
		return 0, fmt.Errorf("range bound %q is not a single byte", s)
	}
	return byte(r[0]), nil
}
