package main

import (
	"fmt"
	"strings"

	"github.com/dhamidi/pegcss/css"
	"github.com/dhamidi/pegcss/ebnf"
	"github.com/dhamidi/pegcss/peg"
	"github.com/dhamidi/pegcss/workspace"
)

// grammarFlags are shared by every command that parses input.
type grammarFlags struct {
	grammar string
	rule    string
	noMemo  bool
	trace   bool
	jobs    int
}

// load resolves --grammar: a path ending in .ebnf is compiled with --rule
// as its start production, anything else is looked up in the registry.
func (f *grammarFlags) load() (*peg.Grammar, error) {
	if strings.HasSuffix(f.grammar, ".ebnf") {
		if f.rule == "" {
			return nil, fmt.Errorf("--rule is required with an EBNF grammar")
		}
		return ebnf.LoadGrammar(f.grammar, f.rule)
	}
	return css.Lookup(f.grammar)
}

func (f *grammarFlags) options() []workspace.Option {
	var parserOpts []peg.ParserOption
	if f.noMemo {
		parserOpts = append(parserOpts, peg.WithoutMemo())
	}
	if f.trace {
		parserOpts = append(parserOpts, peg.WithTrace())
	}
	opts := []workspace.Option{
		workspace.WithJobs(f.jobs),
		workspace.WithParserOptions(parserOpts...),
	}
	if f.rule != "" {
		opts = append(opts, workspace.WithRule(f.rule))
	}
	return opts
}
