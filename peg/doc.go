// Package peg implements a scannerless packrat recognizer for parsing
// expression grammars.
//
// A grammar is a table of named rules built once with a Builder and
// shared read-only by any number of Parsers. Each rule's expression tree
// is compiled into a closure at build time; references between rules are
// resolved to interned rule ids, and undefined references are reported
// by Build rather than during a parse.
//
// A Parser applies rules through a memo table keyed by (rule, position),
// so each pair is evaluated at most once and parsing stays linear in the
// input despite unrestricted backtracking. Rules may reference
// themselves before consuming input, directly or through other rules:
// the first re-entrant application at a position fails, the rule's
// non-recursive alternatives produce a seed, and the rule is then
// re-evaluated with the seed memoized until the match stops growing.
//
// Parsing only recognizes. On failure the Parser keeps the farthest
// offset at which any rule failed, and Diagnostic renders it as a line,
// column, caret and message:
//
//	p := peg.NewParser(g, src)
//	if !p.Parse() {
//		d := p.Diagnostic()
//		fmt.Println(d.Message())
//		fmt.Println(d.Caret())
//	}
package peg
