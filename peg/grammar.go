package peg

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("pegcss.peg")

// Rule is one named production of a grammar. Rules are immutable once
// the grammar is built.
type Rule struct {
	Name     string
	Expr     Expr
	Rendered string

	id    int
	match matchFunc

	// leader rules head a left-recursive cycle and grow their seed;
	// passthrough rules sit on such a cycle and bypass the memo table.
	leader      bool
	passthrough bool

	// involved lists the other leaders of a leader's cycle.
	involved []int
}

// ID returns the interned rule identifier, dense from zero.
func (r *Rule) ID() int { return r.id }

// LeftRecursive reports whether the rule lies on a left-recursive cycle.
func (r *Rule) LeftRecursive() bool { return r.leader || r.passthrough }

func (r *Rule) String() string {
	return r.Name + " = " + r.Rendered
}

// GrammarError describes a malformed grammar table.
type GrammarError struct {
	Grammar string
	Rule    string
	Message string
}

func (e *GrammarError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("grammar %s: rule %q: %s", e.Grammar, e.Rule, e.Message)
	}
	return fmt.Sprintf("grammar %s: %s", e.Grammar, e.Message)
}

type definition struct {
	name string
	expr Expr
}

// Builder collects rule definitions. One builder may produce several
// grammars that differ only in their start rule.
type Builder struct {
	name  string
	defs  []definition
	index map[string]int
	errs  []error
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		index: make(map[string]int),
	}
}

// Define adds a rule. Redefining a name is reported by Build.
func (b *Builder) Define(name string, e Expr) {
	if _, ok := b.index[name]; ok {
		b.errs = append(b.errs, &GrammarError{Grammar: b.name, Rule: name, Message: "already defined"})
		return
	}
	if e == nil {
		b.errs = append(b.errs, &GrammarError{Grammar: b.name, Rule: name, Message: "empty definition"})
		return
	}
	b.index[name] = len(b.defs)
	b.defs = append(b.defs, definition{name: name, expr: e})
}

// Build validates the definitions and returns an immutable grammar whose
// designated start rule is start. All problems found are returned together.
func (b *Builder) Build(start string) (*Grammar, error) {
	errs := append([]error(nil), b.errs...)

	if start == "" {
		errs = append(errs, &GrammarError{Grammar: b.name, Message: "start rule undefined"})
	} else if _, ok := b.index[start]; !ok {
		errs = append(errs, &GrammarError{Grammar: b.name, Message: fmt.Sprintf("start rule %q is missing", start)})
	}

	for _, def := range b.defs {
		walk(def.expr, func(e Expr) {
			ref, ok := e.(*Reference)
			if !ok {
				return
			}
			if _, ok := b.index[ref.Name]; !ok {
				errs = append(errs, &GrammarError{
					Grammar: b.name,
					Rule:    def.name,
					Message: fmt.Sprintf("references undefined rule %q", ref.Name),
				})
			}
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	g := &Grammar{
		name:  b.name,
		rules: make([]*Rule, len(b.defs)),
		index: make(map[string]int, len(b.defs)),
	}
	for i, def := range b.defs {
		g.rules[i] = &Rule{
			Name:     def.name,
			Expr:     def.expr,
			Rendered: def.expr.String(),
			id:       i,
		}
		g.index[def.name] = i
	}
	for _, r := range g.rules {
		r.match = g.compile(r.Expr)
	}
	g.start = g.rules[g.index[start]]

	g.analyze()
	return g, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild(start string) *Grammar {
	g, err := b.Build(start)
	if err != nil {
		panic(err)
	}
	return g
}

// Grammar is an immutable rule table shared by any number of parsers.
type Grammar struct {
	name  string
	start *Rule
	rules []*Rule
	index map[string]int
}

func (g *Grammar) Name() string { return g.name }

// Start returns the designated start rule.
func (g *Grammar) Start() *Rule { return g.start }

// Rule returns the rule called name, or nil.
func (g *Grammar) Rule(name string) *Rule {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.rules[i]
}

// Rules returns the rules in definition order.
func (g *Grammar) Rules() []*Rule {
	return append([]*Rule(nil), g.rules...)
}

// Reachable returns the rules reachable from the named rule, in
// definition order. It returns nil if the rule does not exist.
func (g *Grammar) Reachable(from string) []*Rule {
	root := g.Rule(from)
	if root == nil {
		return nil
	}
	seen := make([]bool, len(g.rules))
	stack := []*Rule{root}
	seen[root.id] = true
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		walk(r.Expr, func(e Expr) {
			if ref, ok := e.(*Reference); ok {
				next := g.rules[g.index[ref.Name]]
				if !seen[next.id] {
					seen[next.id] = true
					stack = append(stack, next)
				}
			}
		})
	}
	var out []*Rule
	for i, ok := range seen {
		if ok {
			out = append(out, g.rules[i])
		}
	}
	return out
}

// analyze finds left-recursive cycles, marks their leaders, and logs
// rules the start rule can never reach.
func (g *Grammar) analyze() {
	nullable := g.nullable()
	edges := make([][]int, len(g.rules))
	for _, r := range g.rules {
		edges[r.id] = g.leftCalls(r.Expr, nullable, nil)
	}

	all := make([]int, len(g.rules))
	for i := range all {
		all[i] = i
	}
	for _, comp := range components(all, edges) {
		if !cyclic(comp, edges) {
			continue
		}
		leaders := chooseLeaders(comp, edges)
		isLeader := make(map[int]bool, len(leaders))
		var names []string
		for _, id := range leaders {
			isLeader[id] = true
			g.rules[id].leader = true
			names = append(names, g.rules[id].Name)
		}
		for _, id := range comp {
			if !isLeader[id] {
				g.rules[id].passthrough = true
			}
		}
		for _, id := range leaders {
			for _, other := range leaders {
				if other != id {
					g.rules[id].involved = append(g.rules[id].involved, other)
				}
			}
		}
		sort.Strings(names)
		log.Debugf("grammar %s: left-recursive cycle of %d rules led by %v", g.name, len(comp), names)
	}

	reached := g.Reachable(g.start.Name)
	if len(reached) < len(g.rules) {
		seen := make(map[int]bool, len(reached))
		for _, r := range reached {
			seen[r.id] = true
		}
		for _, r := range g.rules {
			if !seen[r.id] {
				log.Debugf("grammar %s: rule %q is unreachable from %q", g.name, r.Name, g.start.Name)
			}
		}
	}
}
