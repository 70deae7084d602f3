package peg

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		define func(b *Builder)
		start  string
		want   []string
	}{
		{
			name: "undefined reference",
			define: func(b *Builder) {
				b.Define("a", Seq(Ref("b"), Ref("c")))
				b.Define("b", Lit("b"))
			},
			start: "a",
			want:  []string{`rule "a": references undefined rule "c"`},
		},
		{
			name: "duplicate",
			define: func(b *Builder) {
				b.Define("a", Lit("a"))
				b.Define("a", Lit("b"))
			},
			start: "a",
			want:  []string{`rule "a": already defined`},
		},
		{
			name: "missing start",
			define: func(b *Builder) {
				b.Define("a", Lit("a"))
			},
			start: "root",
			want:  []string{`start rule "root" is missing`},
		},
		{
			name: "empty start",
			define: func(b *Builder) {
				b.Define("a", Lit("a"))
			},
			start: "",
			want:  []string{"start rule undefined"},
		},
		{
			name: "nil expression",
			define: func(b *Builder) {
				b.Define("a", nil)
			},
			start: "a",
			want:  []string{`rule "a": empty definition`, `start rule "a" is missing`},
		},
		{
			name: "several problems",
			define: func(b *Builder) {
				b.Define("a", Ref("x"))
				b.Define("b", Ref("y"))
			},
			start: "a",
			want:  []string{`undefined rule "x"`, `undefined rule "y"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder("test")
			tt.define(b)
			g, err := b.Build(tt.start)
			if err == nil {
				t.Fatalf("Build() = %v, want error", g)
			}
			var gerr *GrammarError
			if !errors.As(err, &gerr) {
				t.Errorf("Build() error %T is not a *GrammarError", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Build() error = %q, want it to contain %q", err, want)
				}
			}
		})
	}
}

func TestMustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustBuild() did not panic")
		}
	}()
	NewBuilder("test").MustBuild("root")
}

func TestBuilderSharedByGrammars(t *testing.T) {
	b := NewBuilder("shared")
	b.Define("a", Lit("a"))
	b.Define("b", Lit("b"))

	ga := b.MustBuild("a")
	gb := b.MustBuild("b")
	if ga.Start().Name != "a" || gb.Start().Name != "b" {
		t.Fatalf("Start() = %s, %s; want a, b", ga.Start().Name, gb.Start().Name)
	}
	if ga.Rule("a") == gb.Rule("a") {
		t.Error("grammars share rule values")
	}
	if !NewParser(gb, "b").Parse() {
		t.Error("grammar b rejected \"b\"")
	}
}

func TestGrammarRules(t *testing.T) {
	b := NewBuilder("rules")
	b.Define("root", Seq(Ref("x"), Ref("y")))
	b.Define("x", Lit("x"))
	b.Define("y", Choice(Lit("y"), Ref("x")))
	b.Define("orphan", Lit("o"))
	g := b.MustBuild("root")

	if g.Name() != "rules" {
		t.Errorf("Name() = %q, want %q", g.Name(), "rules")
	}
	rules := g.Rules()
	if len(rules) != 4 {
		t.Fatalf("len(Rules()) = %d, want 4", len(rules))
	}
	for i, r := range rules {
		if r.ID() != i {
			t.Errorf("%s.ID() = %d, want %d", r.Name, r.ID(), i)
		}
	}
	if got := g.Rule("y").String(); got != `y = ("y" | x)` {
		t.Errorf("Rule(y).String() = %q", got)
	}
	if g.Rule("missing") != nil {
		t.Error("Rule(missing) != nil")
	}

	var names []string
	for _, r := range g.Reachable("root") {
		names = append(names, r.Name)
	}
	if got := strings.Join(names, ","); got != "root,x,y" {
		t.Errorf("Reachable(root) = %s, want root,x,y", got)
	}
	if g.Reachable("missing") != nil {
		t.Error("Reachable(missing) != nil")
	}
}

func TestLeftRecursionAnalysis(t *testing.T) {
	b := NewBuilder("lr")
	b.Define("E", Choice(Seq(Ref("F"), Lit("+"), Ref("T")), Ref("T")))
	b.Define("F", Seq(Optional(Lit("-")), Ref("E")))
	b.Define("T", Choice(Seq(Ref("T"), Lit("*"), Ref("P")), Ref("P")))
	b.Define("P", Seq(Lit("("), Ref("E"), Lit(")")))
	b.Define("Q", Seq(Run(`a`, 0, -1), Ref("Q"), Lit("b")))
	b.Define("R", Seq(Lit("r"), Ref("R")))
	g := b.MustBuild("E")

	tests := []struct {
		rule        string
		leader      bool
		passthrough bool
	}{
		{"E", true, false},
		{"F", false, true},
		{"T", true, false},
		{"P", false, false},
		{"Q", true, false},
		{"R", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r := g.Rule(tt.rule)
			if r.leader != tt.leader {
				t.Errorf("leader = %v, want %v", r.leader, tt.leader)
			}
			if r.passthrough != tt.passthrough {
				t.Errorf("passthrough = %v, want %v", r.passthrough, tt.passthrough)
			}
			if r.LeftRecursive() != (tt.leader || tt.passthrough) {
				t.Errorf("LeftRecursive() = %v", r.LeftRecursive())
			}
		})
	}
}

func TestLeftRecursionAnalysisInterlocked(t *testing.T) {
	b := NewBuilder("interlock")
	b.Define("L", Choice(Seq(Ref("P"), Lit(".x")), Lit("x")))
	b.Define("P", Choice(Seq(Ref("P"), Lit("(n)")), Ref("L")))
	g := b.MustBuild("L")

	l, p := g.Rule("L"), g.Rule("P")
	if !l.leader || !p.leader {
		t.Fatalf("leaders: L=%v P=%v, want both", l.leader, p.leader)
	}
	if len(l.involved) != 1 || l.involved[0] != p.id {
		t.Errorf("L.involved = %v, want [%d]", l.involved, p.id)
	}
	if len(p.involved) != 1 || p.involved[0] != l.id {
		t.Errorf("P.involved = %v, want [%d]", p.involved, l.id)
	}

	sum := NewBuilder("sum")
	sum.Define("E", Choice(Seq(Ref("E"), Lit("+"), Lit("1")), Lit("1")))
	if e := sum.MustBuild("E").Rule("E"); len(e.involved) != 0 {
		t.Errorf("single leader E.involved = %v, want none", e.involved)
	}
}

func TestNullable(t *testing.T) {
	b := NewBuilder("nullable")
	b.Define("a", Run(`x`, 0, -1))
	b.Define("b", Seq(Ref("a"), Optional(Lit("y"))))
	b.Define("c", Seq(Ref("b"), Lit("z")))
	b.Define("d", Choice(Ref("c"), Not(Lit("q"))))
	b.Define("e", Keyword("em"))
	g := b.MustBuild("a")

	want := map[string]bool{"a": true, "b": true, "c": false, "d": true, "e": false}
	nullable := g.nullable()
	for name, w := range want {
		if got := nullable[g.Rule(name).ID()]; got != w {
			t.Errorf("nullable(%s) = %v, want %v", name, got, w)
		}
	}
}
