package peg

import (
	"errors"
	"strings"
	"testing"
)

func linesGrammar() *Grammar {
	b := NewBuilder("lines")
	b.Define("doc", Seq(OneOrMore(Ref("item")), EOF()))
	b.Define("item", Seq(Ref("word"), Ref("nl")))
	b.Define("word", Run(`a-z\t`, 1, -1))
	b.Define("nl", Lit("\n"))
	return b.MustBuild("doc")
}

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		rule    string
		offset  int
		line    int
		column  int
		char    string
		caret   string
		oneline string
	}{
		{
			name:    "mid line",
			input:   "abc\nde1\n",
			rule:    "nl",
			offset:  6,
			line:    2,
			column:  3,
			char:    "1",
			caret:   "de1\n  ^",
			oneline: "@2:3 failed rule 'nl', got '1'",
		},
		{
			name:    "first column",
			input:   "1",
			rule:    "word",
			offset:  0,
			line:    1,
			column:  1,
			char:    "1",
			caret:   "1\n^",
			oneline: "@1:1 failed rule 'word', got '1'",
		},
		{
			name:    "end of input",
			input:   "abc\nde",
			rule:    "nl",
			offset:  6,
			line:    2,
			column:  3,
			char:    "",
			caret:   "de\n  ^",
			oneline: "@2:3 failed rule 'nl', got ''",
		},
		{
			name:    "tabs kept",
			input:   "\tab;",
			rule:    "nl",
			offset:  3,
			line:    1,
			column:  4,
			char:    ";",
			caret:   "\tab;\n\t  ^",
			oneline: "@1:4 failed rule 'nl', got ';'",
		},
		{
			name:    "crlf line",
			input:   "ab\r\n",
			rule:    "nl",
			offset:  2,
			line:    1,
			column:  3,
			char:    "",
			caret:   "ab\n  ^",
			oneline: "@1:3 failed rule 'nl', got ''",
		},
	}

	g := linesGrammar()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(g, tt.input)
			if p.Parse() {
				t.Fatal("Parse() = true, want false")
			}
			d := p.Diagnostic()
			if d == nil {
				t.Fatal("Diagnostic() = nil")
			}
			if d.Rule.Name != tt.rule {
				t.Errorf("Rule = %s, want %s", d.Rule.Name, tt.rule)
			}
			if d.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", d.Offset, tt.offset)
			}
			if d.Line != tt.line || d.Column != tt.column {
				t.Errorf("Line:Column = %d:%d, want %d:%d", d.Line, d.Column, tt.line, tt.column)
			}
			if got := d.Character(); got != tt.char {
				t.Errorf("Character() = %q, want %q", got, tt.char)
			}
			if got := d.Caret(); got != tt.caret {
				t.Errorf("Caret() = %q, want %q", got, tt.caret)
			}
			if got := d.Oneline(); got != tt.oneline {
				t.Errorf("Oneline() = %q, want %q", got, tt.oneline)
			}

			var perr *ParseError
			if err := p.Err(); !errors.As(err, &perr) {
				t.Fatalf("Err() = %v, want *ParseError", err)
			}
			if perr.Error() != tt.oneline {
				t.Errorf("Err().Error() = %q, want %q", perr.Error(), tt.oneline)
			}
		})
	}
}

func TestDiagnosticMessage(t *testing.T) {
	p := NewParser(linesGrammar(), "abc\nde1\n")
	p.Parse()
	want := `line 2, column 3: failed rule 'nl' = '"\n"'`
	if got := p.Diagnostic().Message(); got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if got := p.Diagnostic().String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFailureFarthestWins(t *testing.T) {
	b := NewBuilder("far")
	b.Define("S", Choice(
		Seq(Lit(strings.Repeat("a", 10)), Ref("A")),
		Seq(Lit(strings.Repeat("a", 15)), Ref("B")),
		Seq(Lit(strings.Repeat("a", 12)), Ref("C")),
		Seq(Lit(strings.Repeat("a", 15)), Ref("D")),
	))
	b.Define("A", Lit("z"))
	b.Define("B", Lit("z"))
	b.Define("C", Lit("z"))
	b.Define("D", Lit("z"))
	g := b.MustBuild("S")

	p := NewParser(g, strings.Repeat("a", 20))
	if p.Parse() {
		t.Fatal("Parse() = true, want false")
	}
	f := p.Failure()
	if f.Offset != 15 {
		t.Errorf("Offset = %d, want 15", f.Offset)
	}
	// D failed at the same offset after B; the earlier record stands.
	if f.Rule.Name != "B" {
		t.Errorf("Rule = %s, want B", f.Rule.Name)
	}
}

func TestFailureMonotonic(t *testing.T) {
	b := NewBuilder("mono")
	b.Define("S", Seq(Ref("A"), Ref("B")))
	b.Define("A", Choice(Seq(Lit("xxx"), Ref("Z")), Lit("x")))
	b.Define("B", Lit("y"))
	b.Define("Z", Lit("z"))
	g := b.MustBuild("S")

	p := NewParser(g, "xxxq")
	p.Parse()
	if f := p.Failure(); f.Offset != 3 || f.Rule.Name != "Z" {
		t.Errorf("Failure() = %s@%d, want Z@3", f.Rule.Name, f.Offset)
	}
}

func TestFailurePartialMatch(t *testing.T) {
	b := NewBuilder("partial")
	b.Define("S", Lit("ab"))
	p := NewParser(b.MustBuild("S"), "abc")
	if p.Parse() {
		t.Fatal("Parse() = true, want false")
	}
	d := p.Diagnostic()
	if d.Rule.Name != "S" || d.Offset != 2 {
		t.Errorf("Diagnostic() = %s@%d, want S@2", d.Rule.Name, d.Offset)
	}
	if d.Character() != "c" {
		t.Errorf("Character() = %q, want %q", d.Character(), "c")
	}
}

func TestErrNilOnSuccess(t *testing.T) {
	p := NewParser(linesGrammar(), "abc\n")
	if !p.Parse() {
		t.Fatalf("Parse() = false; %v", p.Diagnostic())
	}
	if err := p.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
	// Failed alternatives during a successful parse are still recorded.
	if d := p.Diagnostic(); d == nil || d.Offset != 4 {
		t.Errorf("Diagnostic() = %v, want a failure at 4", d)
	}
}

func TestDiagnosticNilBeforeFailure(t *testing.T) {
	p := NewParser(linesGrammar(), "abc\n")
	if p.Diagnostic() != nil {
		t.Error("Diagnostic() before parsing != nil")
	}
	if p.Err() != nil {
		t.Error("Err() before parsing != nil")
	}
}
