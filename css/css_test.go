package css

import (
	"errors"
	"testing"

	"github.com/dhamidi/pegcss/peg"
)

var validSheets = []struct {
	name string
	src  string
}{
	{"empty", ""},
	{"simple rule", "a { color: red; }"},
	{"only comment", "/* c */"},
	{"url", "td { background-image: url(http://example/x.png); }"},
	{"quoted url", `td { background: url( "a b.png" ) no-repeat }`},
	{"import uri", "@import url(foo.css) screen;"},
	{"import string", `@import "a.css";`},
	{"charset", "@charset \"utf-8\";\nbody{margin:0}"},
	{"media query", "@media screen and (min-width: 100px) { p { margin: 0 } }"},
	{"uppercase keywords", "@MEDIA print { h1 { font-size: 1.5EM } }"},
	{"selectors", `p:first-child, a:hover > b.c#d[title~="x"] { color: #fff !important }`},
	{"pseudo function", "li:nth-child( odd ) { x: y }"},
	{"markup comments", "<!-- a { b: c } -->"},
	{"page", "@page :first { margin: 1in }"},
	{"filter hack", "a { filter: progid:DXImageTransform.Microsoft.Alpha(opacity=50) }"},
	{"star hack", "a { *zoom: 1 }"},
	{"unary", "a { width: -1.5em; margin: +2px }"},
	{"font shorthand", `a { font: 12px/1.5 "Helvetica Neue", sans-serif }`},
	{"function", "a { background: rgb(0, 0, 0) }"},
	{"comments between", "/* head */ a { /* x */ color: red } /* tail */"},
	{"empty block", "a{}"},
	{"units", "a { t: 2s 10ms 90deg 1.2rad 5hz 3khz 300dpi 4em 2ex 50% 3vw }"},
	{"escaped ident", `.\31 23 { a: b }`},
	{"spaced important", "a { b: c ! /* x */ IMPORTANT }"},
}

var invalidSheets = []struct {
	name   string
	src    string
	offset int
}{
	{"missing colon", "a { color }", 10},
	{"unterminated string", `a { content: "abc }`, 19},
	{"missing brace", "a { color: red", 14},
	{"missing selector", "{ color: red }", 0},
	{"missing value", "a { b: }", 7},
	{"import without semicolon", "@import url(a.css)", 18},
}

func TestCheckValid(t *testing.T) {
	for _, tt := range validSheets {
		t.Run(tt.name, func(t *testing.T) {
			if err := Check(tt.src); err != nil {
				t.Errorf("Check(%q) = %v, want nil", tt.src, err)
			}
		})
	}
}

func TestCheckInvalid(t *testing.T) {
	for _, tt := range invalidSheets {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.src)
			var perr *peg.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Check(%q) = %v, want *peg.ParseError", tt.src, err)
			}
			if perr.Diagnostic.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d (%s)", perr.Diagnostic.Offset, tt.offset, perr.Diagnostic.Message())
			}
		})
	}
}

func TestMissingColonDiagnostic(t *testing.T) {
	p := NewParser("a { color }")
	if p.Parse() {
		t.Fatal("Parse() = true, want false")
	}
	d := p.Diagnostic()
	if d.Line != 1 || d.Column != 11 {
		t.Errorf("Line:Column = %d:%d, want 1:11", d.Line, d.Column)
	}
	if d.Character() != "}" {
		t.Errorf("Character() = %q, want %q", d.Character(), "}")
	}
	if d.Caret() != "a { color }\n          ^" {
		t.Errorf("Caret() = %q", d.Caret())
	}
}

func TestUnterminatedStringDiagnostic(t *testing.T) {
	src := `a { content: "abc }`
	p := NewParser(src)
	if p.Parse() {
		t.Fatal("Parse() = true, want false")
	}
	d := p.Diagnostic()
	if d.Offset != len(src) {
		t.Errorf("Offset = %d, want %d", d.Offset, len(src))
	}
	if d.Character() != "" {
		t.Errorf("Character() = %q, want end of input", d.Character())
	}
}

func TestMultilineDiagnostic(t *testing.T) {
	src := "a {\n  color: red;\n  margin\n}"
	p := NewParser(src)
	if p.Parse() {
		t.Fatal("Parse() = true, want false")
	}
	d := p.Diagnostic()
	if d.Offset != 27 || d.Line != 4 || d.Column != 1 {
		t.Errorf("Diagnostic() = %d@%d:%d, want 27@4:1", d.Offset, d.Line, d.Column)
	}
	if d.Source != "}" {
		t.Errorf("Source = %q, want %q", d.Source, "}")
	}
}

func TestMemoTransparency(t *testing.T) {
	var sources []string
	for _, tt := range validSheets {
		sources = append(sources, tt.src)
	}
	for _, tt := range invalidSheets {
		sources = append(sources, tt.src)
	}

	for _, src := range sources {
		memo := NewParser(src)
		plain := NewParser(src, peg.WithoutMemo())
		mok, pok := memo.Parse(), plain.Parse()
		if mok != pok {
			t.Errorf("%q: Parse() memo=%v plain=%v", src, mok, pok)
			continue
		}
		if memo.Pos() != plain.Pos() {
			t.Errorf("%q: Pos() memo=%d plain=%d", src, memo.Pos(), plain.Pos())
		}
		if memo.Failure() != plain.Failure() {
			t.Errorf("%q: Failure() memo=%+v plain=%+v", src, memo.Failure(), plain.Failure())
		}
	}
}

func TestGrammarSharedAcrossParsers(t *testing.T) {
	done := make(chan error)
	for _, tt := range validSheets {
		go func(src string) {
			done <- Check(src)
		}(tt.src)
	}
	for range validSheets {
		if err := <-done; err != nil {
			t.Errorf("concurrent Check() = %v", err)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		rule string
		src  string
		want int
	}{
		{"BAD_STRING", `"abc`, 4},
		{"BAD_STRING", "'abc\ndef", 4},
		{"STRING", `"abc`, -1},
		{"STRING", `"a\"b"`, 6},
		{"STRING", "'a\\\nb'", 6},
		{"BAD_URI", "url(foo", 7},
		{"BAD_URI", `url("abc`, 8},
		{"badcomment", "/* abc", 6},
		{"badcomment", "/* abc **", 9},
		{"comment", "/* a * b **/x", 12},
		{"DIMENSION", "12vw", 4},
		{"HASH", "#a-b", 4},
		{"IDENT", "-moz-box", 8},
		{"IDENT", `\31 23`, 6},
		{"IDENT", "9a", -1},
		{"num", "1.5", 3},
		{"num", ".5", 2},
		{"num", "7", 1},
		{"unicode", `\0000411`, 7},
		{"escape", `\"`, 2},
		{"IMPORTANT_SYM", "! /* c */ IMPORTANT", 19},
		{"URI", `url( "a b" )`, 12},
		{"ATKEYWORD", "@font-face", 10},
		{"CDC", "-->", 3},
		{"DELIM", `"`, -1},
		{"DELIM", "{", 1},
	}

	for _, tt := range tests {
		t.Run(tt.rule+" "+tt.src, func(t *testing.T) {
			got, err := Match(tt.rule, tt.src)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Match(%q, %q) = %d, want %d", tt.rule, tt.src, got, tt.want)
			}
		})
	}
}

func TestMatchUnknownRule(t *testing.T) {
	if _, err := Match("nope", "a"); !errors.Is(err, peg.ErrUnknownRule) {
		t.Errorf("Match() error = %v, want ErrUnknownRule", err)
	}
}

func TestTokens(t *testing.T) {
	sources := []string{
		`a { content: "abc }`,
		"a { background: url(foo }",
		"/* never closed",
		"@media screen { 12px 50% 3em }",
		`'single' "double" #hash ~= |= <!-- -->`,
	}
	for _, src := range sources {
		if !peg.NewParser(Tokens, src).Parse() {
			t.Errorf("Tokens rejected %q", src)
		}
	}
}

func TestGrammarLeftRecursionFree(t *testing.T) {
	for _, r := range Grammar.Rules() {
		if r.LeftRecursive() {
			t.Errorf("rule %s is left-recursive", r.Name)
		}
	}
}

func TestRootRendered(t *testing.T) {
	want := `- stylesheet - !.`
	if got := Grammar.Start().Rendered; got != want {
		t.Errorf("root = %q, want %q", got, want)
	}
	if Grammar.Start().Name != "root" || Tokens.Start().Name != "tokens" {
		t.Errorf("start rules = %s, %s", Grammar.Start().Name, Tokens.Start().Name)
	}
}
