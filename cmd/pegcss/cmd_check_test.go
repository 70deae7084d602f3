package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/pegcss/css"
)

func TestCheckArgs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sheets")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(dir, "one.css"):   "a { b: c }",
		filepath.Join(sub, "two.css"):   "a { b }",
		filepath.Join(sub, "three.css"): "",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	flags := grammarFlags{grammar: "css", jobs: 2}
	stdin := strings.NewReader("{")
	results, err := checkArgs(context.Background(), css.Grammar, []string{filepath.Join(dir, "one.css"), "-", sub}, stdin, flags.options())
	if err != nil {
		t.Fatalf("checkArgs() error = %v", err)
	}

	var got []string
	for _, f := range results {
		name := "-"
		if f.Path != "" {
			name = filepath.Base(f.Path)
		}
		if f.OK {
			got = append(got, name+":ok")
		} else {
			got = append(got, name+":fail")
		}
	}
	if strings.Join(got, " ") != "one.css:ok -:fail three.css:ok two.css:fail" {
		t.Errorf("checkArgs() = %v", got)
	}

	if _, err := checkArgs(context.Background(), css.Grammar, []string{filepath.Join(dir, "missing")}, stdin, nil); !os.IsNotExist(err) {
		t.Errorf("checkArgs(missing) error = %v", err)
	}
}

func TestGrammarFlagsLoad(t *testing.T) {
	g, err := (&grammarFlags{grammar: "css@^2"}).load()
	if err != nil || g != css.Grammar {
		t.Errorf("load(css@^2) = %v, %v", g, err)
	}

	if _, err := (&grammarFlags{grammar: "list.ebnf"}).load(); err == nil || !strings.Contains(err.Error(), "--rule") {
		t.Errorf("load(list.ebnf) without rule error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "list.ebnf")
	if err := os.WriteFile(path, []byte(`list = "a" { "," "a" } .`), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err = (&grammarFlags{grammar: path, rule: "list"}).load()
	if err != nil {
		t.Fatalf("load(%s) error = %v", path, err)
	}
	if g.Start().Name != "list" {
		t.Errorf("Start() = %s", g.Start().Name)
	}
}

func TestCheckCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.css")
	if err := os.WriteFile(path, []byte("a { color }"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newCheckCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "line", path})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "1 of 1") {
		t.Errorf("Execute() error = %v, want 1 of 1 failed", err)
	}
	if !strings.HasPrefix(out.String(), path+"\tfail\t1:11\t") {
		t.Errorf("output = %q", out.String())
	}
}
