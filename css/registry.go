package css

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/dhamidi/pegcss/peg"
)

// Entry is a registered grammar.
type Entry struct {
	Name        string
	Version     *semver.Version
	Description string
	Grammar     *peg.Grammar
}

// Ref returns the entry as "name@version".
func (e Entry) Ref() string {
	return e.Name + "@" + e.Version.String()
}

var registry = []Entry{
	{
		Name:        "css",
		Version:     semver.MustParse("2.1.0"),
		Description: "CSS2.1 style sheet",
		Grammar:     Grammar,
	},
	{
		Name:        "css-tokens",
		Version:     semver.MustParse("2.1.0"),
		Description: "CSS2.1 core tokenization, including recovery tokens",
		Grammar:     Tokens,
	},
}

// Registered returns every registered grammar sorted by name, newest
// version first.
func Registered() []Entry {
	out := append([]Entry(nil), registry...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version.GreaterThan(out[j].Version)
	})
	return out
}

// Lookup resolves a reference of the form "name" or "name@constraint",
// e.g. "css@^2.1", to the newest registered grammar that satisfies it.
func Lookup(ref string) (*peg.Grammar, error) {
	e, err := LookupEntry(ref)
	if err != nil {
		return nil, err
	}
	return e.Grammar, nil
}

func LookupEntry(ref string) (Entry, error) {
	name, rng, versioned := strings.Cut(strings.TrimSpace(ref), "@")
	var constraint *semver.Constraints
	if versioned {
		c, err := semver.NewConstraint(rng)
		if err != nil {
			return Entry{}, fmt.Errorf("grammar %q: %w", ref, err)
		}
		constraint = c
	}

	found := false
	for _, e := range Registered() {
		if e.Name != name {
			continue
		}
		found = true
		if constraint == nil || constraint.Check(e.Version) {
			return e, nil
		}
	}
	if !found {
		return Entry{}, fmt.Errorf("grammar %q: no grammar named %q", ref, name)
	}
	return Entry{}, fmt.Errorf("grammar %q: no version of %q satisfies %q", ref, name, rng)
}
