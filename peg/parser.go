package peg

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
)

// ErrUnknownRule is returned when parsing from a rule the grammar does
// not define.
var ErrUnknownRule = errors.New("unknown rule")

type ParserOption func(*Parser)

// WithoutMemo discards every memo entry as soon as its rule returns.
// Entries still guard against re-entry while a rule is being evaluated,
// so left recursion keeps working; only reuse across calls is lost.
func WithoutMemo() ParserOption {
	return func(p *Parser) {
		p.noMemo = true
	}
}

func WithLogger(l commonlog.Logger) ParserOption {
	return func(p *Parser) {
		p.log = l
	}
}

// WithTrace logs every rule application at debug level.
func WithTrace() ParserOption {
	return func(p *Parser) {
		p.trace = true
	}
}

// memoKey identifies one application of a rule at a position.
type memoKey struct {
	rule int
	pos  int
}

// leftRecursion marks a pending memo entry; detected is set when the
// rule re-enters itself at the same position.
type leftRecursion struct {
	detected bool
}

type memoEntry struct {
	lr      *leftRecursion
	ok      bool
	end     int
	uses    int
	growing bool
}

// Stats describes the work done by the last parse.
type Stats struct {
	Entries     int
	Hits        int
	Evaluations int
	Growths     int
}

// Parser holds the state of one parse: the input buffer, the cursor,
// the memo table and the failure record. A Parser must not be shared
// between goroutines; use one per parse or call Reset between parses.
type Parser struct {
	grammar *Grammar
	input   string
	pos     int

	memo    map[memoKey]*memoEntry
	failure Failure
	stats   Stats
	parsed  bool
	ok      bool

	noMemo bool
	trace  bool
	depth  int
	log    commonlog.Logger
}

func NewParser(g *Grammar, input string, opts ...ParserOption) *Parser {
	p := &Parser{
		grammar: g,
		input:   input,
		log:     log,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

// Reset discards the memo table, cursor and failure record.
func (p *Parser) Reset() {
	p.pos = 0
	p.memo = make(map[memoKey]*memoEntry)
	p.failure = Failure{Offset: -1}
	p.stats = Stats{}
	p.parsed = false
	p.ok = false
	p.depth = 0
}

func (p *Parser) Grammar() *Grammar { return p.grammar }

func (p *Parser) Input() string { return p.input }

// Pos returns the cursor: the end of the last successful match, or 0.
func (p *Parser) Pos() int { return p.pos }

// Text returns the input consumed by the last successful match.
func (p *Parser) Text() string { return p.input[:p.pos] }

func (p *Parser) Stats() Stats { return p.stats }

// Parse matches the grammar's start rule against the whole input.
func (p *Parser) Parse() bool {
	return p.parseWhole(p.grammar.start)
}

// ParseFrom matches the named rule against the whole input.
func (p *Parser) ParseFrom(name string) (bool, error) {
	r := p.grammar.Rule(name)
	if r == nil {
		return false, fmt.Errorf("grammar %s: %w %q", p.grammar.name, ErrUnknownRule, name)
	}
	return p.parseWhole(r), nil
}

// ParseRule matches the named rule at the start of the input. It
// succeeds if the rule matches a prefix; Pos reports how much was
// consumed.
func (p *Parser) ParseRule(name string) (bool, error) {
	r := p.grammar.Rule(name)
	if r == nil {
		return false, fmt.Errorf("grammar %s: %w %q", p.grammar.name, ErrUnknownRule, name)
	}
	p.ok = p.run(r)
	return p.ok, nil
}

// parseWhole runs r from offset 0. A match that stops short of the end
// of the input fails, with r recorded as failing where it stopped.
func (p *Parser) parseWhole(r *Rule) bool {
	ok := p.run(r)
	if ok && p.pos != len(p.input) {
		p.offer(r, p.pos)
		p.pos = 0
		ok = false
	}
	p.ok = ok
	return ok
}

func (p *Parser) run(r *Rule) bool {
	if p.parsed {
		p.Reset()
	}
	p.parsed = true
	end, ok := p.apply(r, 0)
	if ok {
		p.pos = end
	} else {
		p.pos = 0
	}
	p.stats.Entries = len(p.memo)
	p.log.Debugf("%s: rule %q over %d bytes: ok=%t end=%d entries=%d hits=%d evaluations=%d growths=%d",
		p.grammar.name, r.Name, len(p.input), ok, p.pos,
		p.stats.Entries, p.stats.Hits, p.stats.Evaluations, p.stats.Growths)
	return ok
}

// apply evaluates rule r at pos through the memo table.
func (p *Parser) apply(r *Rule, pos int) (int, bool) {
	if r.passthrough {
		return p.invoke(r, pos)
	}

	key := memoKey{rule: r.id, pos: pos}
	if m, ok := p.memo[key]; ok {
		m.uses++
		if m.lr != nil {
			m.lr.detected = true
			return pos, false
		}
		p.stats.Hits++
		return m.end, m.ok
	}

	lr := &leftRecursion{}
	m := &memoEntry{lr: lr, end: pos, uses: 1}
	p.memo[key] = m

	end, ok := p.invoke(r, pos)
	m.lr = nil
	m.end, m.ok = end, ok

	if lr.detected {
		if ok {
			end, ok = p.grow(r, pos, m)
		}
		p.forget(r, pos)
	}
	if p.noMemo {
		delete(p.memo, key)
	}
	return end, ok
}

// grow re-evaluates a left-recursive rule from start with its last
// result memoized as the seed, until an evaluation fails or stops
// advancing. The furthest result is kept.
func (p *Parser) grow(r *Rule, start int, m *memoEntry) (int, bool) {
	m.growing = true
	defer func() { m.growing = false }()
	for {
		p.stats.Growths++
		p.forget(r, start)
		end, ok := p.invoke(r, start)
		if !ok || end <= m.end {
			break
		}
		m.end = end
	}
	return m.end, m.ok
}

// forget drops the settled results of the other leaders of r's cycle at
// pos. They were computed against an earlier seed of r. Pending and
// growing entries are still in use further up the stack and stay.
func (p *Parser) forget(r *Rule, pos int) {
	for _, id := range r.involved {
		key := memoKey{rule: id, pos: pos}
		if m, ok := p.memo[key]; ok && m.lr == nil && !m.growing {
			delete(p.memo, key)
		}
	}
}

// invoke runs the rule body and records a failure candidate.
func (p *Parser) invoke(r *Rule, pos int) (int, bool) {
	p.stats.Evaluations++
	if p.trace {
		p.log.Debugf("%*s> %s @%d", p.depth*2, "", r.Name, pos)
		p.depth++
	}
	end, ok := r.match(p, pos)
	if !ok {
		p.offer(r, pos)
	}
	if p.trace {
		p.depth--
		p.log.Debugf("%*s< %s @%d ok=%t end=%d", p.depth*2, "", r.Name, pos, ok, end)
	}
	return end, ok
}
