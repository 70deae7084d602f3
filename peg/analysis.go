package peg

// nullable computes, for every rule, whether it can succeed without
// consuming input. Iterates to a fixed point.
func (g *Grammar) nullable() []bool {
	out := make([]bool, len(g.rules))
	for changed := true; changed; {
		changed = false
		for _, r := range g.rules {
			if !out[r.id] && g.exprNullable(r.Expr, out) {
				out[r.id] = true
				changed = true
			}
		}
	}
	return out
}

func (g *Grammar) exprNullable(e Expr, rules []bool) bool {
	switch e := e.(type) {
	case *Literal:
		return e.Text == ""
	case *CharClass:
		return e.Min == 0
	case *AnyChar, *CaseLetter:
		return false
	case *CaseKeyword:
		return e.Word == ""
	case *EndOfInput, *Option, *Negation:
		return true
	case *Reference:
		return rules[g.index[e.Name]]
	case Sequence:
		for _, item := range e {
			if !g.exprNullable(item, rules) {
				return false
			}
		}
		return true
	case Alternative:
		for _, alt := range e {
			if g.exprNullable(alt, rules) {
				return true
			}
		}
		return false
	case *Repetition:
		return e.Min == 0 || g.exprNullable(e.Body, rules)
	}
	return false
}

// leftCalls appends the ids of rules e may apply at its own start
// position, before consuming any input.
func (g *Grammar) leftCalls(e Expr, nullable []bool, out []int) []int {
	switch e := e.(type) {
	case *Reference:
		return append(out, g.index[e.Name])
	case Sequence:
		for _, item := range e {
			out = g.leftCalls(item, nullable, out)
			if !g.exprNullable(item, nullable) {
				break
			}
		}
	case Alternative:
		for _, alt := range e {
			out = g.leftCalls(alt, nullable, out)
		}
	case *Repetition:
		out = g.leftCalls(e.Body, nullable, out)
	case *Option:
		out = g.leftCalls(e.Body, nullable, out)
	case *Negation:
		out = g.leftCalls(e.Body, nullable, out)
	}
	return out
}

// components returns the strongly connected components of the subgraph
// induced by nodes (Tarjan).
func components(nodes []int, edges [][]int) [][]int {
	in := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		in[n] = true
	}
	index := make(map[int]int, len(nodes))
	low := make(map[int]int, len(nodes))
	onStack := make(map[int]bool, len(nodes))
	var stack []int
	var out [][]int
	next := 0

	var visit func(v int)
	visit = func(v int) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range edges[v] {
			if !in[w] {
				continue
			}
			if _, seen := index[w]; !seen {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			out = append(out, comp)
		}
	}
	for _, n := range nodes {
		if _, seen := index[n]; !seen {
			visit(n)
		}
	}
	return out
}

func cyclic(comp []int, edges [][]int) bool {
	if len(comp) > 1 {
		return true
	}
	for _, w := range edges[comp[0]] {
		if w == comp[0] {
			return true
		}
	}
	return false
}

// chooseLeaders picks rules of a cyclic component so that every cycle
// passes through at least one of them: take the earliest-defined rule,
// drop it, and repeat on whatever cycles remain.
func chooseLeaders(comp []int, edges [][]int) []int {
	leader := comp[0]
	for _, id := range comp[1:] {
		if id < leader {
			leader = id
		}
	}
	leaders := []int{leader}
	var rest []int
	for _, id := range comp {
		if id != leader {
			rest = append(rest, id)
		}
	}
	for _, sub := range components(rest, edges) {
		if cyclic(sub, edges) {
			leaders = append(leaders, chooseLeaders(sub, edges)...)
		}
	}
	return leaders
}
