package terck

import "github.com/funvibe/tyck/internal/core"

// CallGraph keeps, for every pair of functions, an antichain of the weakest
// call matrices known between them.
type CallGraph struct {
	nodes []*core.DefVar
	seen  map[*core.DefVar]bool
	edges map[*core.DefVar]map[*core.DefVar][]*CallMatrix
}

func NewCallGraph() *CallGraph {
	return &CallGraph{
		seen:  make(map[*core.DefVar]bool),
		edges: make(map[*core.DefVar]map[*core.DefVar][]*CallMatrix),
	}
}

func (g *CallGraph) node(v *core.DefVar) {
	if !g.seen[v] {
		g.seen[v] = true
		g.nodes = append(g.nodes, v)
		g.edges[v] = make(map[*core.DefVar][]*CallMatrix)
	}
}

// Put adds m unless a matrix on its edge already promises no more. It reports
// whether the graph changed.
func (g *CallGraph) Put(m *CallMatrix) bool {
	g.node(m.Caller)
	g.node(m.Callee)
	winners, survivors := SelectAll([]*CallMatrix{m}, g.edges[m.Caller][m.Callee])
	if len(winners) == 0 {
		return false
	}
	g.edges[m.Caller][m.Callee] = survivors
	return true
}

// Edge returns the matrices from caller to callee.
func (g *CallGraph) Edge(caller, callee *core.DefVar) []*CallMatrix {
	return g.edges[caller][callee]
}

// Closure adds every composition of calls until nothing changes. Each change
// replaces a matrix by a strictly weaker one, so the loop ends.
func (g *CallGraph) Closure() {
	for changed := true; changed; {
		changed = false
		for _, f := range g.nodes {
			for _, mid := range g.nodes {
				for _, first := range g.edges[f][mid] {
					for _, h := range g.nodes {
						for _, next := range g.edges[mid][h] {
							if g.Put(Compose(first, next)) {
								changed = true
							}
						}
					}
				}
			}
		}
	}
}

// BadRecursion returns, per function of a closed graph, the first idempotent
// self call that decreases nothing.
func (g *CallGraph) BadRecursion() map[*core.DefVar]*CallMatrix {
	bad := make(map[*core.DefVar]*CallMatrix)
	for _, f := range g.nodes {
		for _, m := range g.edges[f][f] {
			if m.Idempotent() && !m.Decreases() {
				bad[f] = m
				break
			}
		}
	}
	return bad
}
