package models

import "time"

// EdgeKey identifies one ordered pair of accounts.
type EdgeKey struct {
	Source string
	Target string
}

// Edge is the folded, weighted representation of every transaction between
// one ordered pair of accounts.
type Edge struct {
	Source     string
	Target     string
	Amount     float64
	Count      int
	Timestamps []time.Time
}

// Graph is the directed multigraph folded from one batch, collapsed to at
// most one weighted Edge per ordered pair, plus the bookkeeping later
// stages need: first-appearance node order, for deterministic iteration
// independent of Go's randomized map order.
type Graph struct {
	Accounts map[string]*Account
	Edges    map[EdgeKey]*Edge
	Order    []string
	// edgeOrder preserves first-appearance order of edges, independent of
	// map iteration order.
	edgeOrder []EdgeKey
}

// NewGraph returns an empty graph ready for folding.
func NewGraph() *Graph {
	return &Graph{
		Accounts: make(map[string]*Account),
		Edges:    make(map[EdgeKey]*Edge),
	}
}

// Account returns the node for id, creating and registering a defaulted one
// on first reference. This is the only way new nodes enter the graph —
// there is no notion of an isolated account: every node that exists
// has in_degree + out_degree >= 1.
func (g *Graph) Account(id string) *Account {
	if a, ok := g.Accounts[id]; ok {
		return a
	}
	a := &Account{
		ID:    id,
		Type:  TypeStandard,
		Flags: []string{},
		Rings: []string{},
	}
	g.Accounts[id] = a
	g.Order = append(g.Order, id)
	return a
}

// Fold applies one cleaned transaction to the graph: updates or creates the
// (source, target) edge, and registers both endpoint accounts.
func (g *Graph) Fold(tx Transaction) {
	g.Account(tx.Source)
	g.Account(tx.Target)

	key := EdgeKey{Source: tx.Source, Target: tx.Target}
	e, ok := g.Edges[key]
	if !ok {
		e = &Edge{Source: tx.Source, Target: tx.Target}
		g.Edges[key] = e
		g.edgeOrder = append(g.edgeOrder, key)
	}
	e.Amount += tx.Amount
	e.Count++
	if tx.Timestamp != nil {
		e.Timestamps = append(e.Timestamps, *tx.Timestamp)
	}
}

// EdgeList returns every edge in first-appearance order, which the Result
// Assembler and tests rely on for stable, input-order-derived output.
func (g *Graph) EdgeList() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		out = append(out, g.Edges[key])
	}
	return out
}
