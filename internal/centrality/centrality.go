// Package centrality computes per-node PageRank and community labels over
// the graph built by internal/graph.
package centrality

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	xrand "golang.org/x/exp/rand"
)

const (
	damping          = 0.85
	maxIterations    = 200
	convergenceDelta = 1e-8
	louvainSeed      = 42
	louvainNodeCap   = 50000
)

// PageRank computes weighted PageRank over g by damped power iteration,
// keyed by gonum node id. An empty graph, or one that fails to converge
// within maxIterations, falls back to the uniform distribution rather
// than propagating a convergence error.
func PageRank(g *simple.WeightedDirectedGraph) map[int64]float64 {
	nodes := graph.NodesOf(g.Nodes())
	n := len(nodes)
	scores := make(map[int64]float64, n)
	if n == 0 {
		return scores
	}

	uniform := 1.0 / float64(n)
	for _, node := range nodes {
		scores[node.ID()] = uniform
	}

	// out-weight total per node, needed to distribute rank proportionally
	// to edge amount rather than uniformly across out-edges.
	outWeight := make(map[int64]float64, n)
	for _, node := range nodes {
		to := g.From(node.ID())
		for to.Next() {
			w, _ := g.Weight(node.ID(), to.Node().ID())
			outWeight[node.ID()] += w
		}
	}

	converged := false
	next := make(map[int64]float64, n)
	for iter := 0; iter < maxIterations; iter++ {
		for _, node := range nodes {
			next[node.ID()] = (1 - damping) / float64(n)
		}
		for _, node := range nodes {
			id := node.ID()
			total := outWeight[id]
			if total <= 0 {
				// dangling node: distribute its rank uniformly, the
				// standard PageRank treatment of sinks.
				share := damping * scores[id] / float64(n)
				for _, other := range nodes {
					next[other.ID()] += share
				}
				continue
			}
			to := g.From(id)
			for to.Next() {
				tid := to.Node().ID()
				w, _ := g.Weight(id, tid)
				next[tid] += damping * scores[id] * (w / total)
			}
		}

		delta := 0.0
		for id, v := range next {
			delta += absf(v - scores[id])
			scores[id] = v
		}
		if delta < convergenceDelta {
			converged = true
			break
		}
	}

	if !converged {
		for _, node := range nodes {
			scores[node.ID()] = uniform
		}
	}
	return scores
}

// Communities assigns an integer community label per node. Above
// louvainNodeCap, or if the Louvain optimizer fails to produce a reduced
// graph, it falls back to labeling by weakly-connected component.
func Communities(g *simple.WeightedDirectedGraph) map[int64]int {
	nodes := graph.NodesOf(g.Nodes())
	labels := make(map[int64]int, len(nodes))
	if len(nodes) == 0 {
		return labels
	}

	if len(nodes) >= louvainNodeCap {
		return weaklyConnectedLabels(g)
	}

	undirected := simple.NewWeightedUndirectedGraph(0, 0)
	for _, n := range nodes {
		undirected.AddNode(simple.Node(n.ID()))
	}
	edges := graph.WeightedEdgesOf(g.WeightedEdges())
	for _, we := range edges {
		u, v := we.From().ID(), we.To().ID()
		existing := undirected.WeightedEdgeBetween(u, v)
		w := we.Weight()
		if existing != nil {
			w += existing.Weight()
		}
		undirected.SetWeightedEdge(undirected.NewWeightedEdge(
			simple.Node(u), simple.Node(v), w,
		))
	}

	src := xrand.NewSource(louvainSeed)
	reduced := func() (r *community.ReducedGraph) {
		defer func() {
			if recover() != nil {
				r = nil
			}
		}()
		return community.Modularize(undirected, 1.0, src)
	}()

	if reduced == nil {
		return weaklyConnectedLabels(g)
	}

	for i, group := range reduced.Structure() {
		for _, n := range group {
			labels[n.ID()] = i
		}
	}
	return labels
}

func weaklyConnectedLabels(g *simple.WeightedDirectedGraph) map[int64]int {
	labels := make(map[int64]int)
	for i, comp := range topo.ConnectedComponents(undirectedView(g)) {
		for _, n := range comp {
			labels[n.ID()] = i
		}
	}
	return labels
}

// undirectedView builds a plain undirected graph mirroring g's edges, for
// component labeling; topo.ConnectedComponents requires graph.Undirected.
func undirectedView(g *simple.WeightedDirectedGraph) *simple.UndirectedGraph {
	u := simple.NewUndirectedGraph()
	nodes := graph.NodesOf(g.Nodes())
	for _, n := range nodes {
		u.AddNode(simple.Node(n.ID()))
	}
	edges := graph.WeightedEdgesOf(g.WeightedEdges())
	for _, we := range edges {
		if u.HasEdgeBetween(we.From().ID(), we.To().ID()) {
			continue
		}
		u.SetEdge(u.NewEdge(u.Node(we.From().ID()), u.Node(we.To().ID())))
	}
	return u
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
