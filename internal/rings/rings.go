// Package rings decomposes the graph into strongly connected components
// and reports circular-flow patterns: enumerated elementary cycles for
// small components, a single complex-network summary for large ones.
package rings

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/rawblock/forensics-engine/internal/graph"
	"github.com/rawblock/forensics-engine/pkg/models"
)

const (
	enumerationSizeCap  = 100
	minCycleLen         = 3
	maxCycleLen         = 8
	complexNetworkTopN  = 10
	simpleRingDelta     = 50
	complexNetworkScore = 100
	riskScoreCap        = 100
)

// Detect runs the SCC decomposition and bounded cycle enumeration, mutating
// every implicated account's score, flags, type and ring membership as a
// side effect, and returns the ring records themselves.
func Detect(b *graph.Built) []models.Ring {
	comps := nontrivialComponents(b)

	var found []models.Ring
	counter := 0
	for _, ids := range comps {
		if len(ids) > enumerationSizeCap {
			counter++
			ring := buildComplexNetwork(b.Domain, ids, counter)
			applyComplexNetworkUpdates(b.Domain, ids, ring.ID)
			found = append(found, ring)
			continue
		}
		for _, cyc := range enumerateCycles(b.Domain, ids) {
			counter++
			ring := buildSimpleRing(b.Domain, cyc, counter)
			applySimpleRingUpdates(b.Domain, cyc, ring.ID)
			found = append(found, ring)
		}
	}
	return found
}

// nontrivialComponents returns every SCC of size > 1, each as a
// lexicographically sorted id slice, with the component list itself
// ordered by minimum member id — a canonicalization that keeps ring
// numbering independent of input row order.
func nontrivialComponents(b *graph.Built) [][]string {
	sccs := topo.TarjanSCC(b.Weighted)

	var comps [][]string
	for _, scc := range sccs {
		if len(scc) <= 1 {
			continue
		}
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			if id, ok := b.AccountID(n.ID()); ok {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		comps = append(comps, ids)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// adjacency is the induced-subgraph out-neighbor list for one component,
// target lists sorted for deterministic traversal.
func adjacency(g *models.Graph, ids []string) map[string][]string {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	adj := make(map[string][]string, len(ids))
	for _, e := range g.EdgeList() {
		if !set[e.Source] || !set[e.Target] {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	for k := range adj {
		sort.Strings(adj[k])
	}
	return adj
}

// enumerateCycles finds every elementary cycle of length 3..8 in the
// subgraph induced by ids. Each vertex only starts a search over the
// subgraph restricted to vertices at or after its own position in the
// canonical (sorted) order, which both bounds the search and guarantees
// each cycle is reported exactly once, rooted at its lexicographically
// smallest member.
func enumerateCycles(g *models.Graph, ids []string) [][]string {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	adj := adjacency(g, ids)

	var results [][]string
	for i, start := range ids {
		path := []string{start}
		visited := map[string]bool{start: true}

		var dfs func(current string)
		dfs = func(current string) {
			for _, next := range adj[current] {
				if index[next] < i {
					continue
				}
				if next == start {
					if len(path) >= minCycleLen {
						cyc := make([]string, len(path))
						copy(cyc, path)
						results = append(results, cyc)
					}
					continue
				}
				if visited[next] || len(path) >= maxCycleLen {
					continue
				}
				visited[next] = true
				path = append(path, next)
				dfs(next)
				path = path[:len(path)-1]
				visited[next] = false
			}
		}
		dfs(start)
	}
	return results
}

func edgeAmount(g *models.Graph, source, target string) float64 {
	if e, ok := g.Edges[models.EdgeKey{Source: source, Target: target}]; ok {
		return e.Amount
	}
	return 0
}

func buildSimpleRing(g *models.Graph, cyc []string, counter int) models.Ring {
	volume := 0.0
	for i := range cyc {
		next := cyc[(i+1)%len(cyc)]
		volume += edgeAmount(g, cyc[i], next)
	}
	return models.Ring{
		ID:     fmt.Sprintf("RING_%03d", counter),
		Nodes:  append([]string(nil), cyc...),
		Volume: volume,
	}
}

func applySimpleRingUpdates(g *models.Graph, cyc []string, ringID string) {
	// Ring membership overrides whatever type the heuristic scorer assigned
	// earlier: a node on a circular flow has equal in/out volume by
	// construction, so it routinely also matches the pass-through-mule
	// pattern, and ring membership is the more specific, more severe
	// classification of the two.
	flag := "in " + ringID
	for _, id := range cyc {
		a := g.Account(id)
		a.RiskScore += simpleRingDelta
		if a.RiskScore > riskScoreCap {
			a.RiskScore = riskScoreCap
		}
		a.Suspicious = true
		a.Type = models.TypeRingMember
		a.AddRing(ringID)
		a.AddFlag(flag)
	}
}

func buildComplexNetwork(g *models.Graph, ids []string, counter int) models.Ring {
	members := topByDegree(g, ids, complexNetworkTopN)

	volume := 0.0
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for _, e := range g.EdgeList() {
		if set[e.Source] && set[e.Target] {
			volume += e.Amount
		}
	}

	return models.Ring{
		ID:     fmt.Sprintf("COMPLEX_NET_%03d", counter),
		Nodes:  members,
		Volume: volume,
		Note:   "Complex Network",
	}
}

func applyComplexNetworkUpdates(g *models.Graph, ids []string, ringID string) {
	flag := "in massive money mule network"
	for _, id := range ids {
		a := g.Account(id)
		a.RiskScore = complexNetworkScore
		a.Suspicious = true
		a.Type = models.TypeRingMember
		a.AddRing(ringID)
		a.AddFlag(flag)
	}
}

func topByDegree(g *models.Graph, ids []string, n int) []string {
	sorted := append([]string(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := g.Account(sorted[i]), g.Account(sorted[j])
		di := ai.InDegree + ai.OutDegree
		dj := aj.InDegree + aj.OutDegree
		if di != dj {
			return di > dj
		}
		return sorted[i] < sorted[j]
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
