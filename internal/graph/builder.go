// Package graph folds a cleaned transaction stream into the account graph
// the rest of the pipeline operates on, maintaining a parallel gonum
// weighted directed graph for the algorithms in internal/centrality and
// internal/rings.
package graph

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/rawblock/forensics-engine/pkg/models"
)

// Built is the graph builder's output: the domain graph plus the gonum
// graph and the id<->string interning tables the centrality and ring
// stages need to move between the two representations.
type Built struct {
	Domain   *models.Graph
	Weighted *simple.WeightedDirectedGraph

	idToNode map[string]int64
	nodeToID map[int64]string
}

// NodeID returns the gonum node id interned for account id, and whether it
// was found.
func (b *Built) NodeID(id string) (int64, bool) {
	n, ok := b.idToNode[id]
	return n, ok
}

// AccountID returns the account id interned for a gonum node id, and
// whether it was found.
func (b *Built) AccountID(nodeID int64) (string, bool) {
	id, ok := b.nodeToID[nodeID]
	return id, ok
}

// Build folds txs into both graph representations.
func Build(txs []models.Transaction) *Built {
	b := &Built{
		Domain:   models.NewGraph(),
		Weighted: simple.NewWeightedDirectedGraph(0, 0),
		idToNode: make(map[string]int64),
		nodeToID: make(map[int64]string),
	}
	for _, tx := range txs {
		b.Domain.Fold(tx)
		b.internAccount(tx.Source)
		b.internAccount(tx.Target)
	}
	for _, e := range b.Domain.EdgeList() {
		u := b.idToNode[e.Source]
		v := b.idToNode[e.Target]
		b.Weighted.SetWeightedEdge(b.Weighted.NewWeightedEdge(
			b.Weighted.Node(u), b.Weighted.Node(v), e.Amount,
		))
	}
	return b
}

func (b *Built) internAccount(id string) int64 {
	if nodeID, ok := b.idToNode[id]; ok {
		return nodeID
	}
	n := b.Weighted.NewNode()
	b.Weighted.AddNode(n)
	b.idToNode[id] = n.ID()
	b.nodeToID[n.ID()] = id
	return n.ID()
}
