package centrality

import (
	"testing"

	"github.com/rawblock/forensics-engine/pkg/models"

	"github.com/rawblock/forensics-engine/internal/graph"
)

func TestPageRankEmptyGraph(t *testing.T) {
	built := graph.Build(nil)
	scores := PageRank(built.Weighted)
	if len(scores) != 0 {
		t.Fatalf("expected no scores, got %d", len(scores))
	}
}

func TestPageRankSumsToOne(t *testing.T) {
	txs := []models.Transaction{
		{Source: "A", Target: "B", Amount: 100},
		{Source: "B", Target: "C", Amount: 100},
		{Source: "C", Target: "A", Amount: 100},
	}
	built := graph.Build(txs)
	scores := PageRank(built.Weighted)
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	total := 0.0
	for _, v := range scores {
		total += v
	}
	if total < 0.99 || total > 1.01 {
		t.Fatalf("expected scores to sum near 1, got %v", total)
	}
}

func TestPageRankSymmetricCycleIsUniform(t *testing.T) {
	txs := []models.Transaction{
		{Source: "A", Target: "B", Amount: 100},
		{Source: "B", Target: "C", Amount: 100},
		{Source: "C", Target: "A", Amount: 100},
	}
	built := graph.Build(txs)
	scores := PageRank(built.Weighted)
	a, _ := built.NodeID("A")
	b, _ := built.NodeID("B")
	if diff := scores[a] - scores[b]; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("expected symmetric cycle to have near-equal scores, got %v vs %v", scores[a], scores[b])
	}
}

func TestCommunitiesEmptyGraph(t *testing.T) {
	built := graph.Build(nil)
	labels := Communities(built.Weighted)
	if len(labels) != 0 {
		t.Fatalf("expected no labels, got %d", len(labels))
	}
}

func TestCommunitiesDisjointComponentsSeparateLabels(t *testing.T) {
	txs := []models.Transaction{
		{Source: "A", Target: "B", Amount: 100},
		{Source: "X", Target: "Y", Amount: 100},
	}
	built := graph.Build(txs)
	labels := Communities(built.Weighted)
	a, _ := built.NodeID("A")
	x, _ := built.NodeID("X")
	if labels[a] == labels[x] {
		t.Fatalf("expected disjoint components to land in different communities, both got %d", labels[a])
	}
}
