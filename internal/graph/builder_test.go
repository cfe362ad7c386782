package graph

import (
	"testing"

	"github.com/rawblock/forensics-engine/pkg/models"
)

func TestBuildFoldsRepeatedEdges(t *testing.T) {
	txs := []models.Transaction{
		{Source: "A", Target: "B", Amount: 100},
		{Source: "A", Target: "B", Amount: 50},
		{Source: "B", Target: "C", Amount: 10},
	}
	b := Build(txs)

	if len(b.Domain.Accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(b.Domain.Accounts))
	}
	key := models.EdgeKey{Source: "A", Target: "B"}
	edge := b.Domain.Edges[key]
	if edge == nil {
		t.Fatal("expected A->B edge")
	}
	if edge.Amount != 150 || edge.Count != 2 {
		t.Fatalf("expected folded amount 150 count 2, got %v/%d", edge.Amount, edge.Count)
	}
}

func TestBuildWeightedGraphMatchesDomain(t *testing.T) {
	txs := []models.Transaction{
		{Source: "A", Target: "B", Amount: 100},
	}
	b := Build(txs)

	u, ok := b.NodeID("A")
	if !ok {
		t.Fatal("expected A interned")
	}
	v, ok := b.NodeID("B")
	if !ok {
		t.Fatal("expected B interned")
	}
	we := b.Weighted.WeightedEdge(u, v)
	if we == nil {
		t.Fatal("expected weighted edge A->B")
	}
	if we.Weight() != 100 {
		t.Fatalf("expected weight 100, got %v", we.Weight())
	}

	id, ok := b.AccountID(u)
	if !ok || id != "A" {
		t.Fatalf("expected reverse lookup to A, got %q ok=%v", id, ok)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	b := Build(nil)
	if len(b.Domain.Accounts) != 0 {
		t.Fatalf("expected empty graph, got %d accounts", len(b.Domain.Accounts))
	}
}
