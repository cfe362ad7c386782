package features

import (
	"testing"

	"github.com/rawblock/forensics-engine/internal/graph"
	"github.com/rawblock/forensics-engine/pkg/models"
)

func TestAggregateVolumeAndDegree(t *testing.T) {
	txs := []models.Transaction{
		{Source: "A", Target: "M", Amount: 100},
		{Source: "B", Target: "M", Amount: 200},
		{Source: "M", Target: "C", Amount: 250},
	}
	b := graph.Build(txs)
	Aggregate(b, txs)

	m := b.Domain.Account("M")
	if m.InVolume != 300 {
		t.Fatalf("expected in_volume 300, got %v", m.InVolume)
	}
	if m.OutVolume != 250 {
		t.Fatalf("expected out_volume 250, got %v", m.OutVolume)
	}
	if m.InDegree != 2 {
		t.Fatalf("expected in_degree 2, got %d", m.InDegree)
	}
	if m.OutDegree != 1 {
		t.Fatalf("expected out_degree 1, got %d", m.OutDegree)
	}
	if len(m.InAmounts) != 2 {
		t.Fatalf("expected 2 in-amounts, got %d", len(m.InAmounts))
	}
}

func TestAggregatePerTransactionNotPerEdge(t *testing.T) {
	// Two separate transactions on the same (source,target) pair fold into
	// one edge, but the per-account in-amounts list must still carry both
	// original entries, not one replicated entry.
	txs := []models.Transaction{
		{Source: "A", Target: "R", Amount: 9500},
		{Source: "A", Target: "R", Amount: 9500},
	}
	b := graph.Build(txs)
	Aggregate(b, txs)

	r := b.Domain.Account("R")
	if len(r.InAmounts) != 2 {
		t.Fatalf("expected 2 per-transaction in-amounts despite folded edge, got %d", len(r.InAmounts))
	}
}
