package assemble

import (
	"encoding/json"
	"testing"

	"github.com/rawblock/forensics-engine/internal/stats"
	"github.com/rawblock/forensics-engine/pkg/models"
)

func TestAssembleEmptyInput(t *testing.T) {
	doc := Assemble(models.NewGraph(), nil, nil, stats.Dataset{})
	if len(doc.Elements) != 0 || len(doc.FlaggedAccounts) != 0 || len(doc.FraudRings) != 0 {
		t.Fatalf("expected empty result shape, got %+v", doc)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(out, &shape); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if string(shape["metrics"]) != "{}" {
		t.Fatalf("expected literal metrics: {}, got %s", shape["metrics"])
	}
	if string(shape["elements"]) != "[]" {
		t.Fatalf("expected literal elements: [], got %s", shape["elements"])
	}
	if string(shape["flagged_accounts"]) != "[]" {
		t.Fatalf("expected literal flagged_accounts: [], got %s", shape["flagged_accounts"])
	}
	if string(shape["fraud_rings"]) != "[]" {
		t.Fatalf("expected literal fraud_rings: [], got %s", shape["fraud_rings"])
	}
}

func TestAssembleFlaggedAccountsSortedByRiskThenID(t *testing.T) {
	g := models.NewGraph()
	g.Account("B").RiskScore = 50
	g.Account("B").Suspicious = true
	g.Account("A").RiskScore = 50
	g.Account("A").Suspicious = true
	g.Account("C").RiskScore = 80
	g.Account("C").Suspicious = true

	txs := []models.Transaction{{Source: "A", Target: "B", Amount: 10}}
	doc := Assemble(g, txs, nil, stats.Dataset{})

	if len(doc.FlaggedAccounts) != 3 {
		t.Fatalf("expected 3 flagged accounts, got %d", len(doc.FlaggedAccounts))
	}
	got := []string{doc.FlaggedAccounts[0].ID, doc.FlaggedAccounts[1].ID, doc.FlaggedAccounts[2].ID}
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestAssembleMetricsCounts(t *testing.T) {
	g := models.NewGraph()
	txs := []models.Transaction{
		{Source: "A", Target: "B", Amount: 100},
		{Source: "A", Target: "B", Amount: 50},
		{Source: "B", Target: "C", Amount: 10},
	}
	for _, tx := range txs {
		g.Fold(tx)
	}
	doc := Assemble(g, txs, nil, stats.Dataset{})

	if doc.Metrics.TotalNodes != 3 {
		t.Fatalf("expected 3 nodes, got %d", doc.Metrics.TotalNodes)
	}
	if doc.Metrics.TotalEdges != 2 {
		t.Fatalf("expected 2 unique edges, got %d", doc.Metrics.TotalEdges)
	}
	if doc.Metrics.TotalTransactions != 3 {
		t.Fatalf("expected 3 transactions, got %d", doc.Metrics.TotalTransactions)
	}
	if doc.Metrics.TotalVolume != 160 {
		t.Fatalf("expected total_volume 160, got %v", doc.Metrics.TotalVolume)
	}
}

func TestAssembleReasonFallback(t *testing.T) {
	g := models.NewGraph()
	a := g.Account("A")
	a.RiskScore = 20
	a.Suspicious = true
	txs := []models.Transaction{{Source: "A", Target: "B", Amount: 10}}
	doc := Assemble(g, txs, nil, stats.Dataset{})

	if len(doc.FlaggedAccounts) != 1 {
		t.Fatalf("expected 1 flagged account, got %d", len(doc.FlaggedAccounts))
	}
	if doc.FlaggedAccounts[0].Reason != "Low-level anomaly" {
		t.Fatalf("expected fallback reason, got %q", doc.FlaggedAccounts[0].Reason)
	}
}
