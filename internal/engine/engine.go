// Package engine wires the eight pipeline stages into the single batch
// function external callers invoke: normalize, build, centrality,
// aggregate, score, detect rings, compute dataset statistics, assemble.
package engine

import (
	"fmt"

	"github.com/rawblock/forensics-engine/internal/assemble"
	"github.com/rawblock/forensics-engine/internal/centrality"
	"github.com/rawblock/forensics-engine/internal/features"
	"github.com/rawblock/forensics-engine/internal/graph"
	"github.com/rawblock/forensics-engine/internal/ingest"
	"github.com/rawblock/forensics-engine/internal/rings"
	"github.com/rawblock/forensics-engine/internal/scoring"
	"github.com/rawblock/forensics-engine/internal/stats"
	"github.com/rawblock/forensics-engine/pkg/models"
)

// InvariantError marks an internal invariant violation: a fatal condition
// the batch must abort on rather than return a partial result.
type InvariantError struct {
	Stage string
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine: invariant violated in %s: %s", e.Stage, e.Msg)
}

// Analyze runs the full pipeline over one batch of raw records and
// produces its Result Document. It performs no I/O and holds no state
// across calls, so concurrent batches never interfere with each other.
func Analyze(raw []models.RawRecord) (*models.ResultDocument, error) {
	return AnalyzeWithPolicy(raw, scoring.DefaultPolicy())
}

// AnalyzeWithPolicy runs the pipeline with an explicit scoring policy,
// letting callers such as the shadow comparator run a variant
// configuration against the same input without touching the default path.
func AnalyzeWithPolicy(raw []models.RawRecord, policy scoring.Policy) (*models.ResultDocument, error) {
	txs := ingest.Clean(raw)
	if len(txs) == 0 {
		return models.EmptyResult(), nil
	}

	built := graph.Build(txs)
	if err := checkInvariants(built); err != nil {
		return nil, err
	}

	pageranks := centrality.PageRank(built.Weighted)
	communities := centrality.Communities(built.Weighted)
	applyCentrality(built, pageranks, communities)

	features.Aggregate(built, txs)

	amounts := make([]float64, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount
	}
	scoring.Score(built.Domain, policy, amounts)

	foundRings := rings.Detect(built)

	ds := stats.Compute(txs)

	return assemble.Assemble(built.Domain, txs, foundRings, ds), nil
}

func applyCentrality(b *graph.Built, pageranks map[int64]float64, communities map[int64]int) {
	for _, id := range b.Domain.Order {
		nodeID, ok := b.NodeID(id)
		if !ok {
			continue
		}
		a := b.Domain.Account(id)
		a.PageRank = pageranks[nodeID]
		a.Community = communities[nodeID]
	}
}

// checkInvariants guards the one structural property that must hold going
// into scoring: every folded edge connects two distinct accounts with a
// positive amount. A violation here means the normalizer's own contract
// broke, which is a bug, not a data problem — no partial result is
// returned.
func checkInvariants(b *graph.Built) error {
	for _, e := range b.Domain.EdgeList() {
		if e.Source == e.Target {
			return &InvariantError{Stage: "graph", Msg: "self-loop edge after normalization: " + e.Source}
		}
		if e.Amount <= 0 {
			return &InvariantError{Stage: "graph", Msg: "non-positive edge amount after normalization: " + e.Source + "->" + e.Target}
		}
	}
	return nil
}
