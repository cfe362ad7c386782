// Package shadow runs one batch through two detector policies and reports
// where their community/ring structure diverges, without ever sitting in
// the request path. It is an operational tool
// for evaluating a candidate Policy before promoting it to
// scoring.DefaultPolicy.
package shadow

import (
	"log"
	"sort"

	"github.com/rawblock/forensics-engine/internal/engine"
	"github.com/rawblock/forensics-engine/internal/metrics"
	"github.com/rawblock/forensics-engine/internal/scoring"
	"github.com/rawblock/forensics-engine/pkg/models"
)

// Report captures the divergence between a baseline and a candidate
// policy run over the same batch.
type Report struct {
	BaselineLabel  string
	CandidateLabel string

	BaselineSuspiciousCount  int
	CandidateSuspiciousCount int
	BaselineRingsCount       int
	CandidateRingsCount      int

	// CommunityARI and CommunityVI compare the two runs' Louvain
	// community assignments over the union of accounts seen by either
	// run. Identical communities score ARI=1, VI=0.
	CommunityARI float64
	CommunityVI  float64

	// RingMembershipARI and RingMembershipVI do the same comparison
	// over ring membership, treating "no ring" as its own label.
	RingMembershipARI float64
	RingMembershipVI  float64

	TypeChanges []TypeChange
}

// TypeChange records one account whose primary classification differs
// between the two policy runs.
type TypeChange struct {
	AccountID string
	Baseline  models.AccountType
	Candidate models.AccountType
}

// Compare runs raw through both policies and diffs the two Result
// Documents. It performs no I/O; callers decide whether to persist the
// Report via db.PostgresStore.SaveShadowRun.
func Compare(raw []models.RawRecord, baselineLabel string, baseline scoring.Policy, candidateLabel string, candidate scoring.Policy) (*Report, error) {
	baseDoc, err := engine.AnalyzeWithPolicy(raw, baseline)
	if err != nil {
		return nil, err
	}
	candDoc, err := engine.AnalyzeWithPolicy(raw, candidate)
	if err != nil {
		return nil, err
	}

	report := &Report{
		BaselineLabel:            baselineLabel,
		CandidateLabel:           candidateLabel,
		BaselineSuspiciousCount:  baseDoc.Metrics.SuspiciousCount,
		CandidateSuspiciousCount: candDoc.Metrics.SuspiciousCount,
		BaselineRingsCount:       len(baseDoc.FraudRings),
		CandidateRingsCount:      len(candDoc.FraudRings),
	}

	baseNodes := nodeIndex(baseDoc)
	candNodes := nodeIndex(candDoc)
	ids := unionIDs(baseNodes, candNodes)

	baseCommunities := make([]int, len(ids))
	candCommunities := make([]int, len(ids))
	baseRings := make([]int, len(ids))
	candRings := make([]int, len(ids))

	baseRingLabel := ringLabels(baseDoc)
	candRingLabel := ringLabels(candDoc)

	for i, id := range ids {
		if n, ok := baseNodes[id]; ok {
			baseCommunities[i] = n.Community
		}
		if n, ok := candNodes[id]; ok {
			candCommunities[i] = n.Community
		}
		baseRings[i] = baseRingLabel[id]
		candRings[i] = candRingLabel[id]
	}

	report.CommunityARI = metrics.AdjustedRandIndex(candCommunities, baseCommunities)
	report.CommunityVI = metrics.VariationOfInformation(candCommunities, baseCommunities)
	report.RingMembershipARI = metrics.AdjustedRandIndex(candRings, baseRings)
	report.RingMembershipVI = metrics.VariationOfInformation(candRings, baseRings)

	for _, id := range ids {
		bn, bok := baseNodes[id]
		cn, cok := candNodes[id]
		if !bok || !cok {
			continue
		}
		if bn.Type != cn.Type {
			report.TypeChanges = append(report.TypeChanges, TypeChange{AccountID: id, Baseline: bn.Type, Candidate: cn.Type})
		}
	}
	sort.Slice(report.TypeChanges, func(i, j int) bool { return report.TypeChanges[i].AccountID < report.TypeChanges[j].AccountID })

	if len(report.TypeChanges) > 0 {
		log.Printf("[shadow] %s vs %s: %d accounts changed primary type, community ARI=%.3f ring ARI=%.3f",
			baselineLabel, candidateLabel, len(report.TypeChanges), report.CommunityARI, report.RingMembershipARI)
	}

	return report, nil
}

func nodeIndex(doc *models.ResultDocument) map[string]models.NodeData {
	out := make(map[string]models.NodeData, len(doc.Elements))
	for _, el := range doc.Elements {
		if nd, ok := el.Data.(models.NodeData); ok {
			out[nd.ID] = nd
		}
	}
	return out
}

// ringLabels assigns each account an integer label: 0 means "not in any
// ring", and every ring gets its own positive label (its position in
// fraud_rings plus one). An account in several rings carries the label of
// the last one listed.
func ringLabels(doc *models.ResultDocument) map[string]int {
	labels := make(map[string]int)
	for i, r := range doc.FraudRings {
		for _, id := range r.MemberAccounts {
			labels[id] = i + 1
		}
	}
	return labels
}

func unionIDs(a, b map[string]models.NodeData) []string {
	set := make(map[string]bool, len(a)+len(b))
	for id := range a {
		set[id] = true
	}
	for id := range b {
		set[id] = true
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
