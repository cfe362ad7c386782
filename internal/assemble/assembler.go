// Package assemble builds the final result document from a fully scored
// graph, the detected rings, and the dataset-wide statistics.
package assemble

import (
	"math"
	"sort"

	"github.com/rawblock/forensics-engine/internal/stats"
	"github.com/rawblock/forensics-engine/pkg/models"
)

const highRiskThreshold = 70.0

// Assemble produces the Result Document. txs is the
// cleaned transaction stream, used for metrics.total_transactions and
// total_volume; g carries the fully scored graph; foundRings is the
// ring detector's output; ds is the dataset statistics.
func Assemble(g *models.Graph, txs []models.Transaction, foundRings []models.Ring, ds stats.Dataset) *models.ResultDocument {
	if len(txs) == 0 {
		return models.EmptyResult()
	}

	elements := buildElements(g)
	flagged := buildFlaggedAccounts(g)
	fraudRings := buildFraudRings(foundRings)
	metrics := buildMetrics(g, txs, foundRings, ds)

	return &models.ResultDocument{
		Elements:        elements,
		Metrics:         metrics,
		FlaggedAccounts: flagged,
		FraudRings:      fraudRings,
		Summary: &models.Summary{
			TotalNodes:        metrics.TotalNodes,
			TotalTransactions: metrics.TotalTransactions,
			SuspiciousCount:   metrics.SuspiciousCount,
			RingsCount:        metrics.RingsCount,
			BenfordStatus:     metrics.BenfordStatus,
			HighRiskCount:     metrics.HighRiskCount,
			StructuringPct:    metrics.StructuringPct,
		},
	}
}

func buildElements(g *models.Graph) []models.Element {
	elements := make([]models.Element, 0, len(g.Order)+len(g.Edges))
	for _, id := range g.Order {
		a := g.Account(id)
		elements = append(elements, models.Element{Data: models.NodeData{
			ID:         a.ID,
			RiskScore:  round(a.RiskScore, 1),
			Type:       a.Type,
			Suspicious: a.Suspicious,
			Community:  a.Community,
			PageRank:   round(a.PageRank, 5),
			Rings:      emptyIfNil(a.Rings),
			Flags:      emptyIfNil(a.Flags),
			InVolume:   round(a.InVolume, 2),
			OutVolume:  round(a.OutVolume, 2),
		}})
	}
	for _, e := range g.EdgeList() {
		src := g.Account(e.Source)
		dst := g.Account(e.Target)
		var ts string
		if len(e.Timestamps) > 0 {
			ts = e.Timestamps[len(e.Timestamps)-1].Format("2006-01-02T15:04:05Z07:00")
		}
		elements = append(elements, models.Element{Data: models.EdgeData{
			Source:     e.Source,
			Target:     e.Target,
			Amount:     round(e.Amount, 2),
			Count:      e.Count,
			Timestamp:  ts,
			Suspicious: src.Suspicious || dst.Suspicious,
		}})
	}
	return elements
}

func buildFlaggedAccounts(g *models.Graph) []models.FlaggedAccount {
	var flagged []models.FlaggedAccount
	for _, id := range g.Order {
		a := g.Account(id)
		if !a.Suspicious {
			continue
		}
		flagged = append(flagged, models.FlaggedAccount{
			ID:        a.ID,
			RiskScore: round(a.RiskScore, 1),
			Type:      a.Type,
			Community: a.Community,
			PageRank:  round(a.PageRank, 5),
			InVolume:  round(a.InVolume, 2),
			OutVolume: round(a.OutVolume, 2),
			Flags:     emptyIfNil(a.Flags),
			Rings:     emptyIfNil(a.Rings),
			Reason:    a.Reason(),
		})
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		if flagged[i].RiskScore != flagged[j].RiskScore {
			return flagged[i].RiskScore > flagged[j].RiskScore
		}
		return flagged[i].ID < flagged[j].ID
	})
	if flagged == nil {
		flagged = []models.FlaggedAccount{}
	}
	return flagged
}

func buildFraudRings(found []models.Ring) []models.FraudRing {
	out := make([]models.FraudRing, 0, len(found))
	for _, r := range found {
		out = append(out, models.FraudRing{
			RingID:         r.ID,
			MemberAccounts: r.Nodes,
			MemberCount:    len(r.Nodes),
			CycleVolume:    round(r.Volume, 2),
			PatternType:    "Circular Flow",
			RiskScore:      90,
		})
	}
	return out
}

func buildMetrics(g *models.Graph, txs []models.Transaction, found []models.Ring, ds stats.Dataset) *models.Metrics {
	totalNodes := len(g.Order)
	totalEdges := len(g.Edges)

	totalVolume := 0.0
	suspiciousCount := 0
	highRiskCount := 0
	riskSum := 0.0
	for _, id := range g.Order {
		a := g.Account(id)
		riskSum += a.RiskScore
		if a.Suspicious {
			suspiciousCount++
		}
		if a.RiskScore >= highRiskThreshold {
			highRiskCount++
		}
	}
	for _, tx := range txs {
		totalVolume += tx.Amount
	}

	density := 0.0
	if totalNodes > 1 {
		density = float64(totalEdges) / (float64(totalNodes) * float64(totalNodes-1))
	}
	avgRisk := 0.0
	if totalNodes > 0 {
		avgRisk = riskSum / float64(totalNodes)
	}

	return &models.Metrics{
		TotalNodes:         totalNodes,
		TotalEdges:         totalEdges,
		TotalTransactions:  len(txs),
		TotalVolume:        round(totalVolume, 2),
		SuspiciousCount:    suspiciousCount,
		RingsCount:         len(found),
		HighRiskCount:      highRiskCount,
		GraphDensity:       round(density, 6),
		AvgRiskScore:       round(avgRisk, 1),
		BenfordStatus:      ds.BenfordStatus,
		BenfordDeviation:   ds.BenfordDeviation,
		StructuringPct:     ds.StructuringPct,
		StructuredTxnCount: ds.StructuredTxnCount,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func round(v float64, decimals int) float64 {
	mult := math.Pow(10, float64(decimals))
	return math.Round(v*mult) / mult
}
