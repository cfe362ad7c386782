// Package scoring applies the seven independent risk detectors to every
// account in a built graph.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/rawblock/forensics-engine/pkg/models"
)

// Score runs all seven detectors, in fixed order, against every account in
// g. datasetAmounts is the full per-transaction amount list for the batch,
// used by detector G's P95 threshold.
//
// No detector's failure can block another: each is a pure function of one
// account's already-computed features, so a panic-free detector over
// well-typed fields needs no per-detector recovery to uphold that
// contract.
func Score(g *models.Graph, policy Policy, datasetAmounts []float64) {
	p95 := percentile95(datasetAmounts)
	for _, id := range g.Order {
		a := g.Account(id)
		scoreAccount(a, policy, p95)
	}
}

func scoreAccount(a *models.Account, p Policy, p95Amount float64) {
	var score float64

	score += detectPassThroughMule(a, p)
	score += detectSmurfingAggregator(a, p)
	score += detectStructuring(a, p)
	score += detectKingpin(a, p)
	score += detectFanOut(a, p)
	score += detectVelocityBurst(a, p)
	score += detectShellSingleton(a, p, p95Amount)

	if score > p.RiskScoreCap {
		score = p.RiskScoreCap
	}
	a.RiskScore = score
	a.Suspicious = a.RiskScore > p.SuspiciousThreshold || len(a.Flags) > 0
}

// detectPassThroughMule is detector A.
func detectPassThroughMule(a *models.Account, p Policy) float64 {
	if a.InVolume <= p.MuleMinVolume || a.OutVolume <= p.MuleMinVolume {
		return 0
	}
	total := a.InVolume + a.OutVolume
	imbalance := math.Abs(a.InVolume-a.OutVolume) / total
	if imbalance >= p.MuleImbalanceRatio {
		return 0
	}
	a.AddFlag("pass-through mule")
	if a.Type == models.TypeStandard {
		a.Type = models.TypeMule
	}
	return p.MuleScore
}

// detectSmurfingAggregator is detector B.
func detectSmurfingAggregator(a *models.Account, p Policy) float64 {
	if a.InDegree < p.AggregatorMinInDegree {
		return 0
	}
	meanIn := 0.0
	if a.InDegree > 0 {
		meanIn = a.InVolume / float64(a.InDegree)
	}
	if meanIn >= p.AggregatorMeanInCap {
		return 0
	}
	if a.OutVolume <= p.AggregatorOutVolRatio*a.InVolume {
		return 0
	}
	a.AddFlag("smurfing aggregator")
	if a.Type == models.TypeStandard {
		a.Type = models.TypeAggregator
	}
	return p.AggregatorScore
}

// detectStructuring is detector C.
func detectStructuring(a *models.Account, p Policy) float64 {
	count := 0
	for _, amt := range a.InAmounts {
		if amt >= p.StructuringLow && amt < p.StructuringHigh {
			count++
		}
	}
	if count < p.StructuringMinCount {
		return 0
	}
	extra := float64(count-p.StructuringMinCount) * p.StructuringPerExtra
	if extra > p.StructuringExtraCap {
		extra = p.StructuringExtraCap
	}
	a.AddFlag(fmt.Sprintf("structuring (%d near-threshold txns)", count))
	return p.StructuringBaseScore + extra
}

// detectKingpin is detector D.
func detectKingpin(a *models.Account, p Policy) float64 {
	if a.PageRank <= p.KingpinPageRankMin {
		return 0
	}
	if a.Type == models.TypeStandard && (a.OutVolume > p.KingpinOutVolRatio*a.InVolume || a.InDegree == 0) {
		a.Type = models.TypeSource
	}
	a.AddFlag(fmt.Sprintf("high-influence source (PR=%.4f)", a.PageRank))
	return math.Floor(p.KingpinScoreMultiplier * a.PageRank)
}

// detectFanOut is detector E.
func detectFanOut(a *models.Account, p Policy) float64 {
	if a.OutDegree <= p.FanOutMinDegree {
		return 0
	}
	if a.OutVolume <= p.FanOutVolRatio*a.InVolume {
		return 0
	}
	a.AddFlag(fmt.Sprintf("fan-out dispersion (%d targets)", a.OutDegree))
	return p.FanOutScore
}

// detectVelocityBurst is detector F.
func detectVelocityBurst(a *models.Account, p Policy) float64 {
	if len(a.InTimestamps) < p.VelocityMinTxns {
		return 0
	}
	var sorted []int64
	for _, t := range a.InTimestamps {
		sorted = append(sorted, t.UnixNano())
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	spanHours := float64(sorted[len(sorted)-1]-sorted[0]) / float64(3600e9)
	rate := math.Inf(1)
	if spanHours > 0 {
		rate = float64(len(sorted)) / spanHours
	}
	if rate <= p.VelocityRatePerHour {
		return 0
	}
	a.AddFlag(fmt.Sprintf("velocity burst (>%g txn/hour)", p.VelocityRatePerHour))
	return p.VelocityScore
}

// detectShellSingleton is detector G.
func detectShellSingleton(a *models.Account, p Policy, p95Amount float64) float64 {
	if a.InDegree+a.OutDegree > p.ShellMaxDegree {
		return 0
	}
	totalFlow := a.InVolume + a.OutVolume
	if totalFlow <= p.ShellFlowMultiple*p95Amount {
		return 0
	}
	a.AddFlag("high-value isolated node (shell?)")
	return p.ShellScore
}

// percentile95 returns the 95th percentile of values by linear
// interpolation between order statistics, or 0 for an empty dataset.
func percentile95(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := 0.95 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
