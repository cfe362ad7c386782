// Package features computes per-node volume, degree, and the raw
// per-transaction observations the scorer's detectors need.
package features

import (
	"sync"
	"time"

	"github.com/rawblock/forensics-engine/internal/graph"
	"github.com/rawblock/forensics-engine/pkg/models"
)

// Aggregate populates in/out volume, in/out degree, and the per-account
// in-amount/in-timestamp lists. These per-transaction lists are built
// directly from the normalized stream rather than derived from each
// folded edge's total, since the structuring and velocity detectors
// need every individual transaction's amount and timestamp.
//
// Volume is accumulated in one sequential pass over the edges. Degree and
// the in-amount/in-timestamp lists are then filled concurrently, one
// goroutine per account, each writing only its own account.
func Aggregate(b *graph.Built, txs []models.Transaction) {
	g := b.Domain

	inTxByAccount := make(map[string][]models.Transaction)
	for _, tx := range txs {
		inTxByAccount[tx.Target] = append(inTxByAccount[tx.Target], tx)
	}

	outNeighbors := make(map[string]map[string]bool)
	inNeighbors := make(map[string]map[string]bool)
	for _, e := range g.EdgeList() {
		if outNeighbors[e.Source] == nil {
			outNeighbors[e.Source] = make(map[string]bool)
		}
		outNeighbors[e.Source][e.Target] = true
		if inNeighbors[e.Target] == nil {
			inNeighbors[e.Target] = make(map[string]bool)
		}
		inNeighbors[e.Target][e.Source] = true

		g.Account(e.Source).OutVolume += e.Amount
		g.Account(e.Target).InVolume += e.Amount
	}

	var wg sync.WaitGroup
	for _, id := range g.Order {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			a := g.Account(id)
			a.OutDegree = len(outNeighbors[id])
			a.InDegree = len(inNeighbors[id])

			rows := inTxByAccount[id]
			a.InAmounts = make([]float64, 0, len(rows))
			a.InTimestamps = make([]time.Time, 0, len(rows))
			for _, tx := range rows {
				a.InAmounts = append(a.InAmounts, tx.Amount)
				if tx.Timestamp != nil {
					a.InTimestamps = append(a.InTimestamps, *tx.Timestamp)
				}
			}
		}(id)
	}
	wg.Wait()
}
