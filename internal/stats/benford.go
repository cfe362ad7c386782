// Package stats computes dataset-wide forensic indicators: Benford's-Law
// leading-digit deviation and the structuring transaction percentage.
package stats

import (
	"math"

	"github.com/rawblock/forensics-engine/pkg/models"
)

const (
	benfordMinSample    = 100
	benfordSuspicious   = 0.05
	benfordSlight       = 0.02
	structuringLow      = 8000.0
	structuringHigh     = 10000.0
)

// benfordExpected is log10(1 + 1/d) for d in 1..9.
var benfordExpected = func() [10]float64 {
	var e [10]float64
	for d := 1; d <= 9; d++ {
		e[d] = math.Log10(1 + 1/float64(d))
	}
	return e
}()

// Dataset is the summary this package produces over the cleaned batch.
type Dataset struct {
	BenfordDeviation   float64
	BenfordStatus      string
	StructuringPct     float64
	StructuredTxnCount int
}

// Compute derives Benford deviation and structuring percentage from the
// cleaned transaction stream.
func Compute(txs []models.Transaction) Dataset {
	d := Dataset{BenfordStatus: "Normal"}

	eligible := 0
	var counts [10]int
	for _, tx := range txs {
		if tx.Amount >= 1 {
			eligible++
			digit := leadingDigit(math.Floor(tx.Amount))
			if digit >= 1 && digit <= 9 {
				counts[digit]++
			}
		}
		if tx.Amount >= structuringLow && tx.Amount < structuringHigh {
			d.StructuredTxnCount++
		}
	}

	if len(txs) > 0 {
		d.StructuringPct = round(float64(d.StructuredTxnCount)/float64(len(txs))*100, 1)
	}

	if eligible >= benfordMinSample {
		chi := 0.0
		for digit := 1; digit <= 9; digit++ {
			e := float64(counts[digit]) / float64(eligible)
			x := benfordExpected[digit]
			chi += (e - x) * (e - x) / x
		}
		d.BenfordDeviation = round(chi, 4)
		switch {
		case d.BenfordDeviation > benfordSuspicious:
			d.BenfordStatus = "Suspicious"
		case d.BenfordDeviation > benfordSlight:
			d.BenfordStatus = "Slight deviation"
		default:
			d.BenfordStatus = "Normal"
		}
	}

	return d
}

// leadingDigit returns the first significant digit of a non-negative
// value, or 0 if it has none (v == 0).
func leadingDigit(v float64) int {
	if v <= 0 {
		return 0
	}
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v)
}

func round(v float64, decimals int) float64 {
	mult := math.Pow(10, float64(decimals))
	return math.Round(v*mult) / mult
}
