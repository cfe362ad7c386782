package api

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/rawblock/forensics-engine/pkg/models"
)

// cryptoRandFloat64 returns a cryptographically random float64 in [0, 1).
func cryptoRandFloat64() float64 {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Extremely unlikely — fallback to a fixed mid-range value.
		return 0.5
	}
	n := binary.BigEndian.Uint64(b) >> 11 // 53-bit mantissa
	return float64(n) / float64(1<<53)
}

// sampleBatch builds a small synthetic batch containing one instance of
// each of the three easiest-to-recognize patterns — a pass-through mule,
// a smurfing fan-in, and a 3-cycle — for exercising a dashboard without a
// real data source. Amounts are jittered with
// crypto/rand so repeated calls don't return byte-identical batches.
func sampleBatch() []models.RawRecord {
	var rows []models.RawRecord

	jitter := func(base float64) string {
		v := base + cryptoRandFloat64()*base*0.05
		return fmt.Sprintf("%.2f", v)
	}

	rows = append(rows,
		models.RawRecord{Source: "sample_in_1", Target: "sample_mule", Amount: jitter(12000)},
		models.RawRecord{Source: "sample_mule", Target: "sample_out_1", Amount: jitter(11400)},
	)

	for i := 0; i < 12; i++ {
		rows = append(rows, models.RawRecord{
			Source: fmt.Sprintf("sample_smurf_%02d", i),
			Target: "sample_aggregator",
			Amount: jitter(480),
		})
	}
	rows = append(rows, models.RawRecord{Source: "sample_aggregator", Target: "sample_sink", Amount: jitter(5600)})

	rows = append(rows,
		models.RawRecord{Source: "sample_ring_a", Target: "sample_ring_b", Amount: jitter(2500)},
		models.RawRecord{Source: "sample_ring_b", Target: "sample_ring_c", Amount: jitter(2500)},
		models.RawRecord{Source: "sample_ring_c", Target: "sample_ring_a", Amount: jitter(2500)},
	)

	return rows
}
