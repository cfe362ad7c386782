package scoring

// Policy centralizes every threshold and score weight the seven detectors
// use, so a variant configuration can be built and compared without
// touching detector logic (see internal/shadow for exactly that use).
type Policy struct {
	MuleMinVolume      float64
	MuleImbalanceRatio float64
	MuleScore          float64

	AggregatorMinInDegree int
	AggregatorMeanInCap   float64
	AggregatorOutVolRatio float64
	AggregatorScore       float64

	StructuringLow       float64
	StructuringHigh      float64
	StructuringMinCount  int
	StructuringBaseScore float64
	StructuringPerExtra  float64
	StructuringExtraCap  float64

	KingpinPageRankMin    float64
	KingpinOutVolRatio    float64
	KingpinScoreMultiplier float64

	FanOutMinDegree int
	FanOutVolRatio  float64
	FanOutScore     float64

	VelocityMinTxns     int
	VelocityRatePerHour float64
	VelocityScore       float64

	ShellMaxDegree    int
	ShellFlowMultiple float64
	ShellScore        float64

	RiskScoreCap        float64
	SuspiciousThreshold float64
}

// DefaultPolicy returns the thresholds fixed in the engine's external
// contract. Every invocation must use these values unless the caller is
// explicitly running a shadow comparison against a variant.
func DefaultPolicy() Policy {
	return Policy{
		MuleMinVolume:      500,
		MuleImbalanceRatio: 0.15,
		MuleScore:          45,

		AggregatorMinInDegree: 5,
		AggregatorMeanInCap:   10000,
		AggregatorOutVolRatio: 0.80,
		AggregatorScore:       35,

		StructuringLow:       8000,
		StructuringHigh:      10000,
		StructuringMinCount:  3,
		StructuringBaseScore: 25,
		StructuringPerExtra:  5,
		StructuringExtraCap:  20,

		KingpinPageRankMin:     0.04,
		KingpinOutVolRatio:     1.5,
		KingpinScoreMultiplier: 400,

		FanOutMinDegree: 20,
		FanOutVolRatio:  2.0,
		FanOutScore:     20,

		VelocityMinTxns:     5,
		VelocityRatePerHour: 20,
		VelocityScore:       20,

		ShellMaxDegree:    2,
		ShellFlowMultiple: 3,
		ShellScore:        25,

		RiskScoreCap:        100,
		SuspiciousThreshold: 10,
	}
}
