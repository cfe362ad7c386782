package models

// Element is one Cytoscape-style graph element in the result document's
// `elements` list — either a node or an edge, distinguished by which
// fields its Data carries.
type Element struct {
	Data interface{} `json:"data"`
}

// NodeData is the `data` payload of a node Element.
type NodeData struct {
	ID         string      `json:"id"`
	RiskScore  float64     `json:"risk_score"`
	Type       AccountType `json:"type"`
	Suspicious bool        `json:"suspicious"`
	Community  int         `json:"community"`
	PageRank   float64     `json:"pagerank"`
	Rings      []string    `json:"rings"`
	Flags      []string    `json:"flags"`
	InVolume   float64     `json:"in_volume"`
	OutVolume  float64     `json:"out_volume"`
}

// EdgeData is the `data` payload of an edge Element.
type EdgeData struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Amount     float64 `json:"amount"`
	Count      int     `json:"count"`
	Timestamp  string  `json:"timestamp,omitempty"`
	Suspicious bool    `json:"suspicious"`
}

// Metrics is the dataset-level summary the Result Assembler computes once
// per batch.
// Every field carries omitempty so a zero-valued Metrics (the empty-batch
// case) marshals as the literal `{}` rather than a block of explicit
// zeros — see EmptyResult.
type Metrics struct {
	TotalNodes         int     `json:"total_nodes,omitempty"`
	TotalEdges         int     `json:"total_edges,omitempty"`
	TotalTransactions  int     `json:"total_transactions,omitempty"`
	TotalVolume        float64 `json:"total_volume,omitempty"`
	SuspiciousCount    int     `json:"suspicious_count,omitempty"`
	RingsCount         int     `json:"rings_count,omitempty"`
	HighRiskCount      int     `json:"high_risk_count,omitempty"`
	GraphDensity       float64 `json:"graph_density,omitempty"`
	AvgRiskScore       float64 `json:"avg_risk_score,omitempty"`
	BenfordStatus      string  `json:"benford_status,omitempty"`
	BenfordDeviation   float64 `json:"benford_deviation,omitempty"`
	StructuringPct     float64 `json:"structuring_pct,omitempty"`
	StructuredTxnCount int     `json:"structured_txn_count,omitempty"`
}

// FlaggedAccount is one entry in the result document's ordered
// flagged_accounts list.
type FlaggedAccount struct {
	ID        string      `json:"id"`
	RiskScore float64     `json:"risk_score"`
	Type      AccountType `json:"type"`
	Community int         `json:"community"`
	PageRank  float64     `json:"pagerank"`
	InVolume  float64     `json:"in_volume"`
	OutVolume float64     `json:"out_volume"`
	Flags     []string    `json:"flags"`
	Rings     []string    `json:"rings"`
	Reason    string      `json:"reason"`
}

// FraudRing is one entry in the result document's fraud_rings list.
type FraudRing struct {
	RingID         string   `json:"ring_id"`
	MemberAccounts []string `json:"member_accounts"`
	MemberCount    int      `json:"member_count"`
	CycleVolume    float64  `json:"cycle_volume"`
	PatternType    string   `json:"pattern_type"`
	RiskScore      float64  `json:"risk_score"`
}

// Summary is the compact projection of Metrics the result document carries
// alongside the full metrics block.
type Summary struct {
	TotalNodes        int     `json:"total_nodes"`
	TotalTransactions int     `json:"total_transactions"`
	SuspiciousCount   int     `json:"suspicious_count"`
	RingsCount        int     `json:"rings_count"`
	BenfordStatus     string  `json:"benford_status"`
	HighRiskCount     int     `json:"high_risk_count"`
	StructuringPct    float64 `json:"structuring_pct"`
}

// ResultDocument is the complete output of one batch analysis.
type ResultDocument struct {
	Elements        []Element        `json:"elements"`
	Metrics         *Metrics         `json:"metrics"`
	FlaggedAccounts []FlaggedAccount `json:"flagged_accounts"`
	FraudRings      []FraudRing      `json:"fraud_rings"`
	Summary         *Summary         `json:"summary,omitempty"`

	// BatchID and GeneratedAt are service-level additions stamped by
	// the HTTP layer, not by the pure engine function.
	BatchID     string `json:"batch_id,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
}

// EmptyResult is the canonical shape for a batch with no surviving
// transactions after normalization.
func EmptyResult() *ResultDocument {
	return &ResultDocument{
		Elements:        []Element{},
		Metrics:         &Metrics{},
		FlaggedAccounts: []FlaggedAccount{},
		FraudRings:      []FraudRing{},
	}
}
