package models

// Ring is one detected circular-flow pattern: a simple elementary cycle, or
// — above the enumeration size gate — a whole dense component reported as
// a unit ("complex network").
type Ring struct {
	ID     string
	Nodes  []string
	Volume float64
	Note   string
}

// IsComplexNetwork reports whether this ring is a size-gated component
// summary rather than an enumerated simple cycle.
func (r Ring) IsComplexNetwork() bool {
	return r.Note != ""
}
