// Package models holds the data shapes shared across the forensics engine:
// the cleaned transaction stream, the graph the engine builds from it, and
// the result document the engine emits. None of these types carry behavior
// that belongs to a single pipeline stage — they are the contract between
// stages, and between the engine and its callers.
package models

import "time"

// Transaction is one cleaned transfer between two distinct accounts.
// ingest.Clean is the only producer of these; every other stage
// treats them as read-only.
type Transaction struct {
	Source    string     `json:"source"`
	Target    string     `json:"target"`
	Amount    float64    `json:"amount"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// RawRecord is one uncleaned row as received from the transport layer,
// already column-remapped to the canonical schema but not yet validated
// or type-coerced.
type RawRecord struct {
	Source    string
	Target    string
	Amount    string
	Timestamp string
}
