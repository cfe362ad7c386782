// Package ingest cleans raw batch rows into the canonical transaction
// stream the rest of the engine consumes.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/rawblock/forensics-engine/pkg/models"
)

// columnSynonyms maps external header names onto the canonical schema.
// CSV uploads run their header row through ResolveColumn at the HTTP
// layer before a RawRecord ever reaches Clean. JSON bodies bind straight
// to RawRecord fields and do not pass through this table.
var columnSynonyms = map[string]string{
	"sender_id":   "source",
	"receiver_id": "target",
	"from":        "source",
	"to":          "target",
	"value":       "amount",
	"amt":         "amount",
	"ts":          "timestamp",
	"time":        "timestamp",
	"date":        "timestamp",
}

// ResolveColumn returns the canonical column name for a header, applying
// known synonyms and falling back to the header itself.
func ResolveColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if canon, ok := columnSynonyms[h]; ok {
		return canon
	}
	return h
}

// timeLayouts are tried in order when parsing a timestamp field; the first
// one that parses wins.
var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Clean normalizes a raw record batch into the cleaned transaction stream.
// It never returns an error — malformed rows are dropped, not rejected;
// an empty result is itself a valid outcome.
func Clean(raw []models.RawRecord) []models.Transaction {
	out := make([]models.Transaction, 0, len(raw))
	for _, r := range raw {
		tx, ok := cleanOne(r)
		if !ok {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func cleanOne(r models.RawRecord) (models.Transaction, bool) {
	source := strings.TrimSpace(r.Source)
	target := strings.TrimSpace(r.Target)
	if source == "" || target == "" || source == target {
		return models.Transaction{}, false
	}

	amount := coerceAmount(r.Amount)
	if amount <= 0 {
		return models.Transaction{}, false
	}

	tx := models.Transaction{Source: source, Target: target, Amount: amount}
	if ts, ok := parseTimestamp(r.Timestamp); ok {
		tx.Timestamp = &ts
	}
	return tx, true
}

// coerceAmount strips currency punctuation and whitespace, then parses the
// remainder as a float. A negative result is reflected positive; an
// unparseable string becomes 0, which the non-positive-amount check drops.
func coerceAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if v < 0 {
		v = -v
	}
	return v
}

func parseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
